package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/config"
	"github.com/jnovak/facecat/internal/pipeline"
	"github.com/jnovak/facecat/internal/recognizer"
)

var runCmd = &cobra.Command{
	Use:   "run [root-directory]",
	Short: "Scan, index, and cluster a photo library end to end",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Float64("threshold", 0.6, "Distance threshold below which two faces are considered the same person")
	runCmd.Flags().Int("min-cluster-size", 1, "Minimum faces a cluster must hold to be persisted")
	runCmd.Flags().Int("batch-size", 50, "Number of photos to commit per indexing batch")
}

func runRun(cmd *cobra.Command, args []string) error {
	root := args[0]
	threshold := mustGetFloat64(cmd, "threshold")
	minClusterSize := mustGetInt(cmd, "min-cluster-size")
	batchSize := mustGetInt(cmd, "batch-size")

	cfg := config.Load()

	store, err := catalog.Open(cfg.Catalog.DBPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	pcfg := pipeline.DefaultConfig(cfg.Indexer.ThumbnailDir)
	pcfg.Scanner.Extensions = cfg.Scanner.Extensions
	pcfg.Scanner.SkipHidden = cfg.Scanner.SkipHidden
	pcfg.Scanner.FollowSymlinks = cfg.Scanner.FollowSymlinks
	pcfg.Indexer.BatchSize = batchSize
	pcfg.Cluster.Threshold = float32(threshold)
	pcfg.Cluster.MinClusterSize = minClusterSize

	runner := pipeline.New(store, pipeline.DefaultImageDecoder(), recognizer.NewStub(), pcfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nReceived interrupt signal...")
		cancel()
	}()

	var bar *progressbar.ProgressBar
	stage := ""

	session, err := runner.Run(ctx, root, func(e pipeline.Event) {
		if e.Stage != stage {
			stage = e.Stage
			bar = progressbar.NewOptions(e.Total,
				progressbar.OptionSetDescription(stage),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		if bar != nil {
			bar.Set(e.Current)
		}
	})
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	fmt.Printf("\nScanned %d files, indexed %d faces across session %d (status: %s)\n",
		session.TotalFiles, session.TotalFaces, session.ID, session.Status)
	return nil
}
