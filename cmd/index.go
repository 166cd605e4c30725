package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/config"
	"github.com/jnovak/facecat/internal/indexer"
	"github.com/jnovak/facecat/internal/pipeline"
	"github.com/jnovak/facecat/internal/recognizer"
	"github.com/jnovak/facecat/internal/scanner"
)

var indexCmd = &cobra.Command{
	Use:   "index [root-directory]",
	Short: "Scan a directory and index every discovered photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().Int("batch-size", 50, "Number of photos to commit per indexing batch")
}

func runIndex(cmd *cobra.Command, args []string) error {
	root := args[0]
	batchSize := mustGetInt(cmd, "batch-size")
	cfg := config.Load()

	store, err := catalog.Open(cfg.Catalog.DBPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}
	defer store.Close()

	scfg := scanner.DefaultConfig()
	scfg.Extensions = cfg.Scanner.Extensions
	scfg.SkipHidden = cfg.Scanner.SkipHidden
	scfg.FollowSymlinks = cfg.Scanner.FollowSymlinks
	paths := scanner.New(scfg).Scan(context.Background(), root, nil, func(path, message string) {
		fmt.Printf("skip %s: %s\n", path, message)
	})

	icfg := indexer.DefaultConfig(cfg.Indexer.ThumbnailDir)
	icfg.ThumbnailSize = cfg.Indexer.ThumbnailSize
	icfg.BatchSize = batchSize

	ix := indexer.New(store, pipeline.DefaultImageDecoder(), recognizer.NewStub(), icfg)
	err = ix.Index(context.Background(), paths, func(info indexer.ProgressInfo) {
		fmt.Printf("\rindexed %d/%d (%d faces so far)", info.Current, info.Total, info.CumulativeFaces)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}
