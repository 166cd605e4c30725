package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/cluster"
	"github.com/jnovak/facecat/internal/config"
	"github.com/jnovak/facecat/internal/pipeline"
	"github.com/jnovak/facecat/internal/recognizer"
	"github.com/jnovak/facecat/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the review web server",
	Long: `Start the facecat web server.
The web server exposes a REST and WebSocket API for browsing photos,
faces and clusters, running scan/index/cluster jobs, and correcting
cluster identity labels.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")
	if envPort := os.Getenv("FACECAT_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("FACECAT_HOST"); envHost != "" {
		host = envHost
	}

	store, err := catalog.Open(cfg.Catalog.DBPath)
	if err != nil {
		return fmt.Errorf("opening catalog: %w", err)
	}

	engine := cluster.New(store)
	engine.SetThreshold(cfg.Cluster.DistanceThreshold)
	engine.SetMinClusterSize(cfg.Cluster.MinClusterSize)

	pcfg := pipeline.DefaultConfig(cfg.Indexer.ThumbnailDir)
	pcfg.Scanner.Extensions = cfg.Scanner.Extensions
	pcfg.Scanner.SkipHidden = cfg.Scanner.SkipHidden
	pcfg.Scanner.FollowSymlinks = cfg.Scanner.FollowSymlinks
	pcfg.Cluster.Threshold = cfg.Cluster.DistanceThreshold
	pcfg.Cluster.MinClusterSize = cfg.Cluster.MinClusterSize
	runner := pipeline.New(store, pipeline.DefaultImageDecoder(), recognizer.NewStub(), pcfg)

	server := web.NewServer(store, engine, runner, host, port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("error during shutdown: %v\n", err)
		}
		store.Close()
	}()

	fmt.Printf("Starting facecat web UI on http://%s:%d\n", host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
