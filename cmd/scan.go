package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/config"
	"github.com/jnovak/facecat/internal/scanner"
)

var scanCmd = &cobra.Command{
	Use:   "scan [root-directory]",
	Short: "Walk a directory and count candidate image files",
	Args:  cobra.ExactArgs(1),
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	root := args[0]
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
	s := scanner.New(scfg)

	paths := s.Scan(context.Background(), root,
		func(count int, currentDirectory, currentFile string) {
			fmt.Printf("\r%d files found...", count)
		},
		func(path, message string) {
			fmt.Printf("\nskip %s: %s\n", path, message)
		},
	)
	fmt.Printf("\nfound %d candidate files\n", len(paths))
	return nil
}
