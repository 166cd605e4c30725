package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "facecat",
	Short: "A local face-clustering photo catalog",
	Long: `facecat scans a photo library, detects and embeds faces,
clusters them by identity, and serves a REST and WebSocket API for
reviewing, correcting and labelling the result.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	_ = godotenv.Load()
}
