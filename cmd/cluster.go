package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/cluster"
	"github.com/jnovak/facecat/internal/config"
)

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Inspect and recompute face clusters",
}

var clusterAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Recluster every face with an embedding from scratch",
	RunE:  runClusterAll,
}

var clusterNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Assign unclustered faces to the nearest existing cluster",
	RunE:  runClusterNew,
}

var clusterStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print per-cluster face and photo counts",
	RunE:  runClusterStats,
}

var clusterSuggestCmd = &cobra.Command{
	Use:   "suggestions",
	Short: "List cluster pairs just above the merge threshold",
	RunE:  runClusterSuggestions,
}

var clusterMergeCmd = &cobra.Command{
	Use:   "merge <cluster-a> <cluster-b>",
	Short: "Merge cluster-b into cluster-a",
	Args:  cobra.ExactArgs(2),
	RunE:  runClusterMerge,
}

func init() {
	rootCmd.AddCommand(clusterCmd)
	clusterCmd.AddCommand(clusterAllCmd, clusterNewCmd, clusterStatsCmd, clusterSuggestCmd, clusterMergeCmd)

	clusterAllCmd.Flags().Float64("threshold", float64(cluster.DefaultThreshold), "Distance threshold below which two faces are considered the same person")
	clusterAllCmd.Flags().Int("min-cluster-size", cluster.DefaultMinClusterSize, "Minimum faces a cluster must hold to be persisted")

	clusterNewCmd.Flags().Float64("threshold", float64(cluster.DefaultThreshold), "Distance threshold below which two faces are considered the same person")

	clusterSuggestCmd.Flags().Float64("upper", float64(cluster.DefaultThreshold)+0.1, "Upper bound on centroid distance for a suggested pair")
}

func openEngine() (*catalog.Store, *cluster.Engine, error) {
	cfg := config.Load()
	store, err := catalog.Open(cfg.Catalog.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening catalog: %w", err)
	}
	return store, cluster.New(store), nil
}

func runClusterAll(cmd *cobra.Command, args []string) error {
	store, engine, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	engine.SetThreshold(float32(mustGetFloat64(cmd, "threshold")))
	engine.SetMinClusterSize(mustGetInt(cmd, "min-cluster-size"))

	err = engine.ClusterAll(context.Background(), func(mergesDone, initialFaceCount int) {
		fmt.Printf("\r%d merges of %d initial faces", mergesDone, initialFaceCount)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("cluster all failed: %w", err)
	}
	return nil
}

func runClusterNew(cmd *cobra.Command, args []string) error {
	store, engine, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	engine.SetThreshold(float32(mustGetFloat64(cmd, "threshold")))

	err = engine.ClusterNewFaces(context.Background(), func(current, total int) {
		fmt.Printf("\r%d/%d faces assigned", current, total)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("cluster new failed: %w", err)
	}
	return nil
}

func runClusterStats(cmd *cobra.Command, args []string) error {
	store, engine, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := engine.Stats()
	if err != nil {
		return fmt.Errorf("computing stats: %w", err)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}

func runClusterSuggestions(cmd *cobra.Command, args []string) error {
	store, engine, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	upper := mustGetFloat64(cmd, "upper")
	pairs, err := engine.MergeSuggestions(float32(upper))
	if err != nil {
		return fmt.Errorf("computing suggestions: %w", err)
	}
	for _, p := range pairs {
		fmt.Printf("%d %d\n", p[0], p[1])
	}
	return nil
}

func runClusterMerge(cmd *cobra.Command, args []string) error {
	store, engine, err := openEngine()
	if err != nil {
		return err
	}
	defer store.Close()

	var a, b int64
	if _, err := fmt.Sscanf(args[0], "%d", &a); err != nil {
		return fmt.Errorf("invalid cluster-a id %q", args[0])
	}
	if _, err := fmt.Sscanf(args[1], "%d", &b); err != nil {
		return fmt.Errorf("invalid cluster-b id %q", args[1])
	}

	merged, err := engine.Merge(a, b)
	if err != nil {
		return fmt.Errorf("merge failed: %w", err)
	}
	fmt.Printf("merged into cluster %d\n", merged)
	return nil
}
