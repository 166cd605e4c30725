// Package config aggregates every environment-driven setting for the
// scan/index/cluster pipeline and the web server, the way the teacher
// loads its own Config from the process environment.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jnovak/facecat/internal/scanner"
)

// Config aggregates settings for every pipeline stage plus the server.
type Config struct {
	Catalog   CatalogConfig
	Scanner   ScannerConfig
	Indexer   IndexerConfig
	Cluster   ClusterConfig
	Server    ServerConfig
	Recognize RecognizeConfig
}

type CatalogConfig struct {
	DBPath string // defaults to ./facecat.db
}

type ScannerConfig struct {
	Extensions     []string
	SkipHidden     bool
	FollowSymlinks bool
}

type IndexerConfig struct {
	ThumbnailDir  string
	ThumbnailSize int
	BatchSize     int
}

type ClusterConfig struct {
	DistanceThreshold float32
	MinClusterSize    int
}

type ServerConfig struct {
	Host string
	Port int
}

// RecognizeConfig controls the injectable face-detection backend. No
// default implementation ships here; the field exists so a future
// recognizer.FaceRecognizer can be selected by name without touching
// the rest of the pipeline wiring.
type RecognizeConfig struct {
	Backend string
}

// Load reads environment variables (and an optional .env file) into a
// Config, the way the teacher's own config.Load does, and fills in the
// spec's defaults for anything left unset.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Catalog: CatalogConfig{
			DBPath: envString("FACECAT_DB_PATH", "./facecat.db"),
		},
		Scanner: ScannerConfig{
			Extensions:     envStringSlice("FACECAT_SCAN_EXTENSIONS", scanner.DefaultExtensions),
			SkipHidden:     envBool("FACECAT_SCAN_SKIP_HIDDEN", true),
			FollowSymlinks: envBool("FACECAT_SCAN_FOLLOW_SYMLINKS", false),
		},
		Indexer: IndexerConfig{
			ThumbnailDir:  envString("FACECAT_THUMBNAIL_DIR", "./thumbnails"),
			ThumbnailSize: envInt("FACECAT_THUMBNAIL_SIZE", 150),
			BatchSize:     envInt("FACECAT_INDEX_BATCH_SIZE", 50),
		},
		Cluster: ClusterConfig{
			DistanceThreshold: envFloat("FACECAT_DISTANCE_THRESHOLD", 0.6),
			MinClusterSize:    envInt("FACECAT_MIN_CLUSTER_SIZE", 1),
		},
		Server: ServerConfig{
			Host: envString("FACECAT_HOST", "0.0.0.0"),
			Port: envInt("FACECAT_PORT", 8080),
		},
		Recognize: RecognizeConfig{
			Backend: envString("FACECAT_RECOGNIZER_BACKEND", "stub"),
		},
	}
}

func envString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

// envInt reads an environment variable and parses it as a positive
// integer. Returns the default value if the env var is unset, empty,
// or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

func envFloat(key string, defaultVal float32) float32 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return float32(f)
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envStringSlice(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultVal
	}
	return out
}
