// Package pipeline composes the Scanner, Indexer, and Clusterer into
// one run, tracking its lifecycle as a catalog.ScanSession the way the
// teacher's sort command tracks a PhotoPrism sort job end to end.
package pipeline

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/cluster"
	"github.com/jnovak/facecat/internal/imaging"
	"github.com/jnovak/facecat/internal/indexer"
	"github.com/jnovak/facecat/internal/recognizer"
	"github.com/jnovak/facecat/internal/scanner"
)

var logger = log.New(os.Stderr, "[pipeline] ", log.LstdFlags)

// Event is emitted at every stage boundary and progress tick so a CLI
// progress bar or a web client can render a live run.
type Event struct {
	Stage   string // "scan", "index", "cluster"
	Current int
	Total   int
	Detail  string
}

// EventFunc receives Events in the order they occur.
type EventFunc func(Event)

// Config controls one pipeline run.
type Config struct {
	Scanner scanner.Config
	Indexer indexer.Config
	Cluster struct {
		Threshold      float32
		MinClusterSize int
	}
}

// Runner owns the collaborators a full run needs.
type Runner struct {
	store      *catalog.Store
	decoder    indexer.ImageDecoder
	recognizer recognizer.FaceRecognizer
	cfg        Config
}

// New builds a Runner. decoder and rec are injectable so tests and
// alternate recognizer backends can be swapped in without touching
// the driver logic.
func New(store *catalog.Store, decoder indexer.ImageDecoder, rec recognizer.FaceRecognizer, cfg Config) *Runner {
	return &Runner{store: store, decoder: decoder, recognizer: rec, cfg: cfg}
}

// DefaultConfig returns the spec's default settings for every stage.
func DefaultConfig(thumbnailDir string) Config {
	cfg := Config{
		Scanner: scanner.DefaultConfig(),
		Indexer: indexer.DefaultConfig(thumbnailDir),
	}
	cfg.Cluster.Threshold = cluster.DefaultThreshold
	cfg.Cluster.MinClusterSize = cluster.DefaultMinClusterSize
	return cfg
}

// Run scans root, indexes every discovered path, then runs full batch
// clustering, recording the whole pass as one catalog.ScanSession.
// Cancelling ctx stops the run at the next cooperative checkpoint and
// marks the session cancelled rather than failed.
func (r *Runner) Run(ctx context.Context, root string, emit EventFunc) (*catalog.ScanSession, error) {
	session := &catalog.ScanSession{RootPath: root, Status: catalog.ScanRunning, StartDate: time.Now().UTC()}
	if _, err := r.store.InsertScan(session); err != nil {
		return nil, err
	}

	finish := func(status catalog.ScanStatus) {
		end := time.Now().UTC()
		session.Status = status
		session.EndDate = &end
		if err := r.store.UpdateScan(session); err != nil {
			logger.Printf("update scan %d: %v", session.ID, err)
		}
	}

	paths := r.scan(ctx, root, emit)
	session.TotalFiles = len(paths)

	select {
	case <-ctx.Done():
		finish(catalog.ScanCancelled)
		return session, catalog.NewCancelled("pipeline.Run")
	default:
	}

	if err := r.index(ctx, paths, session, emit); err != nil {
		if catalog.IsCancelled(err) {
			finish(catalog.ScanCancelled)
		} else {
			finish(catalog.ScanFailed)
		}
		return session, err
	}

	engine := cluster.New(r.store)
	if r.cfg.Cluster.Threshold > 0 {
		engine.SetThreshold(r.cfg.Cluster.Threshold)
	}
	if r.cfg.Cluster.MinClusterSize > 0 {
		engine.SetMinClusterSize(r.cfg.Cluster.MinClusterSize)
	}

	if err := engine.ClusterAll(ctx, func(merges, initial int) {
		if emit != nil {
			emit(Event{Stage: "cluster", Current: merges, Total: initial, Detail: "merging"})
		}
	}); err != nil {
		if catalog.IsCancelled(err) {
			finish(catalog.ScanCancelled)
		} else {
			finish(catalog.ScanFailed)
		}
		return session, err
	}

	finish(catalog.ScanCompleted)
	return session, nil
}

func (r *Runner) scan(ctx context.Context, root string, emit EventFunc) []string {
	s := scanner.New(r.cfg.Scanner)
	return s.Scan(ctx, root,
		func(count int, currentDirectory, currentFile string) {
			if emit != nil {
				emit(Event{Stage: "scan", Current: count, Detail: currentFile})
			}
		},
		func(path, message string) {
			logger.Printf("scan %s: %s", path, message)
		},
	)
}

func (r *Runner) index(ctx context.Context, paths []string, session *catalog.ScanSession, emit EventFunc) error {
	ix := indexer.New(r.store, r.decoder, r.recognizer, r.cfg.Indexer)
	return ix.Index(ctx, paths, func(info indexer.ProgressInfo) {
		session.ProcessedFiles = info.Current
		session.TotalFaces = info.CumulativeFaces
		if emit != nil {
			emit(Event{Stage: "index", Current: info.Current, Total: info.Total, Detail: info.Path})
		}
	})
}

// DefaultImageDecoder is the filesystem-backed decoder used outside
// tests.
func DefaultImageDecoder() indexer.ImageDecoder {
	return imaging.Decoder{}
}
