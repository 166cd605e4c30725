// Package indexer consumes a list of file paths and produces persisted
// Photos and Faces with cropped thumbnails on disk, batching commits
// the way the teacher's sorter pipeline batches its own writes.
package indexer

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/imaging"
	"github.com/jnovak/facecat/internal/recognizer"
)

var logger = log.New(os.Stderr, "[indexer] ", log.LstdFlags)

// ImageDecoder is the injectable decode(path) -> Image collaborator.
type ImageDecoder interface {
	Decode(path string) (recognizer.Image, error)
}

// ProgressInfo is delivered after each processed path, mirroring the
// teacher's sorter ProgressInfo callback contract.
type ProgressInfo struct {
	Current         int
	Total           int
	Path            string
	CumulativeFaces int
}

// ProgressFunc receives ProgressInfo events in the order they occur.
type ProgressFunc func(ProgressInfo)

// Config controls a single Indexer run.
type Config struct {
	ThumbnailDir  string
	ThumbnailSize int
	BatchSize     int // commit every N processed paths; default 50
}

// DefaultConfig returns the spec's default Indexer configuration.
func DefaultConfig(thumbnailDir string) Config {
	return Config{
		ThumbnailDir:  thumbnailDir,
		ThumbnailSize: imaging.DefaultThumbnailSize,
		BatchSize:     50,
	}
}

// Indexer decodes, detects, and persists photos and faces.
type Indexer struct {
	store      *catalog.Store
	decoder    ImageDecoder
	recognizer recognizer.FaceRecognizer
	cfg        Config
}

// New builds an Indexer borrowing store and the two injected
// collaborators.
func New(store *catalog.Store, decoder ImageDecoder, rec recognizer.FaceRecognizer, cfg Config) *Indexer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.ThumbnailSize <= 0 {
		cfg.ThumbnailSize = imaging.DefaultThumbnailSize
	}
	return &Indexer{store: store, decoder: decoder, recognizer: rec, cfg: cfg}
}

// Index processes paths in order: idempotent re-index of an already
// catalogued path is a no-op; decode failures are logged and skipped;
// the pipeline commits every cfg.BatchSize processed paths.
func (ix *Indexer) Index(ctx context.Context, paths []string, progress ProgressFunc) error {
	cumulativeFaces := 0
	total := len(paths)

	var tx *catalog.Tx
	var err error
	processedInBatch := 0

	beginBatch := func() error {
		tx, err = ix.store.Begin()
		return err
	}
	commitBatch := func() error {
		if tx == nil {
			return nil
		}
		err := tx.Commit()
		tx = nil
		processedInBatch = 0
		return err
	}
	rollbackBatch := func() {
		if tx != nil {
			tx.Rollback()
			tx = nil
			processedInBatch = 0
		}
	}

	if err := beginBatch(); err != nil {
		return err
	}

	for i, path := range paths {
		select {
		case <-ctx.Done():
			rollbackBatch()
			return catalogCancelled()
		default:
		}

		faces, err := ix.indexOne(tx, path)
		if err != nil {
			logger.Printf("index %s: %v", path, err)
		} else {
			cumulativeFaces += faces
		}

		processedInBatch++
		if progress != nil {
			progress(ProgressInfo{Current: i + 1, Total: total, Path: path, CumulativeFaces: cumulativeFaces})
		}

		if processedInBatch >= ix.cfg.BatchSize {
			if err := commitBatch(); err != nil {
				return err
			}
			if err := beginBatch(); err != nil {
				return err
			}
		}
	}

	return commitBatch()
}

// indexOne runs steps 1-6 of the Indexer algorithm for a single path
// inside the caller's open transaction, returning the number of faces
// inserted.
func (ix *Indexer) indexOne(tx *catalog.Tx, path string) (int, error) {
	if existing, err := tx.GetPhotoByPath(path); err == nil && existing != nil {
		return 0, nil // idempotent re-index
	}

	img, err := ix.decoder.Decode(path)
	if err != nil {
		return 0, err
	}

	info, statErr := os.Stat(path)
	var size int64
	if statErr == nil {
		size = info.Size()
	}

	photo := &catalog.Photo{
		FilePath: path,
		Width:    img.Width,
		Height:   img.Height,
		FileSize: size,
		ScanDate: time.Now().UTC(),
	}
	photoID, err := tx.InsertPhoto(photo)
	if err != nil {
		return 0, err
	}

	detections, err := ix.recognizer.Detect(img)
	if err != nil {
		return 0, err
	}

	for _, d := range detections {
		face := &catalog.Face{
			PhotoID: photoID,
			BBox: catalog.BoundingBox{
				X: d.BBox.X, Y: d.BBox.Y, Width: d.BBox.Width, Height: d.BBox.Height,
			},
			Embedding:  catalog.Embedding(d.Embedding),
			Confidence: d.Confidence,
		}
		faceID, err := tx.InsertFace(face)
		if err != nil {
			return 0, err
		}

		if ix.cfg.ThumbnailDir != "" {
			if err := imaging.WriteThumbnail(img, d.BBox, ix.cfg.ThumbnailDir, faceID, ix.cfg.ThumbnailSize); err != nil {
				logger.Printf("thumbnail for face %d: %v", faceID, err)
			}
		}
	}

	return len(detections), nil
}

func catalogCancelled() error {
	return catalog.NewCancelled("indexer.Index")
}
