package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/recognizer"
)

type fakeDecoder struct{}

func (fakeDecoder) Decode(path string) (recognizer.Image, error) {
	return recognizer.Image{Width: 10, Height: 10, Channels: 3, Bytes: make([]byte, 10*10*3)}, nil
}

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRun_ScansIndexesAndClusters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.jpg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("fake"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	store := openTestStore(t)
	thumbDir := t.TempDir()

	emb := make([]float32, catalog.EmbeddingDim)
	for i := range emb {
		emb[i] = 0.1
	}
	detection := recognizer.SingleDetection(0, recognizer.BBox{X: 1, Y: 1, Width: 4, Height: 4})
	stub := recognizer.NewStub(
		recognizer.StubResult{Detections: []recognizer.Detection{detection}},
		recognizer.StubResult{Detections: []recognizer.Detection{detection}},
	)

	cfg := DefaultConfig(thumbDir)
	r := New(store, fakeDecoder{}, stub, cfg)

	var events []Event
	session, err := r.Run(context.Background(), dir, func(e Event) { events = append(events, e) })
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if session.Status != catalog.ScanCompleted {
		t.Fatalf("expected ScanCompleted, got %v", session.Status)
	}
	if session.TotalFiles != 2 {
		t.Fatalf("expected 2 files scanned, got %d", session.TotalFiles)
	}
	if len(events) == 0 {
		t.Fatalf("expected progress events")
	}

	faces, err := store.ListAllFacesWithEmbeddings()
	if err != nil {
		t.Fatalf("ListAllFacesWithEmbeddings: %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces indexed, got %d", len(faces))
	}
}

func TestRun_CancellationMarksSessionCancelled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), []byte("fake"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := openTestStore(t)
	cfg := DefaultConfig(t.TempDir())
	r := New(store, fakeDecoder{}, recognizer.NewStub(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	session, err := r.Run(ctx, dir, nil)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if session.Status != catalog.ScanCancelled {
		t.Fatalf("expected ScanCancelled, got %v", session.Status)
	}
}
