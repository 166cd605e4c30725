package indexer

import (
	"context"
	"testing"

	"github.com/jnovak/facecat/internal/catalog"
	"github.com/jnovak/facecat/internal/recognizer"
)

type fakeDecoder struct{}

func (fakeDecoder) Decode(path string) (recognizer.Image, error) {
	return recognizer.Image{Width: 100, Height: 100, Channels: 3, Bytes: make([]byte, 100*100*3)}, nil
}

func openStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestIndex_IsIdempotent(t *testing.T) {
	store := openStore(t)
	rec := recognizer.NewStub(recognizer.StubResult{
		Detections: []recognizer.Detection{recognizer.SingleDetection(0.1, recognizer.BBox{X: 5, Y: 5, Width: 20, Height: 20})},
	})
	ix := New(store, fakeDecoder{}, rec, Config{BatchSize: 50})

	paths := []string{"/lib/p.jpg"}
	if err := ix.Index(context.Background(), paths, nil); err != nil {
		t.Fatalf("first Index: %v", err)
	}
	if err := ix.Index(context.Background(), paths, nil); err != nil {
		t.Fatalf("second Index: %v", err)
	}

	photo, err := store.GetPhotoByPath("/lib/p.jpg")
	if err != nil {
		t.Fatalf("GetPhotoByPath: %v", err)
	}
	faces, err := store.ListFacesForPhoto(photo.ID)
	if err != nil {
		t.Fatalf("ListFacesForPhoto: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected exactly 1 face after re-index, got %d", len(faces))
	}
}

func TestIndex_InsertsFacesWithEmbeddings(t *testing.T) {
	store := openStore(t)
	rec := recognizer.NewStub(recognizer.StubResult{
		Detections: []recognizer.Detection{
			recognizer.SingleDetection(0.1, recognizer.BBox{X: 0, Y: 0, Width: 10, Height: 10}),
			recognizer.SingleDetection(0.2, recognizer.BBox{X: 20, Y: 20, Width: 10, Height: 10}),
		},
	})
	ix := New(store, fakeDecoder{}, rec, Config{BatchSize: 50})

	if err := ix.Index(context.Background(), []string{"/lib/q.jpg"}, nil); err != nil {
		t.Fatalf("Index: %v", err)
	}

	photo, err := store.GetPhotoByPath("/lib/q.jpg")
	if err != nil {
		t.Fatalf("GetPhotoByPath: %v", err)
	}
	faces, err := store.ListFacesForPhoto(photo.ID)
	if err != nil {
		t.Fatalf("ListFacesForPhoto: %v", err)
	}
	if len(faces) != 2 {
		t.Fatalf("expected 2 faces, got %d", len(faces))
	}
	if len(faces[0].Embedding) != catalog.EmbeddingDim {
		t.Fatalf("expected %d-dim embedding, got %d", catalog.EmbeddingDim, len(faces[0].Embedding))
	}
}
