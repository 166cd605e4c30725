package catalog

import (
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleEmbedding(seed float32) Embedding {
	e := make(Embedding, EmbeddingDim)
	for i := range e {
		e[i] = seed + float32(i)*0.001
	}
	return e
}

func TestInsertPhoto_UniqueFilePath(t *testing.T) {
	store := openTestStore(t)

	p := &Photo{FilePath: "/lib/a.jpg", Width: 100, Height: 100, ScanDate: time.Now().UTC()}
	if _, err := store.InsertPhoto(p); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	dup := &Photo{FilePath: "/lib/a.jpg", Width: 100, Height: 100, ScanDate: time.Now().UTC()}
	_, err := store.InsertPhoto(dup)
	if !IsConflict(err) {
		t.Fatalf("expected Conflict, got %v", err)
	}
}

func TestTransaction_RollbackRestoresState(t *testing.T) {
	store := openTestStore(t)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if _, err := tx.InsertPhoto(&Photo{FilePath: "/lib/rollback.jpg", ScanDate: time.Now().UTC()}); err != nil {
		t.Fatalf("insert in tx: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	_, err = store.GetPhotoByPath("/lib/rollback.jpg")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound after rollback, got %v", err)
	}
}

func TestTransaction_NestedBeginFails(t *testing.T) {
	store := openTestStore(t)

	tx, err := store.Begin()
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer tx.Rollback()

	_, err = store.Begin()
	if KindOf(err) != KindInvalidState {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestFaceEmbedding_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	photoID, err := store.InsertPhoto(&Photo{FilePath: "/lib/b.jpg", ScanDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("InsertPhoto: %v", err)
	}

	emb := sampleEmbedding(0.5)
	faceID, err := store.InsertFace(&Face{PhotoID: photoID, Embedding: emb, Confidence: 0.9})
	if err != nil {
		t.Fatalf("InsertFace: %v", err)
	}

	got, err := store.GetFace(faceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if len(got.Embedding) != EmbeddingDim {
		t.Fatalf("expected %d dims, got %d", EmbeddingDim, len(got.Embedding))
	}
	for i := range emb {
		if got.Embedding[i] != emb[i] {
			t.Fatalf("dim %d: want %v got %v", i, emb[i], got.Embedding[i])
		}
	}
}

func TestInsertFace_WrongEmbeddingSizeIsCorrupt(t *testing.T) {
	store := openTestStore(t)

	photoID, err := store.InsertPhoto(&Photo{FilePath: "/lib/c.jpg", ScanDate: time.Now().UTC()})
	if err != nil {
		t.Fatalf("InsertPhoto: %v", err)
	}

	_, err = store.InsertFace(&Face{PhotoID: photoID, Embedding: make(Embedding, 64)})
	if KindOf(err) != KindCorrupt {
		t.Fatalf("expected Corrupt, got %v", err)
	}
}

func TestDeleteCluster_NullSetsFaceClusterID(t *testing.T) {
	store := openTestStore(t)

	photoID, _ := store.InsertPhoto(&Photo{FilePath: "/lib/d.jpg", ScanDate: time.Now().UTC()})
	clusterID, err := store.InsertCluster(&Cluster{Centroid: sampleEmbedding(0.1)})
	if err != nil {
		t.Fatalf("InsertCluster: %v", err)
	}
	faceID, _ := store.InsertFace(&Face{PhotoID: photoID, Embedding: sampleEmbedding(0.1), ClusterID: &clusterID})

	if err := store.DeleteCluster(clusterID); err != nil {
		t.Fatalf("DeleteCluster: %v", err)
	}

	got, err := store.GetFace(faceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if got.ClusterID != nil {
		t.Fatalf("expected nil cluster_id after delete, got %v", *got.ClusterID)
	}
}

func TestDeletePerson_NullSetsFaceAndClusterPersonID(t *testing.T) {
	store := openTestStore(t)

	personID, err := store.InsertPerson(&Person{Name: "Alice"})
	if err != nil {
		t.Fatalf("InsertPerson: %v", err)
	}
	clusterID, _ := store.InsertCluster(&Cluster{Centroid: sampleEmbedding(0.2), PersonID: &personID})
	photoID, _ := store.InsertPhoto(&Photo{FilePath: "/lib/e.jpg", ScanDate: time.Now().UTC()})
	faceID, _ := store.InsertFace(&Face{PhotoID: photoID, Embedding: sampleEmbedding(0.2), ClusterID: &clusterID, PersonID: &personID})

	if err := store.DeletePerson(personID); err != nil {
		t.Fatalf("DeletePerson: %v", err)
	}

	face, err := store.GetFace(faceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if face.PersonID != nil {
		t.Fatalf("expected nil face person_id, got %v", *face.PersonID)
	}

	cluster, err := store.GetCluster(clusterID)
	if err != nil {
		t.Fatalf("GetCluster: %v", err)
	}
	if cluster.PersonID != nil {
		t.Fatalf("expected nil cluster person_id, got %v", *cluster.PersonID)
	}
}
