package cluster

import (
	"context"
	"testing"

	"github.com/jnovak/facecat/internal/catalog"
)

func openTestStore(t *testing.T) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func insertPhoto(t *testing.T, store *catalog.Store, path string) int64 {
	t.Helper()
	id, err := store.InsertPhoto(&catalog.Photo{FilePath: path})
	if err != nil {
		t.Fatalf("InsertPhoto: %v", err)
	}
	return id
}

func insertFace(t *testing.T, store *catalog.Store, photoID int64, emb catalog.Embedding) int64 {
	t.Helper()
	id, err := store.InsertFace(&catalog.Face{PhotoID: photoID, Embedding: emb})
	if err != nil {
		t.Fatalf("InsertFace: %v", err)
	}
	return id
}

func embAt(seed float32) catalog.Embedding {
	e := make(catalog.Embedding, catalog.EmbeddingDim)
	for i := range e {
		e[i] = seed
	}
	return e
}

func TestClusterAll_MergesWithinThresholdAndSkipsFar(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	// Two tight groups, far apart from each other.
	insertFace(t, store, photoID, embAt(0.0))
	insertFace(t, store, photoID, embAt(0.01))
	insertFace(t, store, photoID, embAt(10.0))
	insertFace(t, store, photoID, embAt(10.01))

	e := New(store)
	e.SetThreshold(1.0)
	if err := e.ClusterAll(context.Background(), nil); err != nil {
		t.Fatalf("ClusterAll: %v", err)
	}

	clusters, err := store.ListClusters()
	if err != nil {
		t.Fatalf("ListClusters: %v", err)
	}
	if len(clusters) != 2 {
		t.Fatalf("expected 2 clusters, got %d", len(clusters))
	}
	for _, c := range clusters {
		if c.FaceCount != 2 {
			t.Fatalf("expected each cluster to hold 2 faces, got %d", c.FaceCount)
		}
	}
}

func TestClusterAll_RespectsMinClusterSize(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	insertFace(t, store, photoID, embAt(0.0))
	insertFace(t, store, photoID, embAt(50.0))

	e := New(store)
	e.SetThreshold(0.1)
	e.SetMinClusterSize(2)
	if err := e.ClusterAll(context.Background(), nil); err != nil {
		t.Fatalf("ClusterAll: %v", err)
	}

	clusters, err := store.ListClusters()
	if err != nil {
		t.Fatalf("ListClusters: %v", err)
	}
	if len(clusters) != 0 {
		t.Fatalf("expected singleton clusters dropped by min size, got %d", len(clusters))
	}
}

func TestClusterNewFaces_AssignsToNearestExisting(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	seedFace := insertFace(t, store, photoID, embAt(0.0))
	e := New(store)
	e.SetThreshold(1.0)
	if err := e.ClusterAll(context.Background(), nil); err != nil {
		t.Fatalf("seed ClusterAll: %v", err)
	}
	seed, err := store.GetFace(seedFace)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if seed.ClusterID == nil {
		t.Fatalf("expected seed face to land in a cluster")
	}
	existingClusterID := *seed.ClusterID

	insertFace(t, store, photoID, embAt(0.02))
	newFaceID := insertFace(t, store, photoID, embAt(90.0))

	if err := e.ClusterNewFaces(context.Background(), nil); err != nil {
		t.Fatalf("ClusterNewFaces: %v", err)
	}

	near, err := store.GetFace(newFaceID - 1)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if near.ClusterID == nil || *near.ClusterID != existingClusterID {
		t.Fatalf("expected near face to join existing cluster %d, got %v", existingClusterID, near.ClusterID)
	}

	far, err := store.GetFace(newFaceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if far.ClusterID == nil || *far.ClusterID == existingClusterID {
		t.Fatalf("expected far face to form its own cluster, got %v", far.ClusterID)
	}
}

func TestMerge_ReassignsFacesAndDeletesSource(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	clusterA, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})
	clusterB, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(1.0)})
	faceA := insertFace(t, store, photoID, embAt(0.0))
	faceB := insertFace(t, store, photoID, embAt(1.0))
	store.SetFaceCluster(faceA, &clusterA)
	store.SetFaceCluster(faceB, &clusterB)

	e := New(store)
	mergedID, err := e.Merge(clusterA, clusterB)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if mergedID != clusterA {
		t.Fatalf("expected merged id %d, got %d", clusterA, mergedID)
	}

	if _, err := store.GetCluster(clusterB); !catalog.IsNotFound(err) {
		t.Fatalf("expected cluster B deleted, got %v", err)
	}

	face, err := store.GetFace(faceB)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if face.ClusterID == nil || *face.ClusterID != clusterA {
		t.Fatalf("expected face B reassigned to cluster A, got %v", face.ClusterID)
	}
}

func TestMerge_SameIDIsNoOp(t *testing.T) {
	store := openTestStore(t)
	e := New(store)
	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})

	got, err := e.Merge(clusterID, clusterID)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if got != clusterID {
		t.Fatalf("expected no-op to return %d, got %d", clusterID, got)
	}
}

func TestSplit_EmptyFaceIDsIsInvalidInput(t *testing.T) {
	store := openTestStore(t)
	e := New(store)
	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})

	_, err := e.Split(clusterID, nil)
	if catalog.KindOf(err) != catalog.KindInvalidInput {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestSplit_DeletesSourceWhenEmptied(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})
	faceID := insertFace(t, store, photoID, embAt(0.0))
	store.SetFaceCluster(faceID, &clusterID)

	e := New(store)
	newID, err := e.Split(clusterID, []int64{faceID})
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if newID == clusterID {
		t.Fatalf("expected a distinct new cluster id")
	}

	if _, err := store.GetCluster(clusterID); !catalog.IsNotFound(err) {
		t.Fatalf("expected emptied source cluster deleted, got %v", err)
	}

	face, err := store.GetFace(faceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if face.ClusterID == nil || *face.ClusterID != newID {
		t.Fatalf("expected face moved to new cluster %d, got %v", newID, face.ClusterID)
	}
}

func TestSplit_KeepsSourceWhenNotEmptied(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})
	stay := insertFace(t, store, photoID, embAt(0.0))
	leave := insertFace(t, store, photoID, embAt(0.0))
	store.SetFaceCluster(stay, &clusterID)
	store.SetFaceCluster(leave, &clusterID)

	e := New(store)
	if _, err := e.Split(clusterID, []int64{leave}); err != nil {
		t.Fatalf("Split: %v", err)
	}

	if _, err := store.GetCluster(clusterID); err != nil {
		t.Fatalf("expected source cluster to survive, got %v", err)
	}
}

func TestAssignAndUnassignPerson_PropagatesToFaces(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})
	faceID := insertFace(t, store, photoID, embAt(0.0))
	store.SetFaceCluster(faceID, &clusterID)

	personID, err := store.InsertPerson(&catalog.Person{Name: "Alice"})
	if err != nil {
		t.Fatalf("InsertPerson: %v", err)
	}

	e := New(store)
	if err := e.AssignPerson(clusterID, personID); err != nil {
		t.Fatalf("AssignPerson: %v", err)
	}

	face, err := store.GetFace(faceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if face.PersonID == nil || *face.PersonID != personID {
		t.Fatalf("expected face person_id set, got %v", face.PersonID)
	}

	if err := e.UnassignPerson(clusterID); err != nil {
		t.Fatalf("UnassignPerson: %v", err)
	}

	face, err = store.GetFace(faceID)
	if err != nil {
		t.Fatalf("GetFace: %v", err)
	}
	if face.PersonID != nil {
		t.Fatalf("expected face person_id cleared by unassign, got %v", *face.PersonID)
	}

	cluster, err := store.GetCluster(clusterID)
	if err != nil {
		t.Fatalf("GetCluster: %v", err)
	}
	if cluster.PersonID != nil {
		t.Fatalf("expected cluster person_id cleared by unassign, got %v", *cluster.PersonID)
	}
}

func TestRepresentative_BreaksTiesOnSmallestFaceID(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(5.0)})
	far := insertFace(t, store, photoID, embAt(0.0))
	tieA := insertFace(t, store, photoID, embAt(5.0))
	tieB := insertFace(t, store, photoID, embAt(5.0))
	store.SetFaceCluster(far, &clusterID)
	store.SetFaceCluster(tieA, &clusterID)
	store.SetFaceCluster(tieB, &clusterID)

	e := New(store)
	rep, err := e.Representative(clusterID)
	if err != nil {
		t.Fatalf("Representative: %v", err)
	}
	if rep == nil {
		t.Fatalf("expected a representative face")
	}
	if rep.ID != tieA {
		t.Fatalf("expected smallest-id tie-break to pick %d, got %d", tieA, rep.ID)
	}
}

func TestMergeSuggestions_ReturnsPairsAboveThresholdWithinUpperBound(t *testing.T) {
	store := openTestStore(t)

	a, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})
	b, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.08)})
	store.InsertCluster(&catalog.Cluster{Centroid: embAt(50.0)})

	e := New(store)
	e.SetThreshold(0.6)

	pairs, err := e.MergeSuggestions(2.0)
	if err != nil {
		t.Fatalf("MergeSuggestions: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected exactly one suggested pair, got %d", len(pairs))
	}
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	if pairs[0][0] != lo || pairs[0][1] != hi {
		t.Fatalf("expected pair (%d,%d), got %v", lo, hi, pairs[0])
	}
}

func TestStats_ReportsFaceAndPhotoCounts(t *testing.T) {
	store := openTestStore(t)
	photoID := insertPhoto(t, store, "/lib/a.jpg")

	clusterID, _ := store.InsertCluster(&catalog.Cluster{Centroid: embAt(0.0)})
	f1 := insertFace(t, store, photoID, embAt(0.0))
	f2 := insertFace(t, store, photoID, embAt(0.0))
	store.SetFaceCluster(f1, &clusterID)
	store.SetFaceCluster(f2, &clusterID)

	e := New(store)
	stats, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("expected 1 cluster stat, got %d", len(stats))
	}
	if stats[0].FaceCount != 2 {
		t.Fatalf("expected FaceCount 2, got %d", stats[0].FaceCount)
	}
	if stats[0].PhotoCount != 1 {
		t.Fatalf("expected PhotoCount 1, got %d", stats[0].PhotoCount)
	}
}
