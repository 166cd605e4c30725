// Package cluster implements the Clusterer: distance-threshold
// agglomerative batch clustering plus incremental clustering, merge,
// split, person assignment, representative-face lookup, merge
// suggestions and statistics — all against embeddings borrowed from
// the Catalog Store.
package cluster

import (
	"context"
	"log"
	"os"

	"github.com/jnovak/facecat/internal/catalog"
)

var logger = log.New(os.Stderr, "[cluster] ", log.LstdFlags)

// DefaultThreshold is the spec's default distance threshold T.
const DefaultThreshold float32 = 0.6

// DefaultMinClusterSize is the spec's default minimum cluster size
// persisted by batch clustering.
const DefaultMinClusterSize = 1

// BatchProgressFunc is invoked after each merge during cluster_all.
type BatchProgressFunc func(mergesDone, initialFaceCount int)

// IncrementalProgressFunc is invoked after each face during
// cluster_new_faces.
type IncrementalProgressFunc func(current, total int)

// Engine is the Clusterer. It borrows a *catalog.Store; it never owns
// rows itself, following the spec's ownership rule that the Catalog
// Store exclusively owns all rows.
type Engine struct {
	store          *catalog.Store
	threshold      float32
	minClusterSize int
}

// New builds an Engine with the spec's default threshold and minimum
// cluster size.
func New(store *catalog.Store) *Engine {
	return &Engine{store: store, threshold: DefaultThreshold, minClusterSize: DefaultMinClusterSize}
}

// SetThreshold updates the distance threshold used by subsequent
// operations.
func (e *Engine) SetThreshold(t float32) { e.threshold = t }

// Threshold returns the current distance threshold.
func (e *Engine) Threshold() float32 { return e.threshold }

// SetMinClusterSize updates the minimum member count a working cluster
// must reach to be persisted by ClusterAll.
func (e *Engine) SetMinClusterSize(n int) { e.minClusterSize = n }

type workingCluster struct {
	faces    []catalog.Face
	centroid catalog.Embedding
}

// ClusterAll runs single-linkage agglomerative clustering over every
// Face with a valid embedding, per spec §4.4.1.
func (e *Engine) ClusterAll(ctx context.Context, progress BatchProgressFunc) error {
	const op = "cluster.ClusterAll"

	faces, err := e.store.ListAllFacesWithEmbeddings()
	if err != nil {
		return err
	}
	initial := len(faces)
	if initial == 0 {
		return nil
	}

	working := make([]*workingCluster, len(faces))
	for i, f := range faces {
		centroid := make(catalog.Embedding, len(f.Embedding))
		copy(centroid, f.Embedding)
		working[i] = &workingCluster{faces: []catalog.Face{f}, centroid: centroid}
	}

	merges := 0
	for len(working) > 1 {
		select {
		case <-ctx.Done():
			return catalog.NewCancelled(op)
		default:
		}

		bestI, bestJ := -1, -1
		var bestDist float32
		for i := 0; i < len(working); i++ {
			for j := i + 1; j < len(working); j++ {
				d, err := Distance(working[i].centroid, working[j].centroid)
				if err != nil {
					return err
				}
				if bestI == -1 || d < bestDist {
					bestI, bestJ, bestDist = i, j, d
				}
			}
		}

		if bestDist > e.threshold {
			break
		}

		merged := make([]catalog.Face, 0, len(working[bestI].faces)+len(working[bestJ].faces))
		merged = append(merged, working[bestI].faces...)
		merged = append(merged, working[bestJ].faces...)
		embs := make([]catalog.Embedding, len(merged))
		for k, f := range merged {
			embs[k] = f.Embedding
		}

		working[bestI].faces = merged
		working[bestI].centroid = Centroid(embs)
		working = append(working[:bestJ], working[bestJ+1:]...)

		merges++
		if progress != nil {
			progress(merges, initial)
		}
	}

	tx, err := e.store.Begin()
	if err != nil {
		return err
	}
	for _, w := range working {
		if len(w.faces) < e.minClusterSize {
			continue
		}
		cid, err := tx.InsertCluster(&catalog.Cluster{Centroid: w.centroid})
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, f := range w.faces {
			if err := tx.SetFaceCluster(f.ID, &cid); err != nil {
				tx.Rollback()
				return err
			}
		}
		if err := tx.SetClusterCentroid(cid, w.centroid); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// ClusterNewFaces incrementally assigns every unclustered Face to its
// nearest existing (or newly created) Cluster, per spec §4.4.2. The
// whole pass runs inside one transaction.
func (e *Engine) ClusterNewFaces(ctx context.Context, progress IncrementalProgressFunc) error {
	const op = "cluster.ClusterNewFaces"

	tx, err := e.store.Begin()
	if err != nil {
		return err
	}

	faces, err := tx.ListUnclusteredFaces()
	if err != nil {
		tx.Rollback()
		return err
	}
	existing, err := tx.ListClusters()
	if err != nil {
		tx.Rollback()
		return err
	}

	working := make([]workingCluster, 0, len(existing))
	for _, c := range existing {
		members, err := tx.ListFacesForCluster(c.ID)
		if err != nil {
			tx.Rollback()
			return err
		}
		working = append(working, workingCluster{centroid: c.Centroid, faces: members})
	}
	ids := make([]int64, len(existing))
	for i, c := range existing {
		ids[i] = c.ID
	}

	total := len(faces)
	for idx, f := range faces {
		select {
		case <-ctx.Done():
			tx.Rollback()
			return catalog.NewCancelled(op)
		default:
		}

		bestWI := -1
		var bestDist float32
		for wi := range working {
			if len(working[wi].faces) == 0 {
				continue
			}
			centroid := Centroid(embeddingsOf(working[wi].faces))
			d, err := Distance(f.Embedding, centroid)
			if err != nil {
				tx.Rollback()
				return err
			}
			if bestWI == -1 || d < bestDist {
				bestWI, bestDist = wi, d
			}
		}

		if bestWI != -1 && bestDist <= e.threshold {
			cid := ids[bestWI]
			working[bestWI].faces = append(working[bestWI].faces, f)
			newCentroid := Centroid(embeddingsOf(working[bestWI].faces))
			if err := tx.SetFaceCluster(f.ID, &cid); err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.SetClusterCentroid(cid, newCentroid); err != nil {
				tx.Rollback()
				return err
			}
		} else {
			cid, err := tx.InsertCluster(&catalog.Cluster{Centroid: f.Embedding})
			if err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.SetFaceCluster(f.ID, &cid); err != nil {
				tx.Rollback()
				return err
			}
			if err := tx.SetClusterCentroid(cid, f.Embedding); err != nil {
				tx.Rollback()
				return err
			}
			working = append(working, workingCluster{faces: []catalog.Face{f}, centroid: f.Embedding})
			ids = append(ids, cid)
		}

		if progress != nil {
			progress(idx+1, total)
		}
	}

	return tx.Commit()
}

func embeddingsOf(faces []catalog.Face) []catalog.Embedding {
	out := make([]catalog.Embedding, len(faces))
	for i, f := range faces {
		out[i] = f.Embedding
	}
	return out
}

// Merge reassigns every Face in b to a, recomputes a's centroid, and
// deletes b. If a == b it is a no-op.
func (e *Engine) Merge(a, b int64) (int64, error) {
	if a == b {
		return a, nil
	}

	tx, err := e.store.Begin()
	if err != nil {
		return 0, err
	}

	bFaces, err := tx.ListFacesForCluster(b)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	for _, f := range bFaces {
		if err := tx.SetFaceCluster(f.ID, &a); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	merged, err := tx.ListFacesForCluster(a)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if len(merged) > 0 {
		if err := tx.SetClusterCentroid(a, Centroid(embeddingsOf(merged))); err != nil {
			tx.Rollback()
			return 0, err
		}
	}

	if err := tx.DeleteCluster(b); err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return a, nil
}

// Split moves faceIDs (all currently expected to belong to source)
// into a new Cluster, recomputes source's centroid from its remaining
// members, and deletes source if it becomes empty.
func (e *Engine) Split(source int64, faceIDs []int64) (int64, error) {
	const op = "cluster.Split"
	if len(faceIDs) == 0 {
		return 0, catalog.NewInvalidInput(op)
	}

	tx, err := e.store.Begin()
	if err != nil {
		return 0, err
	}

	embs := make([]catalog.Embedding, 0, len(faceIDs))
	for _, fid := range faceIDs {
		f, err := tx.GetFace(fid)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		embs = append(embs, f.Embedding)
	}

	newCentroid := Centroid(embs)
	newID, err := tx.InsertCluster(&catalog.Cluster{Centroid: newCentroid})
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	for _, fid := range faceIDs {
		if err := tx.SetFaceCluster(fid, &newID); err != nil {
			tx.Rollback()
			return 0, err
		}
	}
	if err := tx.SetClusterCentroid(newID, newCentroid); err != nil {
		tx.Rollback()
		return 0, err
	}

	remaining, err := tx.ListFacesForCluster(source)
	if err != nil {
		tx.Rollback()
		return 0, err
	}
	if len(remaining) == 0 {
		if err := tx.DeleteCluster(source); err != nil {
			tx.Rollback()
			return 0, err
		}
	} else if err := tx.SetClusterCentroid(source, Centroid(embeddingsOf(remaining))); err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return newID, nil
}

// AssignPerson sets personID on every Face in clusterID and on the
// Cluster row itself, in one transaction.
func (e *Engine) AssignPerson(clusterID, personID int64) error {
	tx, err := e.store.Begin()
	if err != nil {
		return err
	}
	faces, err := tx.ListFacesForCluster(clusterID)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, f := range faces {
		if err := tx.SetFacePerson(f.ID, &personID); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.SetClusterPerson(clusterID, &personID); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UnassignPerson null-sets person_id on every Face in clusterID and on
// the Cluster row itself, in one transaction.
func (e *Engine) UnassignPerson(clusterID int64) error {
	tx, err := e.store.Begin()
	if err != nil {
		return err
	}
	faces, err := tx.ListFacesForCluster(clusterID)
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, f := range faces {
		if err := tx.SetFacePerson(f.ID, nil); err != nil {
			tx.Rollback()
			return err
		}
	}
	if err := tx.SetClusterPerson(clusterID, nil); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Representative returns the Face in clusterID whose embedding has the
// smallest distance to the Cluster's centroid, ties broken by smallest
// Face id (guaranteed by iterating faces in ascending-id order and
// only replacing the best on a strict improvement).
func (e *Engine) Representative(clusterID int64) (*catalog.Face, error) {
	c, err := e.store.GetCluster(clusterID)
	if err != nil {
		return nil, err
	}
	if len(c.Centroid) == 0 {
		return nil, nil
	}
	faces, err := e.store.ListFacesForCluster(clusterID)
	if err != nil {
		return nil, err
	}
	if len(faces) == 0 {
		return nil, nil
	}

	var best *catalog.Face
	var bestDist float32
	for i := range faces {
		d, err := Distance(faces[i].Embedding, c.Centroid)
		if err != nil {
			return nil, err
		}
		if best == nil || d < bestDist {
			best = &faces[i]
			bestDist = d
		}
	}
	return best, nil
}

// MergeSuggestions returns all unordered Cluster pairs whose centroid
// distance lies in (T, upper], emitted once with a < b.
func (e *Engine) MergeSuggestions(upper float32) ([][2]int64, error) {
	clusters, err := e.store.ListClusters()
	if err != nil {
		return nil, err
	}

	var out [][2]int64
	for i := 0; i < len(clusters); i++ {
		if len(clusters[i].Centroid) != catalog.EmbeddingDim {
			continue
		}
		for j := i + 1; j < len(clusters); j++ {
			if len(clusters[j].Centroid) != catalog.EmbeddingDim {
				continue
			}
			d, err := Distance(clusters[i].Centroid, clusters[j].Centroid)
			if err != nil {
				return nil, err
			}
			if d > e.threshold && d <= upper {
				a, b := clusters[i].ID, clusters[j].ID
				if a > b {
					a, b = b, a
				}
				out = append(out, [2]int64{a, b})
			}
		}
	}
	return out, nil
}

// SimilarClusters returns up to k candidate Cluster IDs whose centroid
// is approximately nearest to embedding, using an in-memory HNSW
// shortlist. It is a presentation-layer convenience (e.g. "clusters
// like this face") and is never used by the exact algorithms above.
func (e *Engine) SimilarClusters(embedding catalog.Embedding, k int) ([]int64, error) {
	clusters, err := e.store.ListClusters()
	if err != nil {
		return nil, err
	}
	if len(clusters) == 0 {
		return nil, nil
	}
	idx := NewCentroidIndex(clusters)
	return idx.Nearest(embedding, k), nil
}

// Stats returns per-Cluster statistics for the presentation layer.
func (e *Engine) Stats() ([]catalog.ClusterStats, error) {
	clusters, err := e.store.ListClusters()
	if err != nil {
		return nil, err
	}

	out := make([]catalog.ClusterStats, 0, len(clusters))
	for _, c := range clusters {
		faces, err := e.store.ListFacesForCluster(c.ID)
		if err != nil {
			return nil, err
		}
		photoSet := make(map[int64]struct{}, len(faces))
		for _, f := range faces {
			photoSet[f.PhotoID] = struct{}{}
		}

		var personName *string
		if c.PersonID != nil {
			if p, err := e.store.GetPerson(*c.PersonID); err == nil {
				personName = &p.Name
			}
		}

		var repID int64
		if rep, err := e.Representative(c.ID); err == nil && rep != nil {
			repID = rep.ID
		}

		out = append(out, catalog.ClusterStats{
			ClusterID:            c.ID,
			PersonID:             c.PersonID,
			PersonName:           personName,
			FaceCount:            len(faces),
			PhotoCount:           len(photoSet),
			RepresentativeFaceID: repID,
		})
	}
	return out, nil
}
