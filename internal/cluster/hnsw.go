package cluster

import (
	"math"
	"sync"

	"github.com/coder/hnsw"

	"github.com/jnovak/facecat/internal/catalog"
)

// centroidGraphM mirrors the teacher's HNSW tuning constant for the
// maximum number of neighbours per node.
const centroidGraphM = 16

// euclideanDistance adapts cluster.Distance to hnsw's
// func([]float32, []float32) float32 distance-function signature.
func euclideanDistance(a, b []float32) float32 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum))
}

// CentroidIndex is an approximate-nearest-centroid shortlist over
// Cluster centroids. Its only caller is Engine.SimilarClusters, which
// returns the shortlist as is; batch clustering, incremental
// clustering and merge suggestions do not use it and compute exact
// distances instead.
type CentroidIndex struct {
	mu    sync.RWMutex
	graph *hnsw.Graph[int64]
}

// NewCentroidIndex builds a shortlist index over the given clusters.
// Clusters with an empty (not-yet-assigned) centroid are skipped.
func NewCentroidIndex(clusters []catalog.Cluster) *CentroidIndex {
	g := hnsw.NewGraph[int64]()
	g.M = centroidGraphM
	g.Ml = 1.0 / float64(centroidGraphM)
	g.Distance = euclideanDistance

	for _, c := range clusters {
		if len(c.Centroid) != catalog.EmbeddingDim {
			continue
		}
		g.Add(hnsw.MakeNode(c.ID, []float32(c.Centroid)))
	}
	return &CentroidIndex{graph: g}
}

// Nearest returns up to k candidate cluster IDs closest to query,
// nearest first. The result is a shortlist, not an exact answer.
func (idx *CentroidIndex) Nearest(query catalog.Embedding, k int) []int64 {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	nodes := idx.graph.Search([]float32(query), k)
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.Key
	}
	return ids
}
