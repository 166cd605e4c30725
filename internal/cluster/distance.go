package cluster

import (
	"math"

	"github.com/jnovak/facecat/internal/catalog"
)

// Distance computes the Euclidean distance between two 128-dimensional
// embeddings. Both inputs must have length catalog.EmbeddingDim.
func Distance(a, b catalog.Embedding) (float32, error) {
	const op = "cluster.Distance"
	if len(a) != catalog.EmbeddingDim || len(b) != catalog.EmbeddingDim {
		return 0, catalog.NewInvalidInput(op)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum)), nil
}

// Centroid computes the arithmetic mean, per dimension, of a non-empty
// set of embeddings. The caller must never pass an empty slice; the
// centroid of an empty set is undefined and this function panics to
// surface that misuse immediately rather than silently returning a
// zero vector that would look like a valid embedding.
func Centroid(embeddings []catalog.Embedding) catalog.Embedding {
	if len(embeddings) == 0 {
		panic("cluster.Centroid: empty set")
	}
	c := make(catalog.Embedding, catalog.EmbeddingDim)
	for _, e := range embeddings {
		for i := 0; i < catalog.EmbeddingDim; i++ {
			c[i] += e[i]
		}
	}
	n := float32(len(embeddings))
	for i := range c {
		c[i] /= n
	}
	return c
}
