// Package recognizer defines the external face-detection/embedding
// collaborator boundary. The concrete model is explicitly out of
// scope — production code supplies a FaceRecognizer backed by whatever
// detector it likes; this package only pins the shape, mirroring the
// Detection/Embedder split seen in dedicated face-model services.
package recognizer

import "math"

// Point is a 2D landmark coordinate in photo pixel space.
type Point struct {
	X, Y int
}

// BBox is a detection's bounding box in photo pixel space.
type BBox struct {
	X, Y, Width, Height int
}

// Detection is one detected face, as returned by FaceRecognizer.Detect.
type Detection struct {
	BBox       BBox
	Confidence float32
	Embedding  []float32 // exactly 128 dims
	Landmarks  []Point
}

// Image is a decoded, row-major RGB8 raster.
type Image struct {
	Width    int
	Height   int
	Channels int
	Bytes    []byte
}

// FaceRecognizer is the injectable detection + embedding model.
type FaceRecognizer interface {
	Detect(img Image) ([]Detection, error)
}

// EmbeddingDistance is the static helper mandated alongside
// FaceRecognizer in the external interface — same Euclidean formula
// the Clusterer uses, exposed here so callers that only have a
// recognizer (not a cluster.Engine) can still compare two embeddings.
func EmbeddingDistance(a, b []float32) (float32, error) {
	if len(a) != 128 || len(b) != 128 {
		return 0, ErrInvalidDimension
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return float32(math.Sqrt(sum)), nil
}

// ErrInvalidDimension is returned by EmbeddingDistance for non-128-dim
// inputs.
var ErrInvalidDimension = errInvalidDimension{}

type errInvalidDimension struct{}

func (errInvalidDimension) Error() string { return "recognizer: embedding must have 128 dimensions" }
