package catalog

import "time"

// EmbeddingDim is the fixed dimensionality of a face embedding / cluster
// centroid, mandated by the recognizer contract.
const EmbeddingDim = 128

// Embedding is a 128-dimensional face (or cluster centroid) vector.
type Embedding []float32

// BoundingBox is an axis-aligned box in photo pixel space.
type BoundingBox struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Photo is a single file on disk that has been indexed.
type Photo struct {
	ID         int64
	FilePath   string
	FileName   string
	FolderPath string
	Width      int
	Height     int
	FileSize   int64
	ExifDate   *time.Time
	ScanDate   time.Time
	Checksum   *string
}

// Face is a single detected face within one Photo.
type Face struct {
	ID         int64
	PhotoID    int64
	BBox       BoundingBox
	Embedding  Embedding
	Confidence float32
	ClusterID  *int64
	PersonID   *int64
}

// Cluster is a group of Faces hypothesized to depict one person.
type Cluster struct {
	ID          int64
	Centroid    Embedding
	FaceCount   int
	CreatedDate time.Time
	PersonID    *int64
}

// Person is a user-identified identity.
type Person struct {
	ID          int64
	Name        string
	CreatedDate time.Time
	Notes       *string
}

// ScanStatus is the lifecycle state of a ScanSession.
type ScanStatus string

const (
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanCancelled ScanStatus = "cancelled"
	ScanFailed    ScanStatus = "failed"
)

// ScanSession is a durable record of one pipeline run.
type ScanSession struct {
	ID             int64
	RootPath       string
	StartDate      time.Time
	EndDate        *time.Time
	Status         ScanStatus
	TotalFiles     int
	ProcessedFiles int
	TotalFaces     int
}

// ClusterStats summarizes one Cluster for the presentation layer.
type ClusterStats struct {
	ClusterID           int64
	PersonID            *int64
	PersonName          *string
	FaceCount           int
	PhotoCount          int
	RepresentativeFaceID int64
}
