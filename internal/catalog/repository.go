package catalog

import "database/sql"

// queryer is satisfied by both *sql.DB and *sql.Tx, letting every
// repository method run either against the store directly or inside an
// explicit Tx.
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
	Exec(query string, args ...any) (sql.Result, error)
}

func (s *Store) q() queryer { return s.db }
func (t *Tx) q() queryer    { return t.tx }

// PhotoReader is the read half of the Photo contract.
type PhotoReader interface {
	GetPhoto(id int64) (*Photo, error)
	GetPhotoByPath(path string) (*Photo, error)
	ListPhotosForPerson(personID int64) ([]Photo, error)
}

// PhotoWriter is the full Photo contract.
type PhotoWriter interface {
	PhotoReader
	InsertPhoto(p *Photo) (int64, error)
}

// FaceReader is the read half of the Face contract.
type FaceReader interface {
	GetFace(id int64) (*Face, error)
	ListFacesForPhoto(photoID int64) ([]Face, error)
	ListFacesForCluster(clusterID int64) ([]Face, error)
	ListFacesForPerson(personID int64) ([]Face, error)
	ListAllFacesWithEmbeddings() ([]Face, error)
	ListUnclusteredFaces() ([]Face, error)
}

// FaceWriter is the full Face contract.
type FaceWriter interface {
	FaceReader
	InsertFace(f *Face) (int64, error)
	SetFaceCluster(faceID int64, clusterID *int64) error
	SetFacePerson(faceID int64, personID *int64) error
}

// ClusterReader is the read half of the Cluster contract.
type ClusterReader interface {
	GetCluster(id int64) (*Cluster, error)
	ListClusters() ([]Cluster, error)
}

// ClusterWriter is the full Cluster contract.
type ClusterWriter interface {
	ClusterReader
	InsertCluster(c *Cluster) (int64, error)
	SetClusterCentroid(id int64, centroid Embedding) error
	SetClusterPerson(id int64, personID *int64) error
	DeleteCluster(id int64) error
}

// PersonReader is the read half of the Person contract.
type PersonReader interface {
	GetPerson(id int64) (*Person, error)
	ListPersons() ([]Person, error)
}

// PersonWriter is the full Person contract.
type PersonWriter interface {
	PersonReader
	InsertPerson(p *Person) (int64, error)
	UpdatePerson(p *Person) error
	DeletePerson(id int64) error
}

var (
	_ PhotoWriter   = (*Store)(nil)
	_ FaceWriter    = (*Store)(nil)
	_ ClusterWriter = (*Store)(nil)
	_ PersonWriter  = (*Store)(nil)
)
