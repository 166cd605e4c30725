package catalog

import (
	"database/sql"
	"time"
)

func (s *Store) InsertCluster(c *Cluster) (int64, error) {
	return insertCluster(s.q(), c)
}

func insertCluster(q queryer, c *Cluster) (int64, error) {
	const op = "catalog.InsertCluster"

	if c.CreatedDate.IsZero() {
		c.CreatedDate = time.Now().UTC()
	}
	var centroid any
	if len(c.Centroid) > 0 {
		centroid = encodeEmbedding(c.Centroid)
	}

	res, err := q.Exec(
		`INSERT INTO clusters (centroid, face_count, created_date, person_id) VALUES (?, ?, ?, ?)`,
		centroid, c.FaceCount, c.CreatedDate.UTC().Format(timeLayout), nullableInt64(c.PersonID),
	)
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	c.ID = id
	return id, nil
}

func (s *Store) GetCluster(id int64) (*Cluster, error) {
	const op = "catalog.GetCluster"
	row := s.q().QueryRow(clusterSelect+` WHERE id = ?`, id)
	return scanClusterRow(op, row)
}

func (s *Store) ListClusters() ([]Cluster, error) {
	const op = "catalog.ListClusters"
	rows, err := s.q().Query(clusterSelect + ` ORDER BY id`)
	if err != nil {
		return nil, newErr(op, KindIO, err)
	}
	defer rows.Close()

	var out []Cluster
	for rows.Next() {
		c, err := scanClusterRow(op, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) SetClusterCentroid(id int64, centroid Embedding) error {
	return setClusterCentroid(s.q(), id, centroid)
}

func setClusterCentroid(q queryer, id int64, centroid Embedding) error {
	const op = "catalog.SetClusterCentroid"
	var blob any
	if len(centroid) > 0 {
		blob = encodeEmbedding(centroid)
	}
	faceCount, err := countClusterFaces(q, id)
	if err != nil {
		return err
	}
	if _, err := q.Exec(`UPDATE clusters SET centroid = ?, face_count = ? WHERE id = ?`, blob, faceCount, id); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

func countClusterFaces(q queryer, clusterID int64) (int, error) {
	const op = "catalog.countClusterFaces"
	var n int
	if err := q.QueryRow(`SELECT COUNT(1) FROM faces WHERE cluster_id = ?`, clusterID).Scan(&n); err != nil {
		return 0, newErr(op, KindIO, err)
	}
	return n, nil
}

func (s *Store) SetClusterPerson(id int64, personID *int64) error {
	return setClusterPerson(s.q(), id, personID)
}

func setClusterPerson(q queryer, id int64, personID *int64) error {
	const op = "catalog.SetClusterPerson"
	if _, err := q.Exec(`UPDATE clusters SET person_id = ? WHERE id = ?`, nullableInt64(personID), id); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

// DeleteCluster null-sets every referencing faces.cluster_id before
// removing the Cluster row, inside one transaction.
func (s *Store) DeleteCluster(id int64) error {
	return s.withTx(func(tx *Tx) error {
		return deleteCluster(tx.q(), id)
	})
}

func deleteCluster(q queryer, id int64) error {
	const op = "catalog.DeleteCluster"
	if _, err := q.Exec(`UPDATE faces SET cluster_id = NULL WHERE cluster_id = ?`, id); err != nil {
		return newErr(op, KindIO, err)
	}
	if _, err := q.Exec(`DELETE FROM clusters WHERE id = ?`, id); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

const clusterSelect = `SELECT id, centroid, face_count, created_date, person_id FROM clusters`

func scanClusterRow(op string, r rowScanner) (*Cluster, error) {
	var c Cluster
	var centroidBlob []byte
	var personID sql.NullInt64
	var createdDate string
	if err := r.Scan(&c.ID, &centroidBlob, &c.FaceCount, &createdDate, &personID); err != nil {
		if err == sql.ErrNoRows {
			return nil, newErr(op, KindNotFound, nil)
		}
		return nil, newErr(op, KindIO, err)
	}
	centroid, err := decodeEmbeddingLoose(op, centroidBlob)
	if err != nil {
		return nil, err
	}
	c.Centroid = centroid
	if t, err := time.Parse(timeLayout, createdDate); err == nil {
		c.CreatedDate = t
	}
	if personID.Valid {
		v := personID.Int64
		c.PersonID = &v
	}
	return &c, nil
}
