package catalog

import "database/sql"

// InsertFace inserts f, referencing an existing Photo. Fails with
// Corrupt if the embedding is not exactly EmbeddingDim floats.
func (s *Store) InsertFace(f *Face) (int64, error) {
	return insertFace(s.q(), f)
}

func insertFace(q queryer, f *Face) (int64, error) {
	const op = "catalog.InsertFace"

	if len(f.Embedding) != EmbeddingDim {
		return 0, newErr(op, KindCorrupt, nil)
	}

	res, err := q.Exec(
		`INSERT INTO faces (photo_id, bbox_x, bbox_y, bbox_width, bbox_height, embedding, cluster_id, person_id, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.PhotoID, f.BBox.X, f.BBox.Y, f.BBox.Width, f.BBox.Height,
		encodeEmbedding(f.Embedding), nullableInt64(f.ClusterID), nullableInt64(f.PersonID), f.Confidence,
	)
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	f.ID = id
	return id, nil
}

func (s *Store) GetFace(id int64) (*Face, error) {
	const op = "catalog.GetFace"
	row := s.q().QueryRow(faceSelect+` WHERE id = ?`, id)
	return scanFaceRow(op, row)
}

func (s *Store) ListFacesForPhoto(photoID int64) ([]Face, error) {
	return s.listFaces("catalog.ListFacesForPhoto", faceSelect+` WHERE photo_id = ? ORDER BY id`, photoID)
}

func (s *Store) ListFacesForCluster(clusterID int64) ([]Face, error) {
	return s.listFaces("catalog.ListFacesForCluster", faceSelect+` WHERE cluster_id = ? ORDER BY id`, clusterID)
}

func (s *Store) ListFacesForPerson(personID int64) ([]Face, error) {
	return s.listFaces("catalog.ListFacesForPerson", faceSelect+` WHERE person_id = ? ORDER BY id`, personID)
}

func (s *Store) ListAllFacesWithEmbeddings() ([]Face, error) {
	return s.listFaces("catalog.ListAllFacesWithEmbeddings", faceSelect+` ORDER BY id`)
}

func (s *Store) ListUnclusteredFaces() ([]Face, error) {
	return s.listFaces("catalog.ListUnclusteredFaces", faceSelect+` WHERE cluster_id IS NULL ORDER BY id`)
}

func (s *Store) SetFaceCluster(faceID int64, clusterID *int64) error {
	return setFaceCluster(s.q(), faceID, clusterID)
}

func setFaceCluster(q queryer, faceID int64, clusterID *int64) error {
	const op = "catalog.SetFaceCluster"
	if _, err := q.Exec(`UPDATE faces SET cluster_id = ? WHERE id = ?`, nullableInt64(clusterID), faceID); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

func (s *Store) SetFacePerson(faceID int64, personID *int64) error {
	return setFacePerson(s.q(), faceID, personID)
}

func setFacePerson(q queryer, faceID int64, personID *int64) error {
	const op = "catalog.SetFacePerson"
	if _, err := q.Exec(`UPDATE faces SET person_id = ? WHERE id = ?`, nullableInt64(personID), faceID); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

const faceSelect = `SELECT id, photo_id, bbox_x, bbox_y, bbox_width, bbox_height, embedding, cluster_id, person_id, confidence FROM faces`

func (s *Store) listFaces(op, query string, args ...any) ([]Face, error) {
	rows, err := s.q().Query(query, args...)
	if err != nil {
		return nil, newErr(op, KindIO, err)
	}
	defer rows.Close()

	var out []Face
	for rows.Next() {
		f, err := scanFaceRow(op, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func scanFaceRow(op string, r rowScanner) (*Face, error) {
	var f Face
	var clusterID, personID sql.NullInt64
	var embBlob []byte
	if err := r.Scan(&f.ID, &f.PhotoID, &f.BBox.X, &f.BBox.Y, &f.BBox.Width, &f.BBox.Height,
		&embBlob, &clusterID, &personID, &f.Confidence); err != nil {
		if err == sql.ErrNoRows {
			return nil, newErr(op, KindNotFound, nil)
		}
		return nil, newErr(op, KindIO, err)
	}
	emb, err := decodeEmbedding(op, embBlob)
	if err != nil {
		return nil, err
	}
	f.Embedding = emb
	if clusterID.Valid {
		v := clusterID.Int64
		f.ClusterID = &v
	}
	if personID.Valid {
		v := personID.Int64
		f.PersonID = &v
	}
	return &f, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
