package catalog

// The methods below mirror Store's repository methods but run against
// an already-open Tx, so multi-step Clusterer operations (merge, split,
// assign/unassign person, batch persistence) can compose several
// catalog writes inside one transaction.

func (t *Tx) InsertPhoto(p *Photo) (int64, error) { return insertPhoto(t.q(), p) }

func (t *Tx) GetPhotoByPath(path string) (*Photo, error) {
	row := t.q().QueryRow(
		`SELECT id, file_path, file_name, folder_path, width, height, file_size, exif_date, scan_date, checksum
		 FROM photos WHERE file_path = ?`, path)
	return scanPhotoRow("catalog.Tx.GetPhotoByPath", row)
}

func (t *Tx) InsertFace(f *Face) (int64, error) { return insertFace(t.q(), f) }

func (t *Tx) GetFace(id int64) (*Face, error) {
	row := t.q().QueryRow(faceSelect+` WHERE id = ?`, id)
	return scanFaceRow("catalog.Tx.GetFace", row)
}

func (t *Tx) ListFacesForCluster(clusterID int64) ([]Face, error) {
	return listFacesTx(t, "catalog.Tx.ListFacesForCluster", faceSelect+` WHERE cluster_id = ? ORDER BY id`, clusterID)
}

func (t *Tx) ListUnclusteredFaces() ([]Face, error) {
	return listFacesTx(t, "catalog.Tx.ListUnclusteredFaces", faceSelect+` WHERE cluster_id IS NULL ORDER BY id`)
}

func (t *Tx) ListAllFacesWithEmbeddings() ([]Face, error) {
	return listFacesTx(t, "catalog.Tx.ListAllFacesWithEmbeddings", faceSelect+` ORDER BY id`)
}

func listFacesTx(t *Tx, op, query string, args ...any) ([]Face, error) {
	rows, err := t.q().Query(query, args...)
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

func (t *Tx) SetFaceCluster(faceID int64, clusterID *int64) error {
	return setFaceCluster(t.q(), faceID, clusterID)
}

func (t *Tx) SetFacePerson(faceID int64, personID *int64) error {
	return setFacePerson(t.q(), faceID, personID)
}

func (t *Tx) InsertCluster(c *Cluster) (int64, error) { return insertCluster(t.q(), c) }

func (t *Tx) GetCluster(id int64) (*Cluster, error) {
	row := t.q().QueryRow(clusterSelect+` WHERE id = ?`, id)
	return scanClusterRow("catalog.Tx.GetCluster", row)
}

func (t *Tx) ListClusters() ([]Cluster, error) {
	rows, err := t.q().Query(clusterSelect + ` ORDER BY id`)
	if err != nil {
		return nil, newErr("catalog.Tx.ListClusters", KindIO, err)
	}
	defer rows.Close()

	var out []Cluster
	for rows.Next() {
		c, err := scanClusterRow("catalog.Tx.ListClusters", rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (t *Tx) SetClusterCentroid(id int64, centroid Embedding) error {
	return setClusterCentroid(t.q(), id, centroid)
}

func (t *Tx) SetClusterPerson(id int64, personID *int64) error {
	return setClusterPerson(t.q(), id, personID)
}

func (t *Tx) DeleteCluster(id int64) error { return deleteCluster(t.q(), id) }

func (t *Tx) CountClusterFaces(id int64) (int, error) { return countClusterFaces(t.q(), id) }
