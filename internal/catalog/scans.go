package catalog

import (
	"database/sql"
	"time"
)

// InsertScan records the start of a new ScanSession.
func (s *Store) InsertScan(sc *ScanSession) (int64, error) {
	const op = "catalog.InsertScan"
	if sc.StartDate.IsZero() {
		sc.StartDate = time.Now().UTC()
	}
	res, err := s.q().Exec(
		`INSERT INTO scans (root_path, start_date, end_date, status, total_files, processed_files, total_faces)
		 VALUES (?, ?, NULL, ?, ?, ?, ?)`,
		sc.RootPath, sc.StartDate.UTC().Format(timeLayout), string(sc.Status),
		sc.TotalFiles, sc.ProcessedFiles, sc.TotalFaces,
	)
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	sc.ID = id
	return id, nil
}

// UpdateScan persists the mutable fields of an in-progress or finished
// ScanSession.
func (s *Store) UpdateScan(sc *ScanSession) error {
	const op = "catalog.UpdateScan"
	var endDate any
	if sc.EndDate != nil {
		endDate = sc.EndDate.UTC().Format(timeLayout)
	}
	if _, err := s.q().Exec(
		`UPDATE scans SET end_date = ?, status = ?, total_files = ?, processed_files = ?, total_faces = ? WHERE id = ?`,
		endDate, string(sc.Status), sc.TotalFiles, sc.ProcessedFiles, sc.TotalFaces, sc.ID,
	); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

func (s *Store) GetScan(id int64) (*ScanSession, error) {
	const op = "catalog.GetScan"
	row := s.q().QueryRow(scanSelect+` WHERE id = ?`, id)
	return scanScanRow(op, row)
}

func (s *Store) ListScans() ([]ScanSession, error) {
	const op = "catalog.ListScans"
	rows, err := s.q().Query(scanSelect + ` ORDER BY id`)
	if err != nil {
		return nil, newErr(op, KindIO, err)
	}
	defer rows.Close()

	var out []ScanSession
	for rows.Next() {
		sc, err := scanScanRow(op, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

const scanSelect = `SELECT id, root_path, start_date, end_date, status, total_files, processed_files, total_faces FROM scans`

func scanScanRow(op string, r rowScanner) (*ScanSession, error) {
	var sc ScanSession
	var startDate string
	var endDate sql.NullString
	var status string
	if err := r.Scan(&sc.ID, &sc.RootPath, &startDate, &endDate, &status,
		&sc.TotalFiles, &sc.ProcessedFiles, &sc.TotalFaces); err != nil {
		if err == sql.ErrNoRows {
			return nil, newErr(op, KindNotFound, nil)
		}
		return nil, newErr(op, KindIO, err)
	}
	if t, err := time.Parse(timeLayout, startDate); err == nil {
		sc.StartDate = t
	}
	if endDate.Valid {
		if t, err := time.Parse(timeLayout, endDate.String); err == nil {
			sc.EndDate = &t
		}
	}
	sc.Status = ScanStatus(status)
	return &sc, nil
}
