package catalog

import (
	"database/sql"
	"path/filepath"
	"strings"
	"time"
)

const timeLayout = "2006-01-02T15:04:05Z"

// InsertPhoto inserts p and returns its assigned id. Fails with
// Conflict if file_path already exists.
func (s *Store) InsertPhoto(p *Photo) (int64, error) {
	return insertPhoto(s.q(), p)
}

func insertPhoto(q queryer, p *Photo) (int64, error) {
	const op = "catalog.InsertPhoto"

	if p.FolderPath == "" {
		p.FolderPath = filepath.Dir(p.FilePath)
	}
	if p.FileName == "" {
		p.FileName = filepath.Base(p.FilePath)
	}
	if p.ScanDate.IsZero() {
		p.ScanDate = time.Now().UTC()
	}

	var exifDate, checksum any
	if p.ExifDate != nil {
		exifDate = p.ExifDate.UTC().Format(timeLayout)
	}
	if p.Checksum != nil {
		checksum = *p.Checksum
	}

	res, err := q.Exec(
		`INSERT INTO photos (file_path, file_name, folder_path, width, height, file_size, exif_date, scan_date, checksum)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.FilePath, p.FileName, p.FolderPath, p.Width, p.Height, p.FileSize,
		exifDate, p.ScanDate.UTC().Format(timeLayout), checksum,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, newErr(op, KindConflict, err)
		}
		return 0, newErr(op, KindIO, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	p.ID = id
	return id, nil
}

func (s *Store) GetPhoto(id int64) (*Photo, error) {
	const op = "catalog.GetPhoto"
	row := s.q().QueryRow(
		`SELECT id, file_path, file_name, folder_path, width, height, file_size, exif_date, scan_date, checksum
		 FROM photos WHERE id = ?`, id)
	p, err := scanPhoto(op, row)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) GetPhotoByPath(path string) (*Photo, error) {
	const op = "catalog.GetPhotoByPath"
	row := s.q().QueryRow(
		`SELECT id, file_path, file_name, folder_path, width, height, file_size, exif_date, scan_date, checksum
		 FROM photos WHERE file_path = ?`, path)
	p, err := scanPhoto(op, row)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) ListPhotosForPerson(personID int64) ([]Photo, error) {
	const op = "catalog.ListPhotosForPerson"
	rows, err := s.q().Query(
		`SELECT DISTINCT p.id, p.file_path, p.file_name, p.folder_path, p.width, p.height, p.file_size, p.exif_date, p.scan_date, p.checksum
		 FROM photos p JOIN faces f ON f.photo_id = p.id
		 WHERE f.person_id = ?`, personID)
	if err != nil {
		return nil, newErr(op, KindIO, err)
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		p, err := scanPhotoRow(op, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(op string, row *sql.Row) (*Photo, error) {
	return scanPhotoRow(op, row)
}

func scanPhotoRow(op string, r rowScanner) (*Photo, error) {
	var p Photo
	var exifDate, checksum, scanDate sql.NullString
	if err := r.Scan(&p.ID, &p.FilePath, &p.FileName, &p.FolderPath, &p.Width, &p.Height, &p.FileSize,
		&exifDate, &scanDate, &checksum); err != nil {
		if err == sql.ErrNoRows {
			return nil, newErr(op, KindNotFound, nil)
		}
		return nil, newErr(op, KindIO, err)
	}
	if exifDate.Valid {
		if t, err := time.Parse(timeLayout, exifDate.String); err == nil {
			p.ExifDate = &t
		}
	}
	if scanDate.Valid {
		if t, err := time.Parse(timeLayout, scanDate.String); err == nil {
			p.ScanDate = t
		}
	}
	if checksum.Valid {
		v := checksum.String
		p.Checksum = &v
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
