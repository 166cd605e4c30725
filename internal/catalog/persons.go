package catalog

import (
	"database/sql"
	"time"
)

func (s *Store) InsertPerson(p *Person) (int64, error) {
	const op = "catalog.InsertPerson"
	if p.Name == "" {
		return 0, newErr(op, KindInvalidInput, nil)
	}
	if p.CreatedDate.IsZero() {
		p.CreatedDate = time.Now().UTC()
	}
	var notes any
	if p.Notes != nil {
		notes = *p.Notes
	}
	res, err := s.q().Exec(`INSERT INTO persons (name, created_date, notes) VALUES (?, ?, ?)`,
		p.Name, p.CreatedDate.UTC().Format(timeLayout), notes)
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, newErr(op, KindIO, err)
	}
	p.ID = id
	return id, nil
}

func (s *Store) GetPerson(id int64) (*Person, error) {
	const op = "catalog.GetPerson"
	row := s.q().QueryRow(personSelect+` WHERE id = ?`, id)
	return scanPersonRow(op, row)
}

func (s *Store) ListPersons() ([]Person, error) {
	const op = "catalog.ListPersons"
	rows, err := s.q().Query(personSelect + ` ORDER BY id`)
	if err != nil {
		return nil, newErr(op, KindIO, err)
	}
	defer rows.Close()

	var out []Person
	for rows.Next() {
		p, err := scanPersonRow(op, rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) UpdatePerson(p *Person) error {
	const op = "catalog.UpdatePerson"
	if p.Name == "" {
		return newErr(op, KindInvalidInput, nil)
	}
	var notes any
	if p.Notes != nil {
		notes = *p.Notes
	}
	if _, err := s.q().Exec(`UPDATE persons SET name = ?, notes = ? WHERE id = ?`, p.Name, notes, p.ID); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

// DeletePerson null-sets every referencing faces.person_id and
// clusters.person_id before removing the Person row, inside one
// transaction.
func (s *Store) DeletePerson(id int64) error {
	return s.withTx(func(tx *Tx) error {
		const op = "catalog.DeletePerson"
		q := tx.q()
		if _, err := q.Exec(`UPDATE faces SET person_id = NULL WHERE person_id = ?`, id); err != nil {
			return newErr(op, KindIO, err)
		}
		if _, err := q.Exec(`UPDATE clusters SET person_id = NULL WHERE person_id = ?`, id); err != nil {
			return newErr(op, KindIO, err)
		}
		if _, err := q.Exec(`DELETE FROM persons WHERE id = ?`, id); err != nil {
			return newErr(op, KindIO, err)
		}
		return nil
	})
}

const personSelect = `SELECT id, name, created_date, notes FROM persons`

func scanPersonRow(op string, r rowScanner) (*Person, error) {
	var p Person
	var createdDate string
	var notes sql.NullString
	if err := r.Scan(&p.ID, &p.Name, &createdDate, &notes); err != nil {
		if err == sql.ErrNoRows {
			return nil, newErr(op, KindNotFound, nil)
		}
		return nil, newErr(op, KindIO, err)
	}
	if t, err := time.Parse(timeLayout, createdDate); err == nil {
		p.CreatedDate = t
	}
	if notes.Valid {
		v := notes.String
		p.Notes = &v
	}
	return &p, nil
}
