package catalog

import "database/sql"

// Tx is an open write transaction against the catalog. Nesting is
// disallowed: a second Begin while one Tx is open fails with
// InvalidState.
type Tx struct {
	store *sql.DB
	tx    *sql.Tx
	owner *Store
	done  bool
}

// Begin opens a new write transaction. Only one may be open at a time
// per Store.
func (s *Store) Begin() (*Tx, error) {
	const op = "catalog.Begin"

	s.mu.Lock()
	if s.txOpen {
		s.mu.Unlock()
		return nil, newErr(op, KindInvalidState, nil)
	}
	s.txOpen = true
	s.mu.Unlock()

	sqlTx, err := s.db.Begin()
	if err != nil {
		s.mu.Lock()
		s.txOpen = false
		s.mu.Unlock()
		return nil, newErr(op, KindIO, err)
	}

	return &Tx{store: s.db, tx: sqlTx, owner: s}, nil
}

// Commit commits the transaction.
func (t *Tx) Commit() error {
	const op = "catalog.Tx.Commit"
	if t.done {
		return newErr(op, KindInvalidState, nil)
	}
	t.done = true
	defer t.release()

	if err := t.tx.Commit(); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

// Rollback aborts the transaction, restoring the pre-Begin state.
func (t *Tx) Rollback() error {
	const op = "catalog.Tx.Rollback"
	if t.done {
		return nil
	}
	t.done = true
	defer t.release()

	if err := t.tx.Rollback(); err != nil {
		return newErr(op, KindIO, err)
	}
	return nil
}

func (t *Tx) release() {
	t.owner.mu.Lock()
	t.owner.txOpen = false
	t.owner.mu.Unlock()
}

// withTx runs fn inside a fresh transaction, committing on success and
// rolling back if fn returns an error.
func (s *Store) withTx(fn func(*Tx) error) error {
	tx, err := s.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}
