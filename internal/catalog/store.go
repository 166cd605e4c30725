package catalog

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"sync"

	_ "modernc.org/sqlite"
)

var logger = log.New(os.Stderr, "[catalog] ", log.LstdFlags)

// Store is the single-writer, multiple-reader persistent catalog. It
// wraps a *sql.DB opened against the embedded SQLite engine and
// enforces that at most one write transaction is open at a time.
type Store struct {
	db *sql.DB

	mu     sync.Mutex
	txOpen bool
}

// Open opens (creating if necessary) the catalog at path and applies
// any pending migrations. Use ":memory:" for an ephemeral in-process
// catalog, primarily for tests.
func Open(path string) (*Store, error) {
	const op = "catalog.Open"

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, newErr(op, KindIO, err)
	}
	db.SetMaxOpenConns(1) // sqlite: single physical writer regardless of Go-level pooling

	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, newErr(op, KindIO, err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		db.Close()
		return nil, newErr(op, KindIO, err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, newErr(op, KindIO, err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for packages that need direct access
// (migrations, diagnostics); application code should prefer the typed
// accessors below.
func (s *Store) DB() *sql.DB { return s.db }

var (
	globalMu    sync.RWMutex
	globalStore *Store
)

// SetGlobalStore installs store as the process-wide catalog accessed via
// GetGlobalStore, mirroring the teacher's single-pool-singleton idiom.
func SetGlobalStore(store *Store) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalStore = store
}

// GetGlobalStore returns the process-wide catalog, or nil if none has
// been installed.
func GetGlobalStore() *Store {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalStore
}

// IsAvailable reports whether a global catalog has been installed.
func IsAvailable() bool {
	return GetGlobalStore() != nil
}

// Initialize opens the catalog at path, installs it as the global
// store, and returns it — a one-call convenience constructor for code
// that reads the catalog through GetGlobalStore.
func Initialize(path string) (*Store, error) {
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	SetGlobalStore(store)
	return store, nil
}
