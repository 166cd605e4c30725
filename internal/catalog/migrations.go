package catalog

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// runMigrations applies every embedded migration not yet recorded in
// schema_migrations, in filename-sorted order, each inside its own
// transaction.
func runMigrations(db *sql.DB) error {
	const op = "catalog.runMigrations"

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`); err != nil {
		return newErr(op, KindIO, err)
	}

	entries, err := fs.ReadDir(migrationFiles, "migrations")
	if err != nil {
		return newErr(op, KindIO, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var count int
		if err := db.QueryRow(`SELECT COUNT(1) FROM schema_migrations WHERE name = ?`, name).Scan(&count); err != nil {
			return newErr(op, KindIO, err)
		}
		if count > 0 {
			continue
		}

		body, err := fs.ReadFile(migrationFiles, "migrations/"+name)
		if err != nil {
			return newErr(op, KindIO, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return newErr(op, KindIO, err)
		}
		if _, err := tx.Exec(string(body)); err != nil {
			tx.Rollback()
			return newErr(op, KindIO, fmt.Errorf("applying %s: %w", name, err))
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(name) VALUES (?)`, name); err != nil {
			tx.Rollback()
			return newErr(op, KindIO, err)
		}
		if err := tx.Commit(); err != nil {
			return newErr(op, KindIO, err)
		}
	}

	return ensureSchemaCompatibility(db)
}

// ensureSchemaCompatibility guards forward-compatible schema evolution:
// columns are added when missing, never removed, so older catalogs
// opened by a newer binary keep working. There is nothing to add yet
// beyond the 0001 baseline; this is the hook future migrations use
// instead of editing 0001 in place.
func ensureSchemaCompatibility(db *sql.DB) error {
	const op = "catalog.ensureSchemaCompatibility"

	has, err := columnExists(db, "faces", "confidence")
	if err != nil {
		return newErr(op, KindIO, err)
	}
	if !has {
		if _, err := db.Exec(`ALTER TABLE faces ADD COLUMN confidence REAL`); err != nil {
			return newErr(op, KindIO, err)
		}
	}
	return nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dflt sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}
