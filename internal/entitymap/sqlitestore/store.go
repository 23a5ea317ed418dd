// Package sqlitestore persists the entity map in a local SQLite database.
// At directory scale (hundreds of thousands of entries) a single JSON file
// becomes awkward to rewrite incrementally; SQLite keeps saves cheap and
// point lookups fast without any external service.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

const schema = `
CREATE TABLE IF NOT EXISTS entities (
	pos  INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	url  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS entities_name ON entities(name);
`

// Store is a SQLite-backed entity map store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at path and ensures the schema
// exists.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	// modernc.org/sqlite uses mode=rwc to allow creation.
	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite supports a single writer; more connections only help readers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close sqlite db: %w", err)
	}
	return nil
}

// Save replaces the stored map with m, preserving append order via the
// autoincrement position column.
func (s *Store) Save(ctx context.Context, m *entitymap.Map) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `DELETE FROM entities`); err != nil {
		return fmt.Errorf("clear entities: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entities (name, url) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close() //nolint:errcheck

	for _, e := range m.Entries() {
		if _, err := stmt.ExecContext(ctx, e.Name, e.ProfileURL); err != nil {
			return fmt.Errorf("insert entity %q: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// Load restores the full map in stored order.
func (s *Store) Load(ctx context.Context) (*entitymap.Map, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, url FROM entities ORDER BY pos`)
	if err != nil {
		return nil, scrape.NewSetupError("entity map", fmt.Errorf("query entities: %w", err))
	}
	defer rows.Close() //nolint:errcheck

	m := entitymap.New()
	for rows.Next() {
		var ref scrape.EntityRef
		if err := rows.Scan(&ref.Name, &ref.ProfileURL); err != nil {
			return nil, scrape.NewSetupError("entity map", fmt.Errorf("scan entity: %w", err))
		}
		m.Append(ref)
	}
	if err := rows.Err(); err != nil {
		return nil, scrape.NewSetupError("entity map", fmt.Errorf("iterate entities: %w", err))
	}
	return m, nil
}

// Lookup resolves one name directly in SQL, last-write-wins, without
// loading the whole map.
func (s *Store) Lookup(ctx context.Context, name string) (string, bool, error) {
	var url string
	err := s.db.QueryRowContext(ctx,
		`SELECT url FROM entities WHERE name = ? ORDER BY pos DESC LIMIT 1`, name,
	).Scan(&url)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup %q: %w", name, err)
	}
	return url, true, nil
}
