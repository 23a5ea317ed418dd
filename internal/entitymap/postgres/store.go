// Package postgres provides a Postgres-backed entity map store for
// deployments where several crawl and extract runs share one map.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leadforge/linkedin-leads-crawler/internal/entitymap"
	"github.com/leadforge/linkedin-leads-crawler/internal/scrape"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store writes and reads entity rows in Postgres.
type Store struct {
	pool  pgxPool
	table string
}

// New creates a Postgres-backed Store using the provided config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "entities"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &Store{pool: pool, table: table}
	if err := s.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewWithPool constructs a store from an existing pool (primarily for
// testing).
func NewWithPool(pool pgxPool, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "entities"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *Store) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	pos  BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	url  TEXT NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Save replaces the stored map with m in append order.
func (s *Store) Save(ctx context.Context, m *entitymap.Map) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s`, s.table)); err != nil {
		return fmt.Errorf("clear %s: %w", s.table, err)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (name, url) VALUES ($1, $2)`, s.table)
	for _, e := range m.Entries() {
		if _, err := s.pool.Exec(ctx, insert, e.Name, e.ProfileURL); err != nil {
			return fmt.Errorf("insert entity %q: %w", e.Name, err)
		}
	}
	return nil
}

// Load restores the full map in stored order.
func (s *Store) Load(ctx context.Context) (*entitymap.Map, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`SELECT name, url FROM %s ORDER BY pos`, s.table))
	if err != nil {
		return nil, scrape.NewSetupError("entity map", fmt.Errorf("query %s: %w", s.table, err))
	}
	defer rows.Close()

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
