// Package store persists tagged criteria and the import events that produced
// them. It speaks database/sql to Postgres (pgx) or SQLite (modernc).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = sql.ErrNoRows

// Store wraps a database handle and the dialect it speaks.
type Store struct {
	DB     *sql.DB
	driver string
}

// Open connects to the database. driver accepts "pgx"/"postgres" or
// "sqlite"/"sqlite3".
func Open(driver, dsn string) (*Store, error) {
	d, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(d, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if d == DriverSQLite {
		// SQLite allows one writer; serializing through one connection avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	return &Store{DB: db, driver: d}, nil
}

// New wraps an existing handle.
func New(db *sql.DB, driver string) (*Store, error) {
	d, err := normalizeDriver(driver)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db, driver: d}, nil
}

func normalizeDriver(driver string) (string, error) {
	switch strings.ToLower(driver) {
	case "pgx", "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver: %q", driver)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.DB.PingContext(ctx))
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.DB.Close()
}

var schema = []string{
	`create table if not exists criteria_import_events (
  id text primary key,
  study_id text not null,
  source text not null,
  content_hash text not null,
  status text not null,
  line_count integer not null default 0,
  error_message text not null default '',
  started_at timestamp not null,
  finished_at timestamp
)`,
	`create index if not exists idx_import_events_study_hash
  on criteria_import_events (study_id, content_hash)`,
	`create table if not exists eligibility_criteria (
  study_id text not null,
  section text not null,
  section_order integer not null,
  sequence_number integer not null,
  classification integer not null,
  band text not null,
  leader_style text not null,
  depth integer not null,
  depth_local_sequence integer not null,
  path text not null,
  qualified_path text not null,
  criterion_text text not null,
  import_event_id text not null,
  created_at timestamp not null,
  updated_at timestamp not null,
  primary key (study_id, section, sequence_number)
)`,
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return classify("migrate", err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(q string) string {
	if s.driver != DriverPostgres {
		return q
	}
	var sb strings.Builder
	sb.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
