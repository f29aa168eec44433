package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a requested run does not exist.
var ErrNotFound = errors.New("not found")

// pragma is a connection setting applied on Open.
type pragma struct {
	name  string
	value string
	// want is the value PRAGMA name reports once applied.
	want string
}

var pragmas = []pragma{
	{name: "journal_mode", value: "WAL", want: "wal"},
	{name: "synchronous", value: "NORMAL", want: "1"},
	{name: "busy_timeout", value: "5000", want: "5000"},
	{name: "foreign_keys", value: "ON", want: "1"},
}

// migration upgrades a result log created by an older release.
type migration struct {
	version int
	stmt    string
}

// migrations run in order; user_version records the last one applied.
var migrations = []migration{
	{version: 1, stmt: `CREATE INDEX IF NOT EXISTS idx_results_solver ON results(run_id, solver)`},
}

// currentSchemaVersion is the user_version of a fully migrated log.
var currentSchemaVersion = migrations[len(migrations)-1].version

// Store is the SQLite result log shared by batch runs.
type Store struct {
	db *sql.DB
}

// Open opens the result log at path, creating the file and tables when
// missing and upgrading an older log in place.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open result log: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open result log %s: %w", path, err)
	}

	// A single connection serialises writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare result log %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the connection. Closing a zero Store is a no-op.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func prepare(db *sql.DB) error {
	for _, p := range pragmas {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA %s = %s", p.name, p.value)); err != nil {
			return fmt.Errorf("pragma %s: %w", p.name, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return migrate(db)
}

func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}
	for _, m := range migrations {
		if m.version <= version {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", m.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

// schemaVersion reports the applied migration level.
func (s *Store) schemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	return version, err
}
