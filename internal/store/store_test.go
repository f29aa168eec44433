package store

import (
	"os"
	"path/filepath"
	"testing"
)

// createTestStore opens a store in a temp directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 3; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		s.Close()
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer s.Close()

	for _, table := range []string{"runs", "problems", "results"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_InvalidPath(t *testing.T) {
	_, err := Open("/nonexistent/dir/test.db")
	if err == nil {
		t.Error("expected error for invalid path, got nil")
	}
}

func TestClose_NilDB(t *testing.T) {
	s := &Store{db: nil}
	if err := s.Close(); err != nil {
		t.Errorf("Close() on nil db should not error: %v", err)
	}
}

func TestPragmas(t *testing.T) {
	s := createTestStore(t)

	for _, p := range pragmas {
		t.Run(p.name, func(t *testing.T) {
			var got string
			if err := s.db.QueryRow("PRAGMA " + p.name).Scan(&got); err != nil {
				t.Fatalf("query %s: %v", p.name, err)
			}
			if got != p.want {
				t.Errorf("%s = %q, expected %q", p.name, got, p.want)
			}
		})
	}
}

func TestSchema_UserVersion(t *testing.T) {
	s := createTestStore(t)

	version, err := s.schemaVersion()
	if err != nil {
		t.Fatalf("schemaVersion() failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d, expected %d", version, currentSchemaVersion)
	}
}

func TestOpen_UpgradesOlderLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	// Roll the log back to a release without the solver index.
	for _, stmt := range []string{"DROP INDEX idx_results_solver", "PRAGMA user_version = 0"} {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()

	version, err := s.schemaVersion()
	if err != nil {
		t.Fatalf("schemaVersion() failed: %v", err)
	}
	if version != currentSchemaVersion {
		t.Errorf("user_version = %d after upgrade, expected %d", version, currentSchemaVersion)
	}
	var name string
	if err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='index' AND name='idx_results_solver'").Scan(&name); err != nil {
		t.Errorf("solver index missing after upgrade: %v", err)
	}
}

func TestSchema_Indexes(t *testing.T) {
	s := createTestStore(t)

	for _, index := range []string{"idx_results_run", "idx_results_solver"} {
		var name string
		err := s.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
			index,
		).Scan(&name)
		if err != nil {
			t.Errorf("index %q not found: %v", index, err)
		}
	}
}
