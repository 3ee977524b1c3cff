package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestManager_GetDBCreatesAndCaches(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(filepath.Join(dir, "projects"))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Close()

	db1, err := m.GetDB("alpha")
	if err != nil {
		t.Fatalf("GetDB() error = %v", err)
	}
	db2, err := m.GetDB("alpha")
	if err != nil {
		t.Fatalf("GetDB() error = %v", err)
	}
	if db1 != db2 {
		t.Error("GetDB() should return the cached connection")
	}

	if _, err := os.Stat(filepath.Join(m.BasePath(), "alpha.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}

	var n int
	if err := db1.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		t.Errorf("tasks table missing: %v", err)
	}
}

func TestManager_ListProjects(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Close()

	for _, p := range []string{"zeta", "alpha"} {
		if _, err := m.GetDB(p); err != nil {
			t.Fatalf("GetDB(%s) error = %v", p, err)
		}
	}
	os.WriteFile(filepath.Join(m.BasePath(), "notes.txt"), []byte("x"), 0644)

	projects, err := m.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if want := []string{"alpha", "zeta"}; !reflect.DeepEqual(projects, want) {
		t.Errorf("ListProjects() = %v, want %v", projects, want)
	}
}

func TestManager_ListProjectsEmpty(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	projects, err := m.ListProjects()
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if projects == nil || len(projects) != 0 {
		t.Errorf("ListProjects() = %v, want empty slice", projects)
	}
}

func TestManager_RecordsSchemaVersion(t *testing.T) {
	m, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	defer m.Close()

	db, err := m.GetDB("alpha")
	if err != nil {
		t.Fatalf("GetDB() error = %v", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != SchemaVersion {
		t.Errorf("user_version = %d, want %d", version, SchemaVersion)
	}
}

func TestManager_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	db, err := m.GetDB("alpha")
	if err != nil {
		t.Fatalf("GetDB() error = %v", err)
	}
	if _, err := db.Exec(`INSERT INTO tasks (id, position, content, created_at) VALUES ('tp-1', 0, 'x', '2024-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	db, err = m.GetDB("alpha")
	if err != nil {
		t.Fatalf("GetDB() after Close error = %v", err)
	}
	defer m.Close()

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM tasks").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("tasks after reopen = %d, want 1", n)
	}
}

func TestManager_RefusesNewerSchema(t *testing.T) {
	dir := t.TempDir()
	m, err := NewManager(dir)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	db, err := m.GetDB("alpha")
	if err != nil {
		t.Fatalf("GetDB() error = %v", err)
	}
	if _, err := db.Exec("PRAGMA user_version = 99"); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	m.Close()

	if _, err := m.GetDB("alpha"); err == nil {
		t.Error("GetDB() should refuse a database with a newer schema")
	}
}
