package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// initialSchema is the SQL schema for initializing a new project database.
const initialSchema = `
-- Tasks table; position is the list order, newest first
CREATE TABLE IF NOT EXISTS tasks (
    id              TEXT PRIMARY KEY,
    position        INTEGER NOT NULL,
    content         TEXT NOT NULL CHECK (content != ''),
    completed       INTEGER NOT NULL DEFAULT 0 CHECK (completed IN (0, 1)),
    estimated_hours REAL NOT NULL DEFAULT 0 CHECK (estimated_hours >= 0),
    deadline        TEXT,
    created_at      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_position ON tasks(position);

-- Dependency edges. dependency_id has no foreign key: a deleted task may
-- still be referenced by its former dependents.
CREATE TABLE IF NOT EXISTS dependencies (
    task_id       TEXT NOT NULL REFERENCES tasks(id) ON DELETE CASCADE,
    dependency_id TEXT NOT NULL,
    position      INTEGER NOT NULL,
    PRIMARY KEY (task_id, dependency_id)
);

-- Index for finding what depends on a task
CREATE INDEX IF NOT EXISTS idx_dependencies_dependency ON dependencies(dependency_id);

-- Audit log table
CREATE TABLE IF NOT EXISTS audit_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    task_id    TEXT NOT NULL,
    action     TEXT NOT NULL,
    field      TEXT,
    old_value  TEXT,
    new_value  TEXT,
    changed_at TEXT NOT NULL,
    changed_by TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_log_task_id ON audit_log(task_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
CREATE INDEX IF NOT EXISTS idx_audit_log_changed_by ON audit_log(changed_by);
`

// SchemaVersion is stored in each database's user_version pragma.
const SchemaVersion = 1

// Manager opens one SQLite database per project under a base directory and
// keeps the connections for reuse.
type Manager struct {
	basePath string
	dbs      map[string]*sql.DB
	mu       sync.RWMutex
}

// NewManager creates basePath if needed and returns a manager for the
// project databases inside it.
func NewManager(basePath string) (*Manager, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return &Manager{
		basePath: basePath,
		dbs:      make(map[string]*sql.DB),
	}, nil
}

// BasePath returns the directory holding project databases.
func (m *Manager) BasePath() string {
	return m.basePath
}

// GetDB returns the project's database, opening and migrating it on first use.
func (m *Manager) GetDB(project string) (*sql.DB, error) {
	m.mu.RLock()
	db, ok := m.dbs[project]
	m.mu.RUnlock()
	if ok {
		return db, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.dbs[project]; ok {
		return db, nil
	}

	db, err := open(filepath.Join(m.basePath, project+".db"))
	if err != nil {
		return nil, fmt.Errorf("project %s: %w", project, err)
	}
	m.dbs[project] = db
	return db, nil
}

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// migrate brings a database up to SchemaVersion. Databases written by a
// newer schema are refused.
func migrate(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	switch {
	case version == SchemaVersion:
		return nil
	case version > SchemaVersion:
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, SchemaVersion)
	}

	if _, err := db.Exec(initialSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// ListProjects returns the sorted names of the projects with a database file.
func (m *Manager) ListProjects() ([]string, error) {
	entries, err := os.ReadDir(m.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := []string{}
	for _, entry := range entries {
		if name, ok := strings.CutSuffix(entry.Name(), ".db"); ok && !entry.IsDir() {
			projects = append(projects, name)
		}
	}
	sort.Strings(projects)
	return projects, nil
}

// Close closes every open database. The manager can be reused afterwards.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for project, db := range m.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", project, err))
		}
	}
	m.dbs = make(map[string]*sql.DB)
	return errors.Join(errs...)
}
