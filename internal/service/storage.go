package service

import (
	"context"
	"sort"
	"sync"

	"github.com/todopath/todopath/internal/domain"
)

// Storage loads and saves a plan's task set.
type Storage interface {
	Load(ctx context.Context) ([]domain.TaskSnapshot, error)
	Save(ctx context.Context, tasks []domain.TaskSnapshot) error
}

// AuditLog records and queries plan changes.
type AuditLog interface {
	Log(ctx context.Context, entries ...domain.AuditEntry) error
	ListByTaskID(ctx context.Context, taskID string) ([]*domain.AuditEntry, error)
	Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, int, error)
}

// MemoryStorage keeps snapshots in memory.
type MemoryStorage struct {
	mu    sync.Mutex
	tasks []domain.TaskSnapshot
	// SaveErr, when set, is returned by every Save.
	SaveErr error
	saves   int
}

// NewMemoryStorage creates a storage preloaded with tasks.
func NewMemoryStorage(tasks ...domain.TaskSnapshot) *MemoryStorage {
	return &MemoryStorage{tasks: tasks}
}

// Load returns the stored snapshots.
func (m *MemoryStorage) Load(ctx context.Context) ([]domain.TaskSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.TaskSnapshot(nil), m.tasks...), nil
}

// Save replaces the stored snapshots.
func (m *MemoryStorage) Save(ctx context.Context, tasks []domain.TaskSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.tasks = append([]domain.TaskSnapshot(nil), tasks...)
	return nil
}

// Saves returns the number of Save calls, failed ones included.
func (m *MemoryStorage) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// MemoryAuditLog keeps audit entries in memory.
type MemoryAuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
}

// NewMemoryAuditLog creates an empty audit log.
func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

// Log appends entries, assigning sequential ids.
func (m *MemoryAuditLog) Log(ctx context.Context, entries ...domain.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		e.ID = int64(len(m.entries) + 1)
		m.entries = append(m.entries, e)
	}
	return nil
}

// ListByTaskID returns a task's entries, newest first.
func (m *MemoryAuditLog) ListByTaskID(ctx context.Context, taskID string) ([]*domain.AuditEntry, error) {
	entries, _, err := m.Query(ctx, domain.AuditFilter{TaskID: &taskID})
	return entries, err
}

// Query returns matching entries newest first. A zero PerPage returns all.
func (m *MemoryAuditLog) Query(ctx context.Context, f domain.AuditFilter) ([]*domain.AuditEntry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	matched := []*domain.AuditEntry{}
	for i := range m.entries {
		e := m.entries[i]
		switch {
		case f.TaskID != nil && e.TaskID != *f.TaskID,
			f.Action != nil && e.Action != *f.Action,
			f.AgentID != nil && e.ChangedBy != *f.AgentID,
			f.Since != nil && e.ChangedAt.Before(*f.Since),
			f.Until != nil && e.ChangedAt.After(*f.Until):
			continue
		}
		matched = append(matched, &e)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := len(matched)
	if f.PerPage <= 0 {
		return matched, total, nil
	}
	start := f.Offset()
	if start > total {
		start = total
	}
	end := start + f.PerPage
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}
