package service

import (
	"context"
	"sync"

	"github.com/todopath/todopath/internal/store"
	"github.com/todopath/todopath/internal/store/sqlite"
)

// Opener builds the PlanService for a project.
type Opener func(ctx context.Context, project string) (*PlanService, error)

// Registry hands out one PlanService per project, opening each on first use.
type Registry struct {
	mu    sync.Mutex
	open  Opener
	plans map[string]*PlanService
}

// NewRegistry creates a registry that opens projects with open.
func NewRegistry(open Opener) *Registry {
	return &Registry{
		open:  open,
		plans: make(map[string]*PlanService),
	}
}

// Get returns the project's PlanService, opening it if necessary.
func (r *Registry) Get(ctx context.Context, project string) (*PlanService, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.plans[project]; ok {
		return p, nil
	}
	p, err := r.open(ctx, project)
	if err != nil {
		return nil, err
	}
	r.plans[project] = p
	return p, nil
}

// SQLiteOpener opens projects backed by the manager's per-project databases.
func SQLiteOpener(manager *store.Manager, opts ...Option) Opener {
	return func(ctx context.Context, project string) (*PlanService, error) {
		db, err := manager.GetDB(project)
		if err != nil {
			return nil, err
		}
		return NewPlanService(ctx, project,
			sqlite.NewTaskRepository(db),
			sqlite.NewAuditRepository(db),
			opts...,
		)
	}
}

// MemoryOpener opens projects with fresh in-memory storage and audit log.
func MemoryOpener(opts ...Option) Opener {
	return func(ctx context.Context, project string) (*PlanService, error) {
		return NewPlanService(ctx, project, NewMemoryStorage(), NewMemoryAuditLog(), opts...)
	}
}
