package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
	"github.com/todopath/todopath/internal/snapshot"
)

// Option configures a PlanService.
type Option func(*PlanService)

// WithLogger sets the logger used for storage and audit warnings.
func WithLogger(logger *log.Logger) Option {
	return func(s *PlanService) {
		s.logger = logger
	}
}

// WithClock sets the time source for scheduling and audit stamps.
func WithClock(now func() time.Time) Option {
	return func(s *PlanService) {
		s.now = now
	}
}

// WithIDGenerator sets the task id source.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *PlanService) {
		s.engineOpts = append(s.engineOpts, schedule.WithIDGenerator(gen))
	}
}

// PlanService owns one project's schedule engine. It serializes commands,
// saves the task set after every accepted mutation, and records the change
// in the audit log. Save and audit failures are logged, never returned.
type PlanService struct {
	mu         sync.Mutex
	project    string
	engine     *schedule.Engine
	storage    Storage
	audit      AuditLog
	logger     *log.Logger
	now        func() time.Time
	engineOpts []schedule.Option
}

// NewPlanService loads the project's tasks from storage and builds its
// engine. Stored data containing a dependency cycle is accepted with a
// warning.
func NewPlanService(ctx context.Context, project string, storage Storage, audit AuditLog, opts ...Option) (*PlanService, error) {
	s := &PlanService{
		project: project,
		storage: storage,
		audit:   audit,
		logger:  log.New(io.Discard, "", 0),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = schedule.New(append([]schedule.Option{schedule.WithClock(s.now)}, s.engineOpts...)...)

	tasks, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", project, err)
	}
	s.engine.Restore(tasks)
	if cycle := s.engine.DetectCycle(); cycle != nil {
		s.logger.Printf("project %s: stored dependencies contain a cycle %v", project, cycle)
	}
	return s, nil
}

// Project returns the project name.
func (s *PlanService) Project() string {
	return s.project
}

// Apply runs a command on behalf of agentID.
func (s *PlanService) Apply(ctx context.Context, cmd schedule.Command, agentID string) (*schedule.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := indexSnapshots(s.engine.Snapshot())
	res, err := s.engine.Apply(cmd)
	if err != nil {
		return nil, err
	}

	s.persist(ctx)
	s.record(ctx, changeEntries(cmd, before, res, agentID, s.now()))
	return res, nil
}

// persist saves the task set. The write outlives the caller's cancellation:
// once a mutation is applied in memory it must reach storage too.
func (s *PlanService) persist(ctx context.Context) {
	if err := s.storage.Save(context.WithoutCancel(ctx), s.engine.Snapshot()); err != nil {
		s.logger.Printf("project %s: failed to save tasks: %v", s.project, err)
	}
}

func (s *PlanService) record(ctx context.Context, entries []domain.AuditEntry) {
	if err := s.audit.Log(context.WithoutCancel(ctx), entries...); err != nil {
		s.logger.Printf("project %s: failed to write audit log: %v", s.project, err)
	}
}

// ListTasks returns tasks matching filter and search.
func (s *PlanService) ListTasks(filter schedule.Filter, search string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.ListTasks(filter, search)
}

// Task returns one task.
func (s *PlanService) Task(id string) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Task(id)
}

// Dependencies returns the edges out of a task.
func (s *PlanService) Dependencies(id string) ([]domain.Dependency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Dependencies(id)
}

// Schedule returns every task's derived schedule.
func (s *PlanService) Schedule() map[string]domain.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Schedule()
}

// Forest returns the path-to-completion forest.
func (s *PlanService) Forest() []*schedule.PathNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.DependencyForest()
}

// Export returns the plan as a snapshot document.
func (s *PlanService) Export() snapshot.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot.New(s.project, s.engine.Snapshot(), s.now())
}

// Import replaces the plan with doc's tasks. Documents with invalid tasks or
// a dependency cycle are rejected and nothing changes.
func (s *PlanService) Import(ctx context.Context, doc snapshot.Document, agentID string) (*schedule.Result, error) {
	if err := schedule.ValidateSnapshots(doc.Tasks); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.engine.Restore(doc.Tasks)
	s.persist(ctx)

	at := s.now()
	entries := make([]domain.AuditEntry, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		entries = append(entries, domain.NewAuditEntry(t.ID, domain.ActionImport, agentID, at))
	}
	s.record(ctx, entries)

	return &schedule.Result{Tasks: s.engine.ListTasks(schedule.FilterAll, "")}, nil
}

func indexSnapshots(snaps []domain.TaskSnapshot) map[string]domain.TaskSnapshot {
	out := make(map[string]domain.TaskSnapshot, len(snaps))
	for _, s := range snaps {
		out[s.ID] = s
	}
	return out
}
