package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
	"github.com/todopath/todopath/internal/snapshot"
	"github.com/todopath/todopath/internal/store"
)

var t0 = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func sequentialIDs() func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("t%d", n), nil
	}
}

func testOptions(logger *log.Logger) []Option {
	return []Option{
		WithClock(func() time.Time { return t0 }),
		WithIDGenerator(sequentialIDs()),
		WithLogger(logger),
	}
}

func newTestPlan(t *testing.T, storage Storage) (*PlanService, *MemoryAuditLog, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	audit := NewMemoryAuditLog()
	p, err := NewPlanService(context.Background(), "demo", storage, audit, testOptions(log.New(&logs, "", 0))...)
	require.NoError(t, err)
	return p, audit, &logs
}

func mustApply(t *testing.T, p *PlanService, cmd schedule.Command) *schedule.Result {
	t.Helper()
	res, err := p.Apply(context.Background(), cmd, "alice")
	require.NoError(t, err)
	return res
}

func actions(entries []*domain.AuditEntry) []domain.AuditAction {
	out := make([]domain.AuditAction, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func TestPlanService_ApplySavesAndAudits(t *testing.T) {
	storage := NewMemoryStorage()
	p, audit, _ := newTestPlan(t, storage)

	res := mustApply(t, p, schedule.AddTask{Content: "write"})

	assert.Equal(t, "t1", res.TaskID)
	saved, err := storage.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "write", saved[0].Content)

	entries, err := audit.ListByTaskID(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.ActionCreate, entries[0].Action)
	assert.Equal(t, "alice", entries[0].ChangedBy)
	assert.Equal(t, t0, entries[0].ChangedAt)
}

func TestPlanService_RejectedCommandDoesNotSave(t *testing.T) {
	storage := NewMemoryStorage()
	p, audit, _ := newTestPlan(t, storage)

	_, err := p.Apply(context.Background(), schedule.ToggleCompletion{ID: "missing"}, "alice")

	assert.True(t, domain.IsCode(err, domain.ErrCodeTaskNotFound))
	assert.Zero(t, storage.Saves())
	_, total, err := audit.Query(context.Background(), domain.AuditFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestPlanService_SaveFailureIsLoggedNotReturned(t *testing.T) {
	storage := NewMemoryStorage()
	storage.SaveErr = errors.New("disk full")
	p, _, logs := newTestPlan(t, storage)

	res, err := p.Apply(context.Background(), schedule.AddTask{Content: "write"}, "alice")

	require.NoError(t, err)
	assert.Len(t, res.Tasks, 1)
	assert.Contains(t, logs.String(), "disk full")
	assert.Len(t, p.ListTasks(schedule.FilterAll, ""), 1)
}

func TestPlanService_LoadsFromStorage(t *testing.T) {
	storage := NewMemoryStorage(
		domain.TaskSnapshot{ID: "b", Content: "b", Dependencies: []string{"a"}, EstimatedHours: 2, CreatedAt: t0},
		domain.TaskSnapshot{ID: "a", Content: "a", EstimatedHours: 1, CreatedAt: t0},
	)
	p, _, logs := newTestPlan(t, storage)

	sched := p.Schedule()

	assert.Equal(t, t0.Add(time.Hour), *sched["b"].Start)
	assert.Equal(t, t0.Add(3*time.Hour), *sched["b"].End)
	assert.Empty(t, logs.String())
}

func TestPlanService_WarnsOnStoredCycle(t *testing.T) {
	storage := NewMemoryStorage(
		domain.TaskSnapshot{ID: "a", Content: "a", Dependencies: []string{"b"}},
		domain.TaskSnapshot{ID: "b", Content: "b", Dependencies: []string{"a"}},
	)
	p, _, logs := newTestPlan(t, storage)

	assert.Contains(t, logs.String(), "cycle")
	assert.Len(t, p.ListTasks(schedule.FilterAll, ""), 2)
}

type failingStorage struct{ MemoryStorage }

func (f *failingStorage) Load(ctx context.Context) ([]domain.TaskSnapshot, error) {
	return nil, errors.New("corrupt")
}

func TestNewPlanService_LoadError(t *testing.T) {
	_, err := NewPlanService(context.Background(), "demo", &failingStorage{}, NewMemoryAuditLog())

	assert.ErrorContains(t, err, "corrupt")
}

func TestPlanService_AuditTrail(t *testing.T) {
	p, audit, _ := newTestPlan(t, NewMemoryStorage())
	ctx := context.Background()
	deadline := t0.Add(24 * time.Hour)

	mustApply(t, p, schedule.AddTask{Content: "a"})
	mustApply(t, p, schedule.AddTask{Content: "b"})
	mustApply(t, p, schedule.AddDependency{TaskID: "t2", DependencyID: "t1"})
	mustApply(t, p, schedule.AddDependency{TaskID: "t2", DependencyID: "t1"})
	mustApply(t, p, schedule.SetEstimatedHours{ID: "t2", Hours: 2.5})
	mustApply(t, p, schedule.SetDeadline{ID: "t2", Deadline: &deadline})
	mustApply(t, p, schedule.ToggleCompletion{ID: "t1"})
	mustApply(t, p, schedule.ToggleCompletion{ID: "t2"})
	mustApply(t, p, schedule.ToggleCompletion{ID: "t1"})

	entries, err := p.History(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, []domain.AuditAction{
		domain.ActionCascade,
		domain.ActionComplete,
		domain.ActionSetDeadline,
		domain.ActionSetHours,
		domain.ActionAddDependency,
		domain.ActionCreate,
	}, actions(entries))

	hours := entries[3]
	assert.Equal(t, "0", *hours.OldValue)
	assert.Equal(t, "2.5", *hours.NewValue)

	action := domain.ActionUncomplete
	page, total, err := p.QueryAudit(ctx, domain.AuditFilter{Action: &action, Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "t1", page[0].TaskID)

	_, total, err = audit.Query(ctx, domain.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 9, total)
}

func TestPlanService_DeleteAndPruneAudit(t *testing.T) {
	p, _, _ := newTestPlan(t, NewMemoryStorage())
	ctx := context.Background()

	mustApply(t, p, schedule.AddTask{Content: "a"})
	mustApply(t, p, schedule.AddTask{Content: "b"})
	mustApply(t, p, schedule.AddDependency{TaskID: "t2", DependencyID: "t1"})
	mustApply(t, p, schedule.DeleteTask{ID: "t1"})
	res := mustApply(t, p, schedule.PruneDanglingDependencies{})

	require.Len(t, res.Pruned, 1)
	history, err := p.History(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionDelete, history[0].Action)
	assert.Equal(t, "a", *history[0].OldValue)

	history, err = p.History(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, domain.ActionPrune, history[0].Action)
	assert.Equal(t, "t1", *history[0].OldValue)
}

func TestPlanService_HistoryUnknownTask(t *testing.T) {
	p, _, _ := newTestPlan(t, NewMemoryStorage())

	_, err := p.History(context.Background(), "nope")

	assert.True(t, domain.IsCode(err, domain.ErrCodeTaskNotFound))
}

func TestPlanService_ExportImport(t *testing.T) {
	src, _, _ := newTestPlan(t, NewMemoryStorage())
	mustApply(t, src, schedule.AddTask{Content: "a"})
	mustApply(t, src, schedule.AddTask{Content: "b"})
	mustApply(t, src, schedule.AddDependency{TaskID: "t2", DependencyID: "t1"})
	doc := src.Export()

	dstStorage := NewMemoryStorage()
	dst, audit, _ := newTestPlan(t, dstStorage)
	res, err := dst.Import(context.Background(), doc, "bob")

	require.NoError(t, err)
	assert.Len(t, res.Tasks, 2)
	assert.Equal(t, "demo", doc.Project)
	saved, err := dstStorage.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, doc.Tasks, saved)

	action := domain.ActionImport
	_, total, err := audit.Query(context.Background(), domain.AuditFilter{Action: &action})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestPlanService_ImportRejectsCycle(t *testing.T) {
	p, _, _ := newTestPlan(t, NewMemoryStorage())
	mustApply(t, p, schedule.AddTask{Content: "keep"})

	doc := snapshot.New("demo", []domain.TaskSnapshot{
		{ID: "a", Content: "a", Dependencies: []string{"b"}},
		{ID: "b", Content: "b", Dependencies: []string{"a"}},
	}, t0)
	_, err := p.Import(context.Background(), doc, "bob")

	assert.True(t, domain.IsCode(err, domain.ErrCodeCycleDetected))
	tasks := p.ListTasks(schedule.FilterAll, "")
	require.Len(t, tasks, 1)
	assert.Equal(t, "keep", tasks[0].Content)
}

func TestRegistry_GetCachesPerProject(t *testing.T) {
	opened := 0
	r := NewRegistry(func(ctx context.Context, project string) (*PlanService, error) {
		opened++
		return MemoryOpener()(ctx, project)
	})

	a1, err := r.Get(context.Background(), "a")
	require.NoError(t, err)
	a2, err := r.Get(context.Background(), "a")
	require.NoError(t, err)
	b, err := r.Get(context.Background(), "b")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, opened)
	assert.Equal(t, "b", b.Project())
}

func TestRegistry_OpenError(t *testing.T) {
	r := NewRegistry(func(ctx context.Context, project string) (*PlanService, error) {
		return nil, errors.New("boom")
	})

	_, err := r.Get(context.Background(), "a")

	assert.ErrorContains(t, err, "boom")
}

func TestSQLiteOpener_PersistsAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	m1, err := store.NewManager(dir)
	require.NoError(t, err)
	p1, err := SQLiteOpener(m1, WithIDGenerator(sequentialIDs()))(ctx, "demo")
	require.NoError(t, err)
	_, err = p1.Apply(ctx, schedule.AddTask{Content: "a"}, "alice")
	require.NoError(t, err)
	_, err = p1.Apply(ctx, schedule.AddTask{Content: "b"}, "alice")
	require.NoError(t, err)
	_, err = p1.Apply(ctx, schedule.AddDependency{TaskID: "t2", DependencyID: "t1"}, "alice")
	require.NoError(t, err)
	_, err = p1.Apply(ctx, schedule.DeleteTask{ID: "t1"}, "alice")
	require.NoError(t, err)
	require.NoError(t, m1.Close())

	m2, err := store.NewManager(dir)
	require.NoError(t, err)
	defer m2.Close()
	p2, err := SQLiteOpener(m2)(ctx, "demo")
	require.NoError(t, err)

	task, err := p2.Task("t2")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, task.Dependencies)
	assert.NotNil(t, task.CalculatedEndTime)

	history, err := p2.History(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, []domain.AuditAction{domain.ActionDelete, domain.ActionCreate}, actions(history))
}

func TestSQLiteOpener_SavesWhenRequestCanceled(t *testing.T) {
	dir := t.TempDir()

	m1, err := store.NewManager(dir)
	require.NoError(t, err)
	p1, err := SQLiteOpener(m1, WithIDGenerator(sequentialIDs()))(context.Background(), "demo")
	require.NoError(t, err)

	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p1.Apply(canceled, schedule.AddTask{Content: "a"}, "alice")
	require.NoError(t, err)
	_, err = p1.Import(canceled, snapshot.New("demo", []domain.TaskSnapshot{
		{ID: "t1", Content: "a"},
		{ID: "t2", Content: "b", Dependencies: []string{"t1"}},
	}, t0), "alice")
	require.NoError(t, err)
	require.NoError(t, m1.Close())

	m2, err := store.NewManager(dir)
	require.NoError(t, err)
	defer m2.Close()
	p2, err := SQLiteOpener(m2)(context.Background(), "demo")
	require.NoError(t, err)

	assert.Len(t, p2.ListTasks(schedule.FilterAll, ""), 2)
	history, err := p2.History(context.Background(), "t2")
	require.NoError(t, err)
	assert.Equal(t, []domain.AuditAction{domain.ActionImport}, actions(history))
}
