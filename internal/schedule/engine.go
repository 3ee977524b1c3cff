package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/pkg/idgen"
)

// Filter selects tasks by completion state.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name. The empty string means FilterAll.
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	default:
		return "", domain.NewValidationError([]string{fmt.Sprintf("unknown filter %q", s)})
	}
}

func (f Filter) match(t *domain.Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Result is returned by an accepted command.
type Result struct {
	TaskID    string              `json:"task_id,omitempty"`
	Completed bool                `json:"completed,omitempty"`
	Reverted  []string            `json:"reverted,omitempty"`
	Pruned    []domain.Dependency `json:"pruned,omitempty"`
	Tasks     []domain.Task       `json:"tasks"`
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used for scheduling and creation stamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the task id source.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(e *Engine) {
		e.newIDFunc = gen
	}
}

// Engine owns a plan's task set. Every accepted command is followed by a
// full recomputation of times and delay statuses. Queries return copies.
// An Engine is not safe for concurrent use.
type Engine struct {
	graph     *Graph
	now       func() time.Time
	newIDFunc func() (string, error)
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		graph:     NewGraph(nil),
		now:       time.Now,
		newIDFunc: idgen.Generate,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

const maxIDAttempts = 8

func (e *Engine) newID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := e.newIDFunc()
		if err != nil {
			return "", err
		}
		if !e.graph.Has(id) {
			return id, nil
		}
	}
	return "", fmt.Errorf("no unused id after %d attempts", maxIDAttempts)
}

// Restore replaces the task set with snapshots in list order and
// recomputes. Cyclic input is accepted; see DetectCycle.
func (e *Engine) Restore(snapshots []domain.TaskSnapshot) {
	tasks := make([]*domain.Task, 0, len(snapshots))
	for _, s := range snapshots {
		tasks = append(tasks, s.Task())
	}
	e.graph = NewGraph(tasks)
	e.recompute()
}

// Apply runs a command. On rejection the task set is unchanged and the
// error is a *domain.DomainError.
func (e *Engine) Apply(cmd Command) (*Result, error) {
	res, err := cmd.apply(e)
	if err != nil {
		return nil, err
	}
	e.recompute()
	res.Tasks = e.ListTasks(FilterAll, "")
	return res, nil
}

func (e *Engine) recompute() {
	e.graph.Recompute(e.now())
	e.graph.ClassifyAll()
}

// DetectCycle returns a dependency cycle in the current set, or nil.
func (e *Engine) DetectCycle() []string {
	return e.graph.DetectCycle()
}

// Len returns the number of tasks.
func (e *Engine) Len() int {
	return e.graph.Len()
}

// ListTasks returns tasks matching filter whose content contains search,
// compared case-insensitively after trimming. An empty search matches all.
func (e *Engine) ListTasks(filter Filter, search string) []domain.Task {
	term := strings.ToLower(strings.TrimSpace(search))
	out := make([]domain.Task, 0, e.graph.Len())
	for _, t := range e.graph.Tasks() {
		if !filter.match(t) {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(t.Content), term) {
			continue
		}
		out = append(out, t.Clone())
	}
	return out
}

// Task returns a copy of one task.
func (e *Engine) Task(id string) (domain.Task, error) {
	t, ok := e.graph.Task(id)
	if !ok {
		return domain.Task{}, domain.NewTaskNotFoundError(id)
	}
	return t.Clone(), nil
}

// Dependencies returns the edges out of id, marking dangling ones.
func (e *Engine) Dependencies(id string) ([]domain.Dependency, error) {
	t, ok := e.graph.Task(id)
	if !ok {
		return nil, domain.NewTaskNotFoundError(id)
	}
	return domain.DependenciesOf(t, e.graph.Has), nil
}

// Schedule returns the derived schedule of every task.
func (e *Engine) Schedule() map[string]domain.ScheduleEntry {
	out := make(map[string]domain.ScheduleEntry, e.graph.Len())
	for _, t := range e.graph.Tasks() {
		c := t.Clone()
		out[t.ID] = domain.ScheduleEntry{
			Start:       c.CalculatedStartTime,
			End:         c.CalculatedEndTime,
			DelayStatus: c.DelayStatus,
		}
	}
	return out
}

// Snapshot returns the persisted shape of the task set in list order.
func (e *Engine) Snapshot() []domain.TaskSnapshot {
	out := make([]domain.TaskSnapshot, 0, e.graph.Len())
	for _, t := range e.graph.Tasks() {
		out = append(out, t.Snapshot())
	}
	return out
}

// ValidateSnapshots checks an externally supplied task set before it
// replaces a plan: ids must be present and unique, content non-empty, and
// the dependency relation acyclic.
func ValidateSnapshots(snapshots []domain.TaskSnapshot) error {
	var details []string
	seen := make(map[string]bool, len(snapshots))
	tasks := make([]*domain.Task, 0, len(snapshots))
	for i, s := range snapshots {
		switch {
		case s.ID == "":
			details = append(details, fmt.Sprintf("task %d: id is required", i))
		case seen[s.ID]:
			details = append(details, fmt.Sprintf("task %s: duplicate id", s.ID))
		}
		if strings.TrimSpace(s.Content) == "" {
			details = append(details, fmt.Sprintf("task %d: content is required", i))
		}
		if !domain.ValidEstimate(s.EstimatedHours) {
			details = append(details, fmt.Sprintf("task %d: %s", i, domain.EstimateRangeMessage))
		}
		seen[s.ID] = true
		tasks = append(tasks, s.Task())
	}
	if len(details) > 0 {
		return domain.NewValidationError(details)
	}
	if cycle := NewGraph(tasks).DetectCycle(); cycle != nil {
		return domain.NewCycleDetectedError(cycle)
	}
	return nil
}
