package schedule

import (
	"strings"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// Command is a mutation request accepted by Engine.Apply.
type Command interface {
	apply(e *Engine) (*Result, error)
}

// AddTask creates a new incomplete task at the front of the list.
type AddTask struct {
	Content string
}

// DeleteTask removes a task. Other tasks keep any reference to it.
type DeleteTask struct {
	ID string
}

// AddDependency makes TaskID depend on DependencyID.
type AddDependency struct {
	TaskID       string
	DependencyID string
}

// RemoveDependency drops the edge TaskID -> DependencyID.
type RemoveDependency struct {
	TaskID       string
	DependencyID string
}

// ToggleCompletion flips the completed flag of a task.
type ToggleCompletion struct {
	ID string
}

// SetDeadline sets or, with a nil Deadline, clears a task's deadline.
type SetDeadline struct {
	ID       string
	Deadline *time.Time
}

// SetEstimatedHours sets a task's estimate. Zero means unset.
type SetEstimatedHours struct {
	ID    string
	Hours float64
}

// PruneDanglingDependencies removes dependency ids that name no task.
type PruneDanglingDependencies struct{}

func (c AddTask) apply(e *Engine) (*Result, error) {
	content := strings.TrimSpace(c.Content)
	if content == "" {
		return nil, domain.NewValidationError([]string{"content is required"})
	}
	id, err := e.newID()
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	e.graph.prepend(domain.NewTask(id, content, e.now()))
	return &Result{TaskID: id}, nil
}

func (c DeleteTask) apply(e *Engine) (*Result, error) {
	if !e.graph.remove(c.ID) {
		return nil, domain.NewTaskNotFoundError(c.ID)
	}
	return &Result{TaskID: c.ID}, nil
}

func (c AddDependency) apply(e *Engine) (*Result, error) {
	source, ok := e.graph.Task(c.TaskID)
	if !ok {
		return nil, domain.NewTaskNotFoundError(c.TaskID)
	}
	if !e.graph.Has(c.DependencyID) {
		return nil, domain.NewTaskNotFoundError(c.DependencyID)
	}
	if c.TaskID == c.DependencyID {
		return nil, domain.NewValidationError([]string{"a task cannot depend on itself"})
	}
	if source.HasDependency(c.DependencyID) {
		return &Result{TaskID: c.TaskID}, nil
	}
	if path := e.graph.CyclePath(c.DependencyID, c.TaskID); path != nil {
		return nil, domain.NewCycleDetectedError(path)
	}
	e.graph.AddDependency(c.TaskID, c.DependencyID)
	return &Result{TaskID: c.TaskID}, nil
}

func (c RemoveDependency) apply(e *Engine) (*Result, error) {
	if !e.graph.Has(c.TaskID) {
		return nil, domain.NewTaskNotFoundError(c.TaskID)
	}
	e.graph.RemoveDependency(c.TaskID, c.DependencyID)
	return &Result{TaskID: c.TaskID}, nil
}

func (c ToggleCompletion) apply(e *Engine) (*Result, error) {
	res, err := e.graph.ToggleCompletion(c.ID)
	if err != nil {
		return nil, err
	}
	return &Result{TaskID: c.ID, Completed: res.Completed, Reverted: res.Reverted}, nil
}

func (c SetDeadline) apply(e *Engine) (*Result, error) {
	t, ok := e.graph.Task(c.ID)
	if !ok {
		return nil, domain.NewTaskNotFoundError(c.ID)
	}
	if c.Deadline == nil {
		t.Deadline = nil
	} else {
		d := *c.Deadline
		t.Deadline = &d
	}
	return &Result{TaskID: c.ID}, nil
}

func (c SetEstimatedHours) apply(e *Engine) (*Result, error) {
	t, ok := e.graph.Task(c.ID)
	if !ok {
		return nil, domain.NewTaskNotFoundError(c.ID)
	}
	if !domain.ValidEstimate(c.Hours) {
		return nil, domain.NewValidationError([]string{domain.EstimateRangeMessage})
	}
	t.EstimatedHours = c.Hours
	return &Result{TaskID: c.ID}, nil
}

func (c PruneDanglingDependencies) apply(e *Engine) (*Result, error) {
	pruned := e.graph.DanglingDependencies()
	for _, d := range pruned {
		e.graph.RemoveDependency(d.TaskID, d.DependencyID)
	}
	return &Result{Pruned: pruned}, nil
}
