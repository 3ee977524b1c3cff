package domain

import (
	"fmt"
	"math"
	"time"
)

// DelayStatus classifies an incomplete task's projected finish against its deadline.
type DelayStatus string

const (
	DelayNormal  DelayStatus = "normal"
	DelayWarning DelayStatus = "warning"
	DelayDelayed DelayStatus = "delayed"
)

// ValidDelayStatuses contains all valid delay status values.
var ValidDelayStatuses = []DelayStatus{DelayNormal, DelayWarning, DelayDelayed}

// IsValid checks if the status is a valid delay status.
func (s DelayStatus) IsValid() bool {
	for _, v := range ValidDelayStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// DefaultDuration is used for tasks whose estimate is unset (zero).
const DefaultDuration = time.Hour

// MaxEstimatedHours bounds an estimate, a little over eleven years.
const MaxEstimatedHours = 100000

// EstimateRangeMessage describes the accepted estimates in validation errors.
var EstimateRangeMessage = fmt.Sprintf("hours must be a number between 0 and %d", MaxEstimatedHours)

// ValidEstimate reports whether h can be stored as an estimate.
func ValidEstimate(h float64) bool {
	return !math.IsNaN(h) && h >= 0 && h <= MaxEstimatedHours
}

// Task represents a unit of work in the plan.
//
// The fields after CreatedAt form the derived region: they are owned by the
// scheduler and the delay classifier, rewritten in full on every
// recomputation, and never persisted.
type Task struct {
	ID             string     `json:"id"`
	Content        string     `json:"content"`
	Completed      bool       `json:"completed"`
	Dependencies   []string   `json:"dependencies"`
	EstimatedHours float64    `json:"estimated_hours"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	CalculatedStartTime *time.Time  `json:"calculated_start_time,omitempty"`
	CalculatedEndTime   *time.Time  `json:"calculated_end_time,omitempty"`
	DelayStatus         DelayStatus `json:"delay_status"`
}

// NewTask creates a new incomplete task with the given id and content.
func NewTask(id, content string, createdAt time.Time) *Task {
	return &Task{
		ID:           id,
		Content:      content,
		Dependencies: []string{},
		CreatedAt:    createdAt,
		DelayStatus:  DelayNormal,
	}
}

// Duration returns the scheduled duration of the task.
// An estimate of zero means unset and yields DefaultDuration. Estimates
// above MaxEstimatedHours are capped there.
func (t *Task) Duration() time.Duration {
	h := t.EstimatedHours
	switch {
	case h == 0:
		return DefaultDuration
	case h > MaxEstimatedHours:
		h = MaxEstimatedHours
	}
	return time.Duration(h * float64(time.Hour))
}

// HasDependency reports whether id is in the task's dependency set.
func (t *Task) HasDependency(id string) bool {
	for _, dep := range t.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// ClearSchedule resets the derived region.
func (t *Task) ClearSchedule() {
	t.CalculatedStartTime = nil
	t.CalculatedEndTime = nil
	t.DelayStatus = DelayNormal
}

// SetSchedule records calculated start and end times.
func (t *Task) SetSchedule(start, end time.Time) {
	t.CalculatedStartTime = &start
	t.CalculatedEndTime = &end
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() Task {
	c := *t
	c.Dependencies = append([]string{}, t.Dependencies...)
	if t.Deadline != nil {
		d := *t.Deadline
		c.Deadline = &d
	}
	if t.CalculatedStartTime != nil {
		s := *t.CalculatedStartTime
		c.CalculatedStartTime = &s
	}
	if t.CalculatedEndTime != nil {
		e := *t.CalculatedEndTime
		c.CalculatedEndTime = &e
	}
	return c
}

// Snapshot returns the persisted shape of the task.
func (t *Task) Snapshot() TaskSnapshot {
	s := TaskSnapshot{
		ID:             t.ID,
		Content:        t.Content,
		Completed:      t.Completed,
		Dependencies:   append([]string{}, t.Dependencies...),
		EstimatedHours: t.EstimatedHours,
		CreatedAt:      t.CreatedAt,
	}
	if t.Deadline != nil {
		d := *t.Deadline
		s.Deadline = &d
	}
	return s
}

// TaskSnapshot is what the storage collaborator loads and saves.
// Calculated fields are never part of it.
type TaskSnapshot struct {
	ID             string     `json:"id" yaml:"id"`
	Content        string     `json:"content" yaml:"content"`
	Completed      bool       `json:"completed" yaml:"completed"`
	Dependencies   []string   `json:"dependencies" yaml:"dependencies,omitempty"`
	EstimatedHours float64    `json:"estimated_hours" yaml:"estimated_hours,omitempty"`
	Deadline       *time.Time `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	CreatedAt      time.Time  `json:"created_at" yaml:"created_at"`
}

// Task converts the snapshot into a task with an empty derived region.
// Duplicate dependency ids are collapsed.
func (s TaskSnapshot) Task() *Task {
	t := NewTask(s.ID, s.Content, s.CreatedAt)
	t.Completed = s.Completed
	t.EstimatedHours = s.EstimatedHours
	if s.Deadline != nil {
		d := *s.Deadline
		t.Deadline = &d
	}
	for _, dep := range s.Dependencies {
		if !t.HasDependency(dep) {
			t.Dependencies = append(t.Dependencies, dep)
		}
	}
	return t
}

// ScheduleEntry is the derived schedule for one task.
type ScheduleEntry struct {
	Start       *time.Time  `json:"start,omitempty"`
	End         *time.Time  `json:"end,omitempty"`
	DelayStatus DelayStatus `json:"delay_status"`
}
