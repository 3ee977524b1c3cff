package client

import (
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// AuditQuery filters the project audit log. Zero values are ignored.
type AuditQuery struct {
	TaskID  string
	Action  string
	AgentID string
	Since   *time.Time
	Until   *time.Time
	Page    int
	PerPage int
}

// AuditPage is one page of audit entries.
type AuditPage struct {
	Data       []domain.AuditEntry `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// Pagination contains pagination metadata from API responses.
type Pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// createTaskRequest is the JSON request body for creating a task.
type createTaskRequest struct {
	Content string `json:"content"`
}

// setDeadlineRequest is the JSON request body for setting a deadline.
type setDeadlineRequest struct {
	Deadline *time.Time `json:"deadline"`
}

// setHoursRequest is the JSON request body for setting estimated hours.
type setHoursRequest struct {
	Hours float64 `json:"hours"`
}

// addDependencyRequest is the JSON request body for adding a dependency.
type addDependencyRequest struct {
	DependencyID string `json:"dependency_id"`
}

// healthResponse is the JSON response for the health endpoint.
type healthResponse struct {
	Status string `json:"status"`
}
