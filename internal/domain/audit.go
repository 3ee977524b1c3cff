package domain

import "time"

// AuditAction names a plan mutation recorded in the audit log.
type AuditAction string

const (
	ActionCreate           AuditAction = "create"
	ActionDelete           AuditAction = "delete"
	ActionAddDependency    AuditAction = "add_dependency"
	ActionRemoveDependency AuditAction = "remove_dependency"
	ActionComplete         AuditAction = "complete"
	ActionUncomplete       AuditAction = "uncomplete"
	ActionCascade          AuditAction = "cascade"
	ActionSetDeadline      AuditAction = "set_deadline"
	ActionSetHours         AuditAction = "set_hours"
	ActionPrune            AuditAction = "prune"
	ActionImport           AuditAction = "import"
)

// ValidAuditActions contains all valid audit action values.
var ValidAuditActions = []AuditAction{
	ActionCreate,
	ActionDelete,
	ActionAddDependency,
	ActionRemoveDependency,
	ActionComplete,
	ActionUncomplete,
	ActionCascade,
	ActionSetDeadline,
	ActionSetHours,
	ActionPrune,
	ActionImport,
}

// IsValid checks if the action is a valid audit action.
func (a AuditAction) IsValid() bool {
	for _, v := range ValidAuditActions {
		if a == v {
			return true
		}
	}
	return false
}

// AuditEntry is one recorded change to a task.
type AuditEntry struct {
	ID        int64       `json:"id"`
	TaskID    string      `json:"task_id"`
	Action    AuditAction `json:"action"`
	Field     *string     `json:"field,omitempty"`
	OldValue  *string     `json:"old_value,omitempty"`
	NewValue  *string     `json:"new_value,omitempty"`
	ChangedAt time.Time   `json:"changed_at"`
	ChangedBy string      `json:"changed_by"`
}

// NewAuditEntry creates an entry stamped with the given time.
func NewAuditEntry(taskID string, action AuditAction, changedBy string, at time.Time) AuditEntry {
	return AuditEntry{
		TaskID:    taskID,
		Action:    action,
		ChangedAt: at,
		ChangedBy: changedBy,
	}
}

// WithChange records the field touched and its values before and after.
// Empty values are left unset.
func (e AuditEntry) WithChange(field, oldValue, newValue string) AuditEntry {
	e.Field = &field
	if oldValue != "" {
		e.OldValue = &oldValue
	}
	if newValue != "" {
		e.NewValue = &newValue
	}
	return e
}

// AuditFilter narrows an audit log query. Nil fields match everything.
type AuditFilter struct {
	TaskID  *string
	Action  *AuditAction
	AgentID *string
	Since   *time.Time
	Until   *time.Time
	Page    int
	PerPage int
}

// Offset returns the number of entries skipped before the requested page.
func (f AuditFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PerPage
}
