package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/todopath/todopath/internal/domain"
	"github.com/todopath/todopath/internal/schedule"
)

// History returns the audit history for a task, newest first. Deleted tasks
// keep their history; a task that never existed is not found.
func (s *PlanService) History(ctx context.Context, taskID string) ([]*domain.AuditEntry, error) {
	entries, err := s.audit.ListByTaskID(ctx, taskID)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	if len(entries) == 0 {
		if _, err := s.Task(taskID); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// QueryAudit returns one page of the project's audit log and the total
// number of matching entries.
func (s *PlanService) QueryAudit(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, int, error) {
	entries, total, err := s.audit.Query(ctx, filter)
	if err != nil {
		return nil, 0, domain.NewInternalError(err)
	}
	return entries, total, nil
}

// changeEntries describes an accepted command as audit entries. Commands
// that changed nothing produce none.
func changeEntries(cmd schedule.Command, before map[string]domain.TaskSnapshot, res *schedule.Result, agentID string, at time.Time) []domain.AuditEntry {
	entry := func(taskID string, action domain.AuditAction) domain.AuditEntry {
		return domain.NewAuditEntry(taskID, action, agentID, at)
	}

	switch c := cmd.(type) {
	case schedule.AddTask:
		return []domain.AuditEntry{
			entry(res.TaskID, domain.ActionCreate).WithChange("content", "", strings.TrimSpace(c.Content)),
		}

	case schedule.DeleteTask:
		return []domain.AuditEntry{
			entry(c.ID, domain.ActionDelete).WithChange("content", before[c.ID].Content, ""),
		}

	case schedule.AddDependency:
		if hasDependency(before[c.TaskID], c.DependencyID) {
			return nil
		}
		return []domain.AuditEntry{
			entry(c.TaskID, domain.ActionAddDependency).WithChange("dependencies", "", c.DependencyID),
		}

	case schedule.RemoveDependency:
		if !hasDependency(before[c.TaskID], c.DependencyID) {
			return nil
		}
		return []domain.AuditEntry{
			entry(c.TaskID, domain.ActionRemoveDependency).WithChange("dependencies", c.DependencyID, ""),
		}

	case schedule.ToggleCompletion:
		if res.Completed {
			return []domain.AuditEntry{
				entry(c.ID, domain.ActionComplete).WithChange("completed", "false", "true"),
			}
		}
		entries := []domain.AuditEntry{
			entry(c.ID, domain.ActionUncomplete).WithChange("completed", "true", "false"),
		}
		for _, id := range res.Reverted {
			entries = append(entries, entry(id, domain.ActionCascade).WithChange("completed", "true", "false"))
		}
		return entries

	case schedule.SetDeadline:
		return []domain.AuditEntry{
			entry(c.ID, domain.ActionSetDeadline).WithChange("deadline", formatTime(before[c.ID].Deadline), formatTime(c.Deadline)),
		}

	case schedule.SetEstimatedHours:
		return []domain.AuditEntry{
			entry(c.ID, domain.ActionSetHours).WithChange("estimated_hours", formatHours(before[c.ID].EstimatedHours), formatHours(c.Hours)),
		}

	case schedule.PruneDanglingDependencies:
		entries := make([]domain.AuditEntry, 0, len(res.Pruned))
		for _, d := range res.Pruned {
			entries = append(entries, entry(d.TaskID, domain.ActionPrune).WithChange("dependencies", d.DependencyID, ""))
		}
		return entries
	}
	return nil
}

func hasDependency(s domain.TaskSnapshot, id string) bool {
	for _, dep := range s.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
