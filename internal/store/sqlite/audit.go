package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

const auditColumns = "id, task_id, action, field, old_value, new_value, changed_at, changed_by"

// AuditRepository stores audit entries in the audit_log table.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Log appends entries atomically. Timestamps are stored as UTC RFC3339 so
// range filters can compare them as strings.
func (r *AuditRepository) Log(ctx context.Context, entries ...domain.AuditEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO audit_log (task_id, action, field, old_value, new_value, changed_at, changed_by)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range entries {
			_, err := stmt.ExecContext(ctx, e.TaskID, string(e.Action), e.Field, e.OldValue, e.NewValue,
				formatTime(e.ChangedAt), e.ChangedBy)
			if err != nil {
				return fmt.Errorf("failed to insert audit entry: %w", err)
			}
		}
		return nil
	})
}

// ListByTaskID returns a task's entries, newest first.
func (r *AuditRepository) ListByTaskID(ctx context.Context, taskID string) ([]*domain.AuditEntry, error) {
	return r.selectEntries(ctx,
		"SELECT "+auditColumns+" FROM audit_log WHERE task_id = ? ORDER BY id DESC", taskID)
}

// Query returns one page of entries matching filter, newest first, with the
// total number of matches. A non-positive PerPage returns every match.
func (r *AuditRepository) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditEntry, int, error) {
	where, args := auditWhere(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := filter.PerPage
	if limit <= 0 {
		limit = -1
	}
	entries, err := r.selectEntries(ctx,
		"SELECT "+auditColumns+" FROM audit_log"+where+" ORDER BY id DESC LIMIT ? OFFSET ?",
		append(args, limit, filter.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// auditWhere renders filter's set fields as a WHERE clause.
func auditWhere(filter domain.AuditFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		conds = append(conds, cond)
		args = append(args, arg)
	}

	if filter.TaskID != nil {
		add("task_id = ?", *filter.TaskID)
	}
	if filter.Action != nil {
		add("action = ?", string(*filter.Action))
	}
	if filter.AgentID != nil {
		add("changed_by = ?", *filter.AgentID)
	}
	if filter.Since != nil {
		add("changed_at >= ?", formatTime(*filter.Since))
	}
	if filter.Until != nil {
		add("changed_at <= ?", formatTime(*filter.Until))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *AuditRepository) selectEntries(ctx context.Context, query string, args ...interface{}) ([]*domain.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []*domain.AuditEntry{}
	for rows.Next() {
		var (
			e                         domain.AuditEntry
			action, changedAt         string
			field, oldValue, newValue sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.TaskID, &action, &field, &oldValue, &newValue, &changedAt, &e.ChangedBy); err != nil {
			return nil, err
		}
		e.Action = domain.AuditAction(action)
		e.Field = nullableString(field)
		e.OldValue = nullableString(oldValue)
		e.NewValue = nullableString(newValue)
		e.ChangedAt, _ = time.Parse(time.RFC3339, changedAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
