package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/todopath/todopath/internal/domain"
)

// timeFormat keeps sub-second precision so snapshots round-trip exactly.
const timeFormat = time.RFC3339Nano

// TaskRepository persists a project's task snapshots.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Load returns every task in list order with its dependencies in insertion
// order.
func (r *TaskRepository) Load(ctx context.Context) ([]domain.TaskSnapshot, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, content, completed, estimated_hours, deadline, created_at
		FROM tasks
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var snaps []domain.TaskSnapshot
	index := make(map[string]int)
	for rows.Next() {
		var s domain.TaskSnapshot
		var deadline sql.NullString
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Content, &s.Completed, &s.EstimatedHours, &deadline, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		if deadline.Valid {
			d, err := time.Parse(timeFormat, deadline.String)
			if err != nil {
				return nil, fmt.Errorf("task %s: bad deadline: %w", s.ID, err)
			}
			s.Deadline = &d
		}
		if s.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
			return nil, fmt.Errorf("task %s: bad created_at: %w", s.ID, err)
		}
		s.Dependencies = []string{}
		index[s.ID] = len(snaps)
		snaps = append(snaps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	depRows, err := r.db.QueryContext(ctx, `
		SELECT task_id, dependency_id FROM dependencies ORDER BY task_id, position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query dependencies: %w", err)
	}
	defer depRows.Close()

	for depRows.Next() {
		var taskID, depID string
		if err := depRows.Scan(&taskID, &depID); err != nil {
			return nil, fmt.Errorf("failed to scan dependency: %w", err)
		}
		if i, ok := index[taskID]; ok {
			snaps[i].Dependencies = append(snaps[i].Dependencies, depID)
		}
	}
	return snaps, depRows.Err()
}

// Save replaces the stored task set with snaps in one transaction.
func (r *TaskRepository) Save(ctx context.Context, snaps []domain.TaskSnapshot) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, table := range []string{"dependencies", "tasks"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		taskStmt, err := tx.PrepareContext(ctx,
			`INSERT INTO tasks (id, position, content, completed, estimated_hours, deadline, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer taskStmt.Close()

		depStmt, err := tx.PrepareContext(ctx,
			`INSERT OR IGNORE INTO dependencies (task_id, dependency_id, position) VALUES (?, ?, ?)`)
		if err != nil {
			return err
		}
		defer depStmt.Close()

		for pos, s := range snaps {
			var deadline *string
			if s.Deadline != nil {
				d := s.Deadline.UTC().Format(timeFormat)
				deadline = &d
			}
			_, err := taskStmt.ExecContext(ctx, s.ID, pos, s.Content, s.Completed, s.EstimatedHours,
				deadline, s.CreatedAt.UTC().Format(timeFormat))
			if err != nil {
				return fmt.Errorf("failed to insert task %s: %w", s.ID, err)
			}
			for depPos, depID := range s.Dependencies {
				if _, err := depStmt.ExecContext(ctx, s.ID, depID, depPos); err != nil {
					return fmt.Errorf("failed to insert dependency %s -> %s: %w", s.ID, depID, err)
				}
			}
		}
		return nil
	})
}
