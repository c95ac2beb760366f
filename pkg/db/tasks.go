package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

type Task struct {
	ID        string     `db:"id" json:"id"`
	UserID    string     `db:"user_id" json:"userId"`
	Title     string     `db:"title" json:"title"`
	Status    string     `db:"status" json:"status"`
	DueDate   *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time  `db:"updated_at" json:"updatedAt"`
}

type CreateTaskInput struct {
	UserID  string
	Title   string
	DueDate *time.Time
}

// CreateTask adds a new pending task.
func (s *Store) CreateTask(ctx context.Context, input CreateTaskInput) (*Task, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, id, input.UserID, input.Title, triage.TaskStatusPending, input.DueDate, now, now)
	if err != nil {
		return nil, err
	}

	return &Task{
		ID:        id,
		UserID:    input.UserID,
		Title:     input.Title,
		Status:    triage.TaskStatusPending,
		DueDate:   input.DueDate,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// GetTasks retrieves a user's tasks, optionally narrowed by status.
func (s *Store) GetTasks(ctx context.Context, userID, status string) ([]*Task, error) {
	var tasks []*Task
	var err error
	if status == "" {
		err = s.db.SelectContext(ctx, &tasks, `
			SELECT id, user_id, title, status, due_date, created_at, updated_at
			FROM tasks
			WHERE user_id = ?
			ORDER BY created_at DESC
		`, userID)
	} else {
		err = s.db.SelectContext(ctx, &tasks, `
			SELECT id, user_id, title, status, due_date, created_at, updated_at
			FROM tasks
			WHERE user_id = ? AND status = ?
			ORDER BY created_at DESC
		`, userID, status)
	}
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// UpdateTaskStatus moves a task between pending and done.
func (s *Store) UpdateTaskStatus(ctx context.Context, id, status string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, status, id)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	return err
}

// CountTasks counts a user's tasks by status for the morning brief.
func (s *Store) CountTasks(ctx context.Context, filter triage.TaskFilter) (int, error) {
	var count int
	var err error
	if filter.Status == "" {
		err = s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE user_id = ?`, filter.UserID)
	} else {
		err = s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM tasks WHERE user_id = ? AND status = ?`,
			filter.UserID, filter.Status)
	}
	if err != nil && err != sql.ErrNoRows {
		return 0, err
	}
	return count, nil
}
