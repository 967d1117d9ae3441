package postgres

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"todosome/internal/domain/models"
	"todosome/internal/storage"
)

const taskColumns = "id, user_id, title, description, completed, created_at, updated_at"

func scanTask(row pgx.Row) (models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Task{}, storage.ErrTaskNotFound
		}
		return models.Task{}, err
	}
	return task, nil
}

// Tasks returns all user's tasks, newest first
func (s *Storage) Tasks(ctx context.Context, userID string) ([]models.Task, error) {
	const op = "storage.postgres.Tasks"

	rows, err := s.dbPool.Query(
		ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return tasks, nil
}

// SaveTask inserts a new task for its owner
func (s *Storage) SaveTask(ctx context.Context, userID string, title string, description string) (models.Task, error) {
	const op = "storage.postgres.SaveTask"

	row := s.dbPool.QueryRow(
		ctx,
		"INSERT INTO tasks(id, user_id, title, description) VALUES($1, $2, $3, $4) RETURNING "+taskColumns,
		uuid.New().String(),
		userID,
		title,
		description,
	)
	task, err := scanTask(row)
	if err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	return task, nil
}

// UpdateTask applies non-nil fields of the update to the task owned by user
func (s *Storage) UpdateTask(ctx context.Context, userID string, taskID string, upd models.TaskUpdate) (models.Task, error) {
	row := s.dbPool.QueryRow(
		ctx,
		`UPDATE tasks SET
			title = COALESCE($3, title),
			description = COALESCE($4, description),
			completed = COALESCE($5, completed),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING `+taskColumns,
		taskID,
		userID,
		upd.Title,
		upd.Description,
		upd.Completed,
	)
	return scanTask(row)
}

// DeleteTask removes the task owned by user
func (s *Storage) DeleteTask(ctx context.Context, userID string, taskID string) error {
	const op = "storage.postgres.DeleteTask"

	tag, err := s.dbPool.Exec(ctx, "DELETE FROM tasks WHERE id = $1 AND user_id = $2", taskID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrTaskNotFound
	}
	return nil
}
