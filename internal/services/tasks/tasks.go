package tasks

import (
	"context"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"log/slog"
	"strings"
	"todosome/internal/domain/models"
	"todosome/internal/services/tasks/interfaces"
	"todosome/internal/storage"
)

type Tasks struct {
	log      *slog.Logger
	storage  interfaces.TaskStorage
	provider interfaces.TaskProvider
}

func New(log *slog.Logger, storage interfaces.TaskStorage, provider interfaces.TaskProvider) *Tasks {
	return &Tasks{log: log, storage: storage, provider: provider}
}

// List returns all tasks of the user
func (t *Tasks) List(ctx context.Context, userID string) ([]models.Task, error) {
	const op = "tasks.List"

	list, err := t.provider.Tasks(ctx, userID)
	if err != nil {
		t.log.Error("failed to list tasks", slog.String("op", op), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list, nil
}

// Create adds a new task, title is required
func (t *Tasks) Create(ctx context.Context, userID string, title string, description string) (models.Task, error) {
	const op = "tasks.Create"
	log := t.log.With(slog.String("op", op), slog.String("user_id", userID))

	title = strings.TrimSpace(title)
	if title == "" {
		return models.Task{}, fmt.Errorf("%s: title is required: %w", op, storage.ErrInvalidArgument)
	}
	task, err := t.storage.SaveTask(ctx, userID, title, strings.TrimSpace(description))
	if err != nil {
		log.Error("failed to save task", slog.String("error", err.Error()))
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("task created", slog.String("task_id", task.ID))
	return task, nil
}

// Update changes fields of user's task
//
// Task of another user is reported as storage.ErrTaskNotFound
func (t *Tasks) Update(ctx context.Context, userID string, taskID string, upd models.TaskUpdate) (models.Task, error) {
	const op = "tasks.Update"
	log := t.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("task_id", taskID))

	if _, err := uuid.Parse(taskID); err != nil {
		return models.Task{}, fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}
	if upd.Empty() {
		return models.Task{}, fmt.Errorf("%s: nothing to update: %w", op, storage.ErrInvalidArgument)
	}
	if upd.Title != nil {
		title := strings.TrimSpace(*upd.Title)
		if title == "" {
			return models.Task{}, fmt.Errorf("%s: title can't be empty: %w", op, storage.ErrInvalidArgument)
		}
		upd.Title = &title
	}

	task, err := t.storage.UpdateTask(ctx, userID, taskID, upd)
	if err != nil {
		if !errors.Is(err, storage.ErrTaskNotFound) {
			log.Error("failed to update task", slog.String("error", err.Error()))
		}
		return models.Task{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("task updated")
	return task, nil
}

// Delete removes user's task
func (t *Tasks) Delete(ctx context.Context, userID string, taskID string) error {
	const op = "tasks.Delete"
	log := t.log.With(slog.String("op", op), slog.String("user_id", userID), slog.String("task_id", taskID))

	if _, err := uuid.Parse(taskID); err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrTaskNotFound)
	}
	if err := t.storage.DeleteTask(ctx, userID, taskID); err != nil {
		if !errors.Is(err, storage.ErrTaskNotFound) {
			log.Error("failed to delete task", slog.String("error", err.Error()))
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	log.Info("task deleted")
	return nil
}
