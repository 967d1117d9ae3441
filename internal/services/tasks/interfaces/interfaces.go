package interfaces

import (
	"context"
	"todosome/internal/domain/models"
)

type TaskStorage interface {
	SaveTask(ctx context.Context, userID string, title string, description string) (models.Task, error)
	UpdateTask(ctx context.Context, userID string, taskID string, upd models.TaskUpdate) (models.Task, error)
	DeleteTask(ctx context.Context, userID string, taskID string) error
}

type TaskProvider interface {
	Tasks(ctx context.Context, userID string) ([]models.Task, error)
}
