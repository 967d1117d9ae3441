package models

import "time"

// Task is a personal to-do item, always owned by exactly one user
type Task struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Completed   bool      `json:"completed" db:"completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TaskUpdate holds optional changes for a task, nil fields stay untouched
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// Empty reports whether the update changes nothing
func (u TaskUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil
}
