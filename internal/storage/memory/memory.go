// Package memory keeps users and tasks in process memory.
// Used for local runs without postgres and by service tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"todosome/internal/domain/models"
	"todosome/internal/storage"
)

type Storage struct {
	mu      sync.RWMutex
	users   map[string]models.User // by id
	byEmail map[string]string
	byToken map[string]string
	tasks   map[string]models.Task // by id
}

func New() *Storage {
	return &Storage{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		byToken: make(map[string]string),
		tasks:   make(map[string]models.Task),
	}
}

// Ping is always successful
func (s *Storage) Ping(_ context.Context) error {
	return nil
}

// SaveUser checks uniqueness of email and inserts user under one lock
func (s *Storage) SaveUser(_ context.Context, email string, passHash []byte, verificationToken string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		return models.User{}, storage.ErrUserExists
	}
	user := models.User{
		ID:                uuid.New().String(),
		Email:             email,
		PassHash:          append([]byte(nil), passHash...),
		VerificationToken: verificationToken,
		CreatedAt:         time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.byEmail[email] = user.ID
	if verificationToken != "" {
		s.byToken[verificationToken] = user.ID
	}
	return user, nil
}

func (s *Storage) User(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Storage) UserByID(_ context.Context, userID string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return user, nil
}

func (s *Storage) UserByVerificationToken(_ context.Context, token string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byToken[token]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return s.users[id], nil
}

func (s *Storage) Profile(ctx context.Context, userID string) (models.Profile, error) {
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return models.Profile{}, err
	}
	return user.Profile(), nil
}

// MarkVerified returns false when user is absent or already verified
func (s *Storage) MarkVerified(_ context.Context, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.IsEmailVerified {
		return false, nil
	}
	delete(s.byToken, user.VerificationToken)
	user.IsEmailVerified = true
	user.VerificationToken = ""
	s.users[userID] = user
	return true, nil
}

func (s *Storage) DeleteUser(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	delete(s.users, userID)
	delete(s.byEmail, user.Email)
	delete(s.byToken, user.VerificationToken)
	for id, task := range s.tasks {
		if task.UserID == userID {
			delete(s.tasks, id)
		}
	}
	return nil
}

// Tasks returns user's tasks, newest first
func (s *Storage) Tasks(_ context.Context, userID string) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]models.Task, 0)
	for _, task := range s.tasks {
		if task.UserID == userID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Storage) SaveTask(_ context.Context, userID string, title string, description string) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return models.Task{}, storage.ErrUserNotFound
	}
	now := time.Now().UTC()
	task := models.Task{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.tasks[task.ID] = task
	return task, nil
}

func (s *Storage) UpdateTask(_ context.Context, userID string, taskID string, upd models.TaskUpdate) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return models.Task{}, storage.ErrTaskNotFound
	}
	if upd.Title != nil {
		task.Title = *upd.Title
	}
	if upd.Description != nil {
		task.Description = *upd.Description
	}
	if upd.Completed != nil {
		task.Completed = *upd.Completed
	}
	task.UpdatedAt = time.Now().UTC()
	s.tasks[taskID] = task
	return task, nil
}

func (s *Storage) DeleteTask(_ context.Context, userID string, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return storage.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	return nil
}
