package client

import (
	"context"
	"sync"

	"todosome/internal/domain/models"
)

// Tasks is a task list of the session user.
// Subscribers are notified after every successful change so views can refetch.
type Tasks struct {
	session *Session

	mu          sync.Mutex
	subscribers map[int]func()
	nextSubID   int
}

func NewTasks(session *Session) *Tasks {
	return &Tasks{session: session, subscribers: make(map[int]func())}
}

// Subscribe registers fn fired after create, update and delete, returns unsubscribe
func (t *Tasks) Subscribe(fn func()) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextSubID
	t.nextSubID++
	t.subscribers[id] = fn
	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.subscribers, id)
	}
}

func (t *Tasks) notify() {
	t.mu.Lock()
	subs := make([]func(), 0, len(t.subscribers))
	for _, fn := range t.subscribers {
		subs = append(subs, fn)
	}
	t.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

func (t *Tasks) List(ctx context.Context) ([]models.Task, error) {
	list, err := t.session.api.ListTasks(ctx)
	if err != nil {
		return nil, t.session.checkUnauthorized(err)
	}
	return list, nil
}

func (t *Tasks) Create(ctx context.Context, title string, description string) (models.Task, error) {
	task, err := t.session.api.CreateTask(ctx, title, description)
	if err != nil {
		return models.Task{}, t.session.checkUnauthorized(err)
	}
	t.notify()
	return task, nil
}

func (t *Tasks) Update(ctx context.Context, id string, in TaskInput) (models.Task, error) {
	task, err := t.session.api.UpdateTask(ctx, id, in)
	if err != nil {
		return models.Task{}, t.session.checkUnauthorized(err)
	}
	t.notify()
	return task, nil
}

// Toggle flips completion of the task
func (t *Tasks) Toggle(ctx context.Context, task models.Task) (models.Task, error) {
	completed := !task.Completed
	return t.Update(ctx, task.ID, TaskInput{Completed: &completed})
}

func (t *Tasks) Delete(ctx context.Context, id string) error {
	if err := t.session.api.DeleteTask(ctx, id); err != nil {
		return t.session.checkUnauthorized(err)
	}
	t.notify()
	return nil
}
