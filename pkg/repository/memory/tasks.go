// Package memory holds map-backed repositories used as test doubles for the
// use cases and HTTP handlers. They mirror the owner scoping of the Postgres
// repositories; the server itself always runs on Postgres.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/task"
)

type TaskRepository struct {
	mu    sync.RWMutex
	items []task.Task // insertion order
}

func NewTaskRepository() *TaskRepository { return &TaskRepository{} }

func (r *TaskRepository) Create(_ context.Context, t task.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, t)
	return nil
}

// owned returns copies of the owner's tasks, newest insertion first, in list order.
func (r *TaskRepository) owned(email string) []task.Task {
	var out []task.Task
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Email == email {
			out = append(out, r.items[i])
		}
	}
	task.Sort(out)
	return out
}

func (r *TaskRepository) ListByOwner(_ context.Context, email string) ([]task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.owned(email), nil
}

func (r *TaskRepository) find(email string, id uuid.UUID) int {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].Email == email {
			return i
		}
	}
	return -1
}

func (r *TaskRepository) GetForOwner(_ context.Context, email string, id uuid.UUID) (task.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.find(email, id)
	if i < 0 {
		return task.Task{}, task.ErrNotFound
	}
	return r.items[i], nil
}

func (r *TaskRepository) UpdateForOwner(_ context.Context, email string, id uuid.UUID, p task.Patch, now time.Time) (task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(email, id)
	if i < 0 {
		return task.Task{}, task.ErrNotFound
	}
	if p.Title != nil {
		r.items[i].Title = *p.Title
	}
	if p.Completed != nil {
		r.items[i].Completed = *p.Completed
	}
	r.items[i].UpdatedAt = now
	return r.items[i], nil
}

func (r *TaskRepository) DeleteForOwner(_ context.Context, email string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(email, id)
	if i < 0 {
		return task.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *TaskRepository) Reorder(_ context.Context, email string, id uuid.UUID, index int) ([]task.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := r.owned(email)
	ids := make([]uuid.UUID, len(current))
	for i, t := range current {
		ids[i] = t.ID
	}
	ordered, ok := task.Move(ids, id, index)
	if !ok {
		return nil, task.ErrNotFound
	}
	for pos, tid := range ordered {
		p := pos
		r.items[r.find(email, tid)].Position = &p
	}
	return r.owned(email), nil
}

func (r *TaskRepository) CountByOwner(_ context.Context, email string) (task.Counts, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var c task.Counts
	for _, t := range r.items {
		if t.Email != email {
			continue
		}
		c.Total++
		if t.Completed {
			c.Completed++
		}
	}
	return c, nil
}
