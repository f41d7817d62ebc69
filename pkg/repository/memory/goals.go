package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/goal"
)

type GoalRepository struct {
	mu    sync.RWMutex
	items []goal.Goal
}

func NewGoalRepository() *GoalRepository { return &GoalRepository{} }

func (r *GoalRepository) Create(_ context.Context, g goal.Goal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, g)
	return nil
}

func (r *GoalRepository) ListByOwner(_ context.Context, email string) ([]goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []goal.Goal
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Email == email {
			out = append(out, r.items[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *GoalRepository) find(email string, id uuid.UUID) int {
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].Email == email {
			return i
		}
	}
	return -1
}

func (r *GoalRepository) GetForOwner(_ context.Context, email string, id uuid.UUID) (goal.Goal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.find(email, id)
	if i < 0 {
		return goal.Goal{}, goal.ErrNotFound
	}
	return r.items[i], nil
}

func (r *GoalRepository) UpdateForOwner(_ context.Context, email string, id uuid.UUID, p goal.Patch, now time.Time) (goal.Goal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(email, id)
	if i < 0 {
		return goal.Goal{}, goal.ErrNotFound
	}
	if p.Goal != nil {
		r.items[i].Goal = *p.Goal
	}
	if p.Type != nil {
		r.items[i].Type = *p.Type
	}
	r.items[i].UpdatedAt = now
	return r.items[i], nil
}

func (r *GoalRepository) DeleteForOwner(_ context.Context, email string, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.find(email, id)
	if i < 0 {
		return goal.ErrNotFound
	}
	r.items = append(r.items[:i], r.items[i+1:]...)
	return nil
}

func (r *GoalRepository) CountByType(_ context.Context, email string) (map[goal.Type]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[goal.Type]int)
	for _, g := range r.items {
		if g.Email == email {
			out[g.Type]++
		}
	}
	return out, nil
}
