package task

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/apperr"
)

// Task is a to-do item owned by one email.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Email     string    `json:"email"`
	// Position is set once the owner reorders the list; nil sorts first.
	Position  *int      `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch holds the fields of a partial update; nil means "leave unchanged".
type Patch struct {
	Title     *string
	Completed *bool
}

func (p Patch) Empty() bool { return p.Title == nil && p.Completed == nil }

// Counts is the per-owner completion tally used by the dashboard.
type Counts struct {
	Total     int
	Completed int
}

var ErrNotFound = apperr.NotFound("Task not found")

// Repository is the persistence port for tasks. Every method is scoped by owner email.
type Repository interface {
	Create(ctx context.Context, t Task) error
	ListByOwner(ctx context.Context, email string) ([]Task, error)
	GetForOwner(ctx context.Context, email string, id uuid.UUID) (Task, error)
	UpdateForOwner(ctx context.Context, email string, id uuid.UUID, p Patch, now time.Time) (Task, error)
	DeleteForOwner(ctx context.Context, email string, id uuid.UUID) error
	// Reorder moves id to index inside the owner's sequence and persists
	// every position, returning the list in its new order.
	Reorder(ctx context.Context, email string, id uuid.UUID, index int) ([]Task, error)
	CountByOwner(ctx context.Context, email string) (Counts, error)
}
