package goal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/apperr"
)

// Type is the goal horizon.
type Type string

const (
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
)

// Goal is a weekly or monthly objective owned by one email.
type Goal struct {
	ID        uuid.UUID `json:"id"`
	Goal      string    `json:"goal"`
	Type      Type      `json:"type"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Patch struct {
	Goal *string
	Type *Type
}

func (p Patch) Empty() bool { return p.Goal == nil && p.Type == nil }

var ErrNotFound = apperr.NotFound("Goal not found")

type Repository interface {
	Create(ctx context.Context, g Goal) error
	ListByOwner(ctx context.Context, email string) ([]Goal, error)
	GetForOwner(ctx context.Context, email string, id uuid.UUID) (Goal, error)
	UpdateForOwner(ctx context.Context, email string, id uuid.UUID, p Patch, now time.Time) (Goal, error)
	DeleteForOwner(ctx context.Context, email string, id uuid.UUID) error
	CountByType(ctx context.Context, email string) (map[Type]int, error)
}
