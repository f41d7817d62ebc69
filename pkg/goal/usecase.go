package goal

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/validator"
)

type UseCase interface {
	List(ctx context.Context, email string) ([]Goal, error)
	Create(ctx context.Context, email, text string, typ Type) (Goal, error)
	Update(ctx context.Context, id, email string, p Patch) (Goal, error)
	Delete(ctx context.Context, id, email string) error
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: time.Now}
}

var errEmailRequired = apperr.ValidationFields("Email is required", map[string]string{"email": "must be provided"})

func checkType(typ Type) error {
	v := validator.New()
	v.OneOf(string(typ), "type", string(TypeWeekly), string(TypeMonthly))
	return v.Err("Type must be one of: weekly, monthly")
}

func (s *service) List(ctx context.Context, email string) ([]Goal, error) {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return nil, errEmailRequired
	}
	goals, err := s.repo.ListByOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if goals == nil {
		goals = []Goal{}
	}
	return goals, nil
}

func (s *service) Create(ctx context.Context, email, text string, typ Type) (Goal, error) {
	email = validator.NormalizeEmail(email)
	text = strings.TrimSpace(text)
	v := validator.New()
	v.Required(email, "email")
	v.Required(text, "goal")
	v.Required(string(typ), "type")
	if err := v.Err("Email, goal and type are required"); err != nil {
		return Goal{}, err
	}
	if err := checkType(typ); err != nil {
		return Goal{}, err
	}
	now := s.now().UTC()
	g := Goal{
		ID:        uuid.New(),
		Goal:      text,
		Type:      typ,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, g); err != nil {
		return Goal{}, err
	}
	return g, nil
}

func (s *service) Update(ctx context.Context, id, email string, p Patch) (Goal, error) {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return Goal{}, errEmailRequired
	}
	if p.Goal != nil {
		text := strings.TrimSpace(*p.Goal)
		if text == "" {
			return Goal{}, apperr.ValidationFields("Goal cannot be empty", map[string]string{"goal": "must not be empty"})
		}
		p.Goal = &text
	}
	if p.Type != nil {
		if err := checkType(*p.Type); err != nil {
			return Goal{}, err
		}
	}
	gid, err := uuid.Parse(id)
	if err != nil {
		return Goal{}, ErrNotFound
	}
	if p.Empty() {
		return s.repo.GetForOwner(ctx, email, gid)
	}
	return s.repo.UpdateForOwner(ctx, email, gid, p, s.now().UTC())
}

func (s *service) Delete(ctx context.Context, id, email string) error {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return errEmailRequired
	}
	gid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	return s.repo.DeleteForOwner(ctx, email, gid)
}
