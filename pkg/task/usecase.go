package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/validator"
)

// UseCase describes the task operations exposed over HTTP.
type UseCase interface {
	List(ctx context.Context, email string) ([]Task, error)
	Create(ctx context.Context, email, title string) (Task, error)
	Update(ctx context.Context, id, email string, p Patch) (Task, error)
	Delete(ctx context.Context, id, email string) error
	Reorder(ctx context.Context, id string, index int, email string) ([]Task, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo, now: time.Now}
}

var errEmailRequired = apperr.ValidationFields("Email is required", map[string]string{"email": "must be provided"})

func (s *service) List(ctx context.Context, email string) ([]Task, error) {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return nil, errEmailRequired
	}
	tasks, err := s.repo.ListByOwner(ctx, email)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []Task{}
	}
	return tasks, nil
}

func (s *service) Create(ctx context.Context, email, title string) (Task, error) {
	email = validator.NormalizeEmail(email)
	title = strings.TrimSpace(title)
	v := validator.New()
	v.Required(email, "email")
	v.Required(title, "title")
	if err := v.Err("Email and title are required"); err != nil {
		return Task{}, err
	}
	now := s.now().UTC()
	t := Task{
		ID:        uuid.New(),
		Title:     title,
		Completed: false,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func (s *service) Update(ctx context.Context, id, email string, p Patch) (Task, error) {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return Task{}, errEmailRequired
	}
	// A task never loses its title: an explicit "" is rejected, not applied.
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return Task{}, apperr.ValidationFields("Title cannot be empty", map[string]string{"title": "must not be empty"})
		}
		p.Title = &title
	}
	tid, err := uuid.Parse(id)
	if err != nil {
		return Task{}, ErrNotFound
	}
	if p.Empty() {
		return s.repo.GetForOwner(ctx, email, tid)
	}
	return s.repo.UpdateForOwner(ctx, email, tid, p, s.now().UTC())
}

func (s *service) Delete(ctx context.Context, id, email string) error {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return errEmailRequired
	}
	tid, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	return s.repo.DeleteForOwner(ctx, email, tid)
}

func (s *service) Reorder(ctx context.Context, id string, index int, email string) ([]Task, error) {
	email = validator.NormalizeEmail(email)
	if email == "" {
		return nil, errEmailRequired
	}
	if index < 0 {
		return nil, apperr.ValidationFields("Index must not be negative", map[string]string{"index": "must be >= 0"})
	}
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.repo.Reorder(ctx, email, tid, index)
}
