package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/artem13815/productivity/pkg/apperr"
	"github.com/artem13815/productivity/pkg/validator"
)

// AuthUseCase describes authentication/registration behavior.
type AuthUseCase interface {
	Register(ctx context.Context, in RegisterInput) (AuthResult, error)
	Login(ctx context.Context, email, password string) (AuthResult, error)
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Photo    *Photo
}

// Photo is an uploaded profile picture.
type Photo struct {
	Filename    string
	ContentType string
	Data        []byte
}

type AuthResult struct {
	User  User
	Token string
}

type authService struct {
	repo   UserRepository
	tokens TokenGenerator
	photos PhotoStore
	cost   int
}

// NewAuthService returns default implementation of AuthUseCase. photos may be
// nil, in which case uploaded photos are ignored.
func NewAuthService(repo UserRepository, tokens TokenGenerator, photos PhotoStore) AuthUseCase {
	return &authService{repo: repo, tokens: tokens, photos: photos, cost: bcrypt.DefaultCost}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	email := validator.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	v := validator.New()
	v.Email(email)
	v.Password(in.Password)
	v.Required(name, "name")
	if err := v.Err("Email, password and name are required"); err != nil {
		return AuthResult{}, err
	}

	// If user exists, fail fast (best-effort check; the unique index decides races)
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return AuthResult{}, ErrUserAlreadyExists
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return AuthResult{}, err
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}

	var photoURL string
	if in.Photo != nil && s.photos != nil {
		photoURL, err = s.photos.Save(ctx, in.Photo.Filename, in.Photo.ContentType, in.Photo.Data)
		if err != nil {
			return AuthResult{}, err
		}
	}

	user := User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(passwordHash),
		Name:         name,
		PhotoURL:     photoURL,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if photoURL != "" {
			// the unique index can still reject a concurrent duplicate
			if derr := s.photos.Delete(context.WithoutCancel(ctx), photoURL); derr != nil {
				slog.WarnContext(ctx, "orphaned profile photo", slog.String("url", photoURL), slog.Any("error", derr))
			}
		}
		return AuthResult{}, err
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	email = validator.NormalizeEmail(email)
	if email == "" || password == "" {
		return AuthResult{}, apperr.Validation("Email and password are required")
	}
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return AuthResult{}, ErrInvalidCredentials
	}
	token, err := s.tokens.Generate(ctx, user)
	if err != nil {
		return AuthResult{}, apperr.Internal(err)
	}
	return AuthResult{User: user, Token: token}, nil
}
