package auth

import (
	"context"

	"github.com/artem13815/productivity/pkg/apperr"
)

// Common errors used by repository/use cases
var (
	ErrNotFound           = apperr.NotFound("user not found")
	ErrUserAlreadyExists  = apperr.Conflict("User already exists")
	ErrInvalidCredentials = apperr.Auth("Invalid credentials")
)

// UserRepository abstracts persistence concerns from the domain layer.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}
