package memory

import (
	"context"
	"sync"

	"github.com/artem13815/productivity/pkg/auth"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]auth.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]auth.User)}
}

func (r *UserRepository) Create(_ context.Context, u auth.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.Email]; ok {
		return auth.ErrUserAlreadyExists
	}
	r.users[u.Email] = u
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (auth.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[email]
	if !ok {
		return auth.User{}, auth.ErrNotFound
	}
	return u, nil
}
