package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/artem13815/productivity/pkg/auth"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = "23505"

// UserRepository implements auth.UserRepository backed by PostgreSQL.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user auth.User) error {
	var photo sql.NullString
	if user.PhotoURL != "" {
		photo = sql.NullString{String: user.PhotoURL, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, name, photo_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, user.ID, strings.ToLower(user.Email), user.PasswordHash, user.Name, photo, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return auth.ErrUserAlreadyExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (auth.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, email, password_hash, name, photo_url, created_at
		FROM users WHERE email = $1
	`, strings.ToLower(email))
	var user auth.User
	var photo sql.NullString
	var createdAt time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name, &photo, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.User{}, auth.ErrNotFound
		}
		return auth.User{}, fmt.Errorf("select user: %w", err)
	}
	user.PhotoURL = photo.String
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
