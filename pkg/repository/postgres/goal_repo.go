package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/goal"
)

// GoalRepository stores weekly/monthly goals scoped by owner email.
type GoalRepository struct {
	db *sql.DB
}

func NewGoalRepository(db *sql.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

const goalColumns = `id, email, goal, type, created_at, updated_at`

func scanGoal(s rowScanner) (goal.Goal, error) {
	var g goal.Goal
	var typ string
	var created, updated time.Time
	if err := s.Scan(&g.ID, &g.Email, &g.Goal, &typ, &created, &updated); err != nil {
		return goal.Goal{}, err
	}
	g.Type = goal.Type(typ)
	g.CreatedAt = created.UTC()
	g.UpdatedAt = updated.UTC()
	return g, nil
}

func (r *GoalRepository) Create(ctx context.Context, g goal.Goal) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO goals (id, email, goal, type, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`, g.ID, g.Email, g.Goal, string(g.Type), g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert goal: %w", err)
	}
	return nil
}

func (r *GoalRepository) ListByOwner(ctx context.Context, email string) ([]goal.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT `+goalColumns+`
FROM goals WHERE email = $1
ORDER BY created_at DESC, id
`, email)
	if err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	defer rows.Close()
	res := []goal.Goal{}
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		res = append(res, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return res, nil
}

func (r *GoalRepository) GetForOwner(ctx context.Context, email string, id uuid.UUID) (goal.Goal, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+goalColumns+` FROM goals WHERE id = $1 AND email = $2
`, id, email)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goal.Goal{}, goal.ErrNotFound
		}
		return goal.Goal{}, fmt.Errorf("select goal: %w", err)
	}
	return g, nil
}

func (r *GoalRepository) UpdateForOwner(ctx context.Context, email string, id uuid.UUID, p goal.Patch, now time.Time) (goal.Goal, error) {
	var typ *string
	if p.Type != nil {
		s := string(*p.Type)
		typ = &s
	}
	row := r.db.QueryRowContext(ctx, `
UPDATE goals
SET goal = COALESCE($3, goal),
	type = COALESCE($4, type),
	updated_at = $5
WHERE id = $1 AND email = $2
RETURNING `+goalColumns, id, email, p.Goal, typ, now)
	g, err := scanGoal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return goal.Goal{}, goal.ErrNotFound
		}
		return goal.Goal{}, fmt.Errorf("update goal: %w", err)
	}
	return g, nil
}

func (r *GoalRepository) DeleteForOwner(ctx context.Context, email string, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = $1 AND email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n == 0 {
		return goal.ErrNotFound
	}
	return nil
}

func (r *GoalRepository) CountByType(ctx context.Context, email string) (map[goal.Type]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT type, COUNT(*) FROM goals WHERE email = $1 GROUP BY type`, email)
	if err != nil {
		return nil, fmt.Errorf("count goals: %w", err)
	}
	defer rows.Close()
	out := make(map[goal.Type]int)
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, fmt.Errorf("scan goal count: %w", err)
		}
		out[goal.Type(typ)] = n
	}
	return out, rows.Err()
}
