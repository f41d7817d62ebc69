package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/productivity/pkg/task"
)

// TaskRepository stores tasks; every statement is scoped by owner email.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, email, title, completed, position, created_at, updated_at`

const listTasksSQL = `
SELECT ` + taskColumns + `
FROM tasks WHERE email = $1
ORDER BY position ASC NULLS FIRST, created_at DESC, id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (task.Task, error) {
	var t task.Task
	var pos sql.NullInt64
	var created, updated time.Time
	if err := s.Scan(&t.ID, &t.Email, &t.Title, &t.Completed, &pos, &created, &updated); err != nil {
		return task.Task{}, err
	}
	if pos.Valid {
		p := int(pos.Int64)
		t.Position = &p
	}
	t.CreatedAt = created.UTC()
	t.UpdatedAt = updated.UTC()
	return t, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listTasks(ctx context.Context, q queryer, email string) ([]task.Task, error) {
	rows, err := q.QueryContext(ctx, listTasksSQL, email)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()
	res := []task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		res = append(res, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return res, nil
}

func (r *TaskRepository) Create(ctx context.Context, t task.Task) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, email, title, completed, position, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`, t.ID, t.Email, t.Title, t.Completed, t.Position, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) ListByOwner(ctx context.Context, email string) ([]task.Task, error) {
	return listTasks(ctx, r.db, email)
}

func (r *TaskRepository) GetForOwner(ctx context.Context, email string, id uuid.UUID) (task.Task, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND email = $2
`, id, email)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("select task: %w", err)
	}
	return t, nil
}

// UpdateForOwner applies the patch in one statement; NULL parameters keep the stored value.
func (r *TaskRepository) UpdateForOwner(ctx context.Context, email string, id uuid.UUID, p task.Patch, now time.Time) (task.Task, error) {
	row := r.db.QueryRowContext(ctx, `
UPDATE tasks
SET title = COALESCE($3, title),
	completed = COALESCE($4, completed),
	updated_at = $5
WHERE id = $1 AND email = $2
RETURNING `+taskColumns, id, email, p.Title, p.Completed, now)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) DeleteForOwner(ctx context.Context, email string, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Reorder(ctx context.Context, email string, id uuid.UUID, index int) ([]task.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin reorder: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Lock the owner's rows so concurrent reorders serialize.
	rows, err := tx.QueryContext(ctx, `
SELECT id FROM tasks WHERE email = $1
ORDER BY position ASC NULLS FIRST, created_at DESC, id
FOR UPDATE
`, email)
	if err != nil {
		return nil, fmt.Errorf("lock tasks: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var tid uuid.UUID
		if err := rows.Scan(&tid); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		ids = append(ids, tid)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock tasks: %w", err)
	}

	ordered, ok := task.Move(ids, id, index)
	if !ok {
		return nil, task.ErrNotFound
	}
	for pos, tid := range ordered {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET position = $1 WHERE id = $2 AND email = $3`, pos, tid, email); err != nil {
			return nil, fmt.Errorf("set task position: %w", err)
		}
	}
	res, err := listTasks(ctx, tx, email)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit reorder: %w", err)
	}
	return res, nil
}

func (r *TaskRepository) CountByOwner(ctx context.Context, email string) (task.Counts, error) {
	var c task.Counts
	err := r.db.QueryRowContext(ctx, `
SELECT COUNT(*), COUNT(*) FILTER (WHERE completed) FROM tasks WHERE email = $1
`, email).Scan(&c.Total, &c.Completed)
	if err != nil {
		return task.Counts{}, fmt.Errorf("count tasks: %w", err)
	}
	return c, nil
}
