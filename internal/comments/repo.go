package comments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, c *Comment) error {
	const q = `
insert into comments (task_id, author_id, body)
values ($1, $2, $3)
returning id, created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, c.TaskID, c.AuthorID, c.Body).
		Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*Comment, error) {
	const q = `
select id, task_id, author_id, body, created_at, updated_at
from comments
where id = $1;
`
	var c Comment
	err := r.db.QueryRow(ctx, q, id).
		Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

func (r *Repo) ListByTask(ctx context.Context, taskID uuid.UUID) ([]Info, error) {
	const q = `
select c.id, c.task_id, c.author_id, c.body, c.created_at, c.updated_at,
       u.email, coalesce(u.display_name, '')
from comments c
join users u on u.id = c.author_id
where c.task_id = $1
order by c.created_at asc;
`
	rows, err := r.db.Query(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	out := make([]Info, 0, 8)
	for rows.Next() {
		var in Info
		err := rows.Scan(&in.ID, &in.TaskID, &in.AuthorID, &in.Body, &in.CreatedAt, &in.UpdatedAt,
			&in.AuthorEmail, &in.AuthorName)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, body string) (*Comment, error) {
	const q = `
update comments
set body = $2,
    updated_at = now()
where id = $1
returning id, task_id, author_id, body, created_at, updated_at;
`
	var c Comment
	err := r.db.QueryRow(ctx, q, id, body).
		Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Body, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	return &c, nil
}

func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `delete from comments where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
