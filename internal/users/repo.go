package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

type User struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"-"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

var ErrNotFound = apperr.NotFound("USER_NOT_FOUND", "user not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

type UpsertUser struct {
	Subject     string
	Email       string
	DisplayName string
}

// EnsureUser creates the row for a newly seen identity or refreshes a
// known one, returning the internal id. Empty email/display name never
// overwrite previously stored values.
func (r *Repo) EnsureUser(ctx context.Context, u UpsertUser) (uuid.UUID, error) {
	if u.Subject == "" {
		return uuid.Nil, fmt.Errorf("subject required")
	}

	const q = `
insert into users (subject, email, display_name, updated_at)
values ($1, nullif($2,''), nullif($3,''), now())
on conflict (subject) do update
set
  email = coalesce(excluded.email, users.email),
  display_name = coalesce(excluded.display_name, users.display_name),
  updated_at = now()
returning id;
`
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, q, u.Subject, u.Email, u.DisplayName).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("ensure user: %w", err)
	}
	return id, nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*User, error) {
	const q = `
select id, subject, coalesce(email,''), coalesce(display_name,''), created_at
from users
where id = $1;
`
	var u User
	err := r.db.QueryRow(ctx, q, id).Scan(&u.ID, &u.Subject, &u.Email, &u.DisplayName, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}
