// Package repository persists projects and project memberships over pgx.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-backend/internal/projects/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const projectColumns = `id, organization_id, slug, name, coalesce(description,''), status, is_favorite, created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.OrgID, &p.Slug, &p.Name, &p.Description, &p.Status,
		&p.IsFavorite, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a project as active. The partial unique index on
// (organization_id, slug) where deleted_at is null maps to SLUG_TAKEN.
func (r *Repo) Create(ctx context.Context, p *domain.Project) error {
	const q = `
insert into projects (organization_id, slug, name, description, status, created_by)
values ($1, $2, $3, $4, 'active', $5)
returning id, status, is_favorite, created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, p.OrgID, p.Slug, p.Name, p.Description, p.CreatedBy).
		Scan(&p.ID, &p.Status, &p.IsFavorite, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrSlugTaken
		}
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where id = $1 and deleted_at is null;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *Repo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Project, error) {
	const q = `
select ` + projectColumns + `
from projects
where organization_id = $1 and deleted_at is null
order by created_at desc;
`
	rows, err := r.db.Query(ctx, q, orgID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		var p domain.Project
		err := rows.Scan(&p.ID, &p.OrgID, &p.Slug, &p.Name, &p.Description, &p.Status,
			&p.IsFavorite, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountLive counts non-deleted projects, the quantity the per-org
// ceiling applies to.
func (r *Repo) CountLive(ctx context.Context, orgID uuid.UUID) (int, error) {
	const q = `
select count(*)
from projects
where organization_id = $1 and deleted_at is null;
`
	var n int
	if err := r.db.QueryRow(ctx, q, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count projects: %w", err)
	}
	return n, nil
}

// Update patches name, description and/or favorite; nil leaves a field
// as is.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, name, description *string, favorite *bool) (*domain.Project, error) {
	const q = `
update projects
set name = coalesce($2, name),
    description = coalesce($3, description),
    is_favorite = coalesce($4, is_favorite),
    updated_at = now()
where id = $1 and deleted_at is null
returning ` + projectColumns + `;
`
	p, err := scanProject(r.db.QueryRow(ctx, q, id, name, description, favorite))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// SetStatus flips status from exactly one state to another in a single
// statement, so concurrent archive calls cannot both win. It reports
// whether a row transitioned.
func (r *Repo) SetStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (bool, error) {
	const q = `
update projects
set status = $3, updated_at = now()
where id = $1 and status = $2 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, id, from, to)
	if err != nil {
		return false, fmt.Errorf("set project status: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `
update projects
set deleted_at = now(), updated_at = now()
where id = $1 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("soft delete project: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) AddMember(ctx context.Context, m *domain.Member) error {
	const q = `
insert into project_members (project_id, user_id, role_id)
values ($1, $2, $3)
returning added_at;
`
	err := r.db.QueryRow(ctx, q, m.ProjectID, m.UserID, m.RoleID).Scan(&m.AddedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrMemberExists
		}
		return fmt.Errorf("add project member: %w", err)
	}
	return nil
}

func (r *Repo) RemoveMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	const q = `
delete from project_members
where project_id = $1 and user_id = $2;
`
	ct, err := r.db.Exec(ctx, q, projectID, userID)
	if err != nil {
		return false, fmt.Errorf("remove project member: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) UpdateMemberRole(ctx context.Context, projectID, userID, roleID uuid.UUID) (bool, error) {
	const q = `
update project_members
set role_id = $3
where project_id = $1 and user_id = $2;
`
	ct, err := r.db.Exec(ctx, q, projectID, userID, roleID)
	if err != nil {
		return false, fmt.Errorf("update project member role: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.MemberInfo, error) {
	const q = `
select m.project_id, m.user_id, m.role_id, m.added_at,
       coalesce(u.email,''), coalesce(u.display_name,'')
from project_members m
join users u on u.id = m.user_id
where m.project_id = $1
order by m.added_at asc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list project members: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MemberInfo, 0, 16)
	for rows.Next() {
		var mi domain.MemberInfo
		if err := rows.Scan(&mi.ProjectID, &mi.UserID, &mi.RoleID, &mi.AddedAt, &mi.Email, &mi.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, mi)
	}
	return out, rows.Err()
}
