// Package repository persists organizations and their memberships over
// pgx. Unique violations are translated to the domain's conflict
// errors, everything else is wrapped and bubbles up as internal.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-backend/internal/organizations/domain"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

const orgColumns = `id, name, slug, coalesce(description,''), invite_code, created_by, created_at, updated_at`

func scanOrg(row pgx.Row) (*domain.Organization, error) {
	var o domain.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Slug, &o.Description, &o.InviteCode, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// CreateWithOwner inserts the organization and the creator's owner
// membership in one transaction. On return o carries the generated id
// and timestamps.
func (r *Repo) CreateWithOwner(ctx context.Context, o *domain.Organization) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertOrg = `
insert into organizations (name, slug, description, invite_code, created_by)
values ($1, $2, $3, $4, $5)
returning id, created_at, updated_at;
`
	err = tx.QueryRow(ctx, insertOrg, o.Name, o.Slug, o.Description, o.InviteCode, o.CreatedBy).
		Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return translateUniqueViolation(err)
	}

	const insertOwner = `
insert into organization_members (organization_id, user_id, role)
values ($1, $2, 'owner');
`
	if _, err := tx.Exec(ctx, insertOwner, o.ID, o.CreatedBy); err != nil {
		return fmt.Errorf("insert owner membership: %w", err)
	}

	return tx.Commit(ctx)
}

// translateUniqueViolation maps 23505 by constraint: the slug index
// means the caller picked a taken slug, the invite code index means the
// generated code collided and the service should mint a new one.
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		if strings.Contains(pgErr.ConstraintName, "invite_code") {
			return domain.ErrInviteCodeCollision
		}
		return domain.ErrSlugTaken
	}
	return fmt.Errorf("insert organization: %w", err)
}

func (r *Repo) BySlug(ctx context.Context, slug string) (*domain.Organization, error) {
	const q = `
select ` + orgColumns + `
from organizations
where slug = $1 and deleted_at is null;
`
	o, err := scanOrg(r.db.QueryRow(ctx, q, slug))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	const q = `
select ` + orgColumns + `
from organizations
where id = $1 and deleted_at is null;
`
	o, err := scanOrg(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return o, nil
}

// BySlugAndCode is the join lookup: both values must match one live
// row. A miss is reported as invite-not-found so callers cannot probe
// which half was wrong.
func (r *Repo) BySlugAndCode(ctx context.Context, slug, code string) (*domain.Organization, error) {
	const q = `
select ` + orgColumns + `
from organizations
where slug = $1 and invite_code = $2 and deleted_at is null;
`
	o, err := scanOrg(r.db.QueryRow(ctx, q, slug, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrInviteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lookup invite: %w", err)
	}
	return o, nil
}

// Update patches name and/or description; nil leaves a field as is.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, name, description *string) (*domain.Organization, error) {
	const q = `
update organizations
set name = coalesce($2, name),
    description = coalesce($3, description),
    updated_at = now()
where id = $1 and deleted_at is null
returning ` + orgColumns + `;
`
	o, err := scanOrg(r.db.QueryRow(ctx, q, id, name, description))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	return o, nil
}

func (r *Repo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	const q = `
update organizations
set deleted_at = now(), updated_at = now()
where id = $1 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("soft delete organization: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *Repo) SetInviteCode(ctx context.Context, id uuid.UUID, code string) error {
	const q = `
update organizations
set invite_code = $2, updated_at = now()
where id = $1 and deleted_at is null;
`
	ct, err := r.db.Exec(ctx, q, id, code)
	if err != nil {
		return translateUniqueViolation(err)
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetMember returns (nil, nil) when no membership row exists, absence
// is a permission question, not a storage failure.
func (r *Repo) GetMember(ctx context.Context, orgID, userID uuid.UUID) (*domain.Member, error) {
	const q = `
select organization_id, user_id, role, joined_at
from organization_members
where organization_id = $1 and user_id = $2;
`
	var m domain.Member
	err := r.db.QueryRow(ctx, q, orgID, userID).Scan(&m.OrgID, &m.UserID, &m.Role, &m.JoinedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return &m, nil
}

func (r *Repo) AddMember(ctx context.Context, m *domain.Member) error {
	const q = `
insert into organization_members (organization_id, user_id, role)
values ($1, $2, $3)
returning joined_at;
`
	err := r.db.QueryRow(ctx, q, m.OrgID, m.UserID, m.Role).Scan(&m.JoinedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrAlreadyMember
		}
		return fmt.Errorf("add member: %w", err)
	}
	return nil
}

func (r *Repo) RemoveMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	const q = `
delete from organization_members
where organization_id = $1 and user_id = $2;
`
	ct, err := r.db.Exec(ctx, q, orgID, userID)
	if err != nil {
		return false, fmt.Errorf("remove member: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.Role) (bool, error) {
	const q = `
update organization_members
set role = $3
where organization_id = $1 and user_id = $2;
`
	ct, err := r.db.Exec(ctx, q, orgID, userID, role)
	if err != nil {
		return false, fmt.Errorf("update member role: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

func (r *Repo) ListMembers(ctx context.Context, orgID uuid.UUID) ([]domain.MemberInfo, error) {
	const q = `
select m.organization_id, m.user_id, m.role, m.joined_at,
       coalesce(u.email,''), coalesce(u.display_name,'')
from organization_members m
join users u on u.id = m.user_id
where m.organization_id = $1
order by m.joined_at asc;
`
	rows, err := r.db.Query(ctx, q, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	out := make([]domain.MemberInfo, 0, 16)
	for rows.Next() {
		var mi domain.MemberInfo
		if err := rows.Scan(&mi.OrgID, &mi.UserID, &mi.Role, &mi.JoinedAt, &mi.Email, &mi.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, mi)
	}
	return out, rows.Err()
}

// CountAdmins counts admin-or-owner rows, the quantity the LAST_ADMIN
// rule protects.
func (r *Repo) CountAdmins(ctx context.Context, orgID uuid.UUID) (int, error) {
	const q = `
select count(*)
from organization_members
where organization_id = $1 and role in ('admin', 'owner');
`
	var n int
	if err := r.db.QueryRow(ctx, q, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", err)
	}
	return n, nil
}

func (r *Repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.OrgWithRole, error) {
	const q = `
select o.id, o.name, o.slug, coalesce(o.description,''), o.invite_code,
       o.created_by, o.created_at, o.updated_at, m.role
from organizations o
join organization_members m on m.organization_id = o.id
where m.user_id = $1 and o.deleted_at is null
order by o.created_at desc;
`
	rows, err := r.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	out := make([]domain.OrgWithRole, 0, 8)
	for rows.Next() {
		var o domain.OrgWithRole
		err := rows.Scan(&o.ID, &o.Name, &o.Slug, &o.Description, &o.InviteCode,
			&o.CreatedBy, &o.CreatedAt, &o.UpdatedAt, &o.Role)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
