// Package pgtest opens the postgres pool the DSN-gated integration
// tests run against. Tests calling Open are skipped unless TEST_DB_DSN
// points at a disposable database; the schema is applied idempotently
// on every open so tests never depend on external migration runs.
package pgtest

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	_ "github.com/lib/pq"
)

const schema = `
create table if not exists users (
  id uuid primary key default gen_random_uuid(),
  subject text not null unique,
  email text,
  display_name text,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create table if not exists organizations (
  id uuid primary key default gen_random_uuid(),
  name text not null,
  slug text not null,
  description text,
  invite_code text not null,
  created_by uuid not null references users(id),
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now(),
  deleted_at timestamptz
);

create unique index if not exists organizations_slug_live_idx
  on organizations (slug) where deleted_at is null;
create unique index if not exists organizations_invite_code_live_idx
  on organizations (invite_code) where deleted_at is null;

create table if not exists organization_members (
  organization_id uuid not null references organizations(id),
  user_id uuid not null references users(id),
  role text not null,
  joined_at timestamptz not null default now(),
  primary key (organization_id, user_id)
);

create table if not exists projects (
  id uuid primary key default gen_random_uuid(),
  organization_id uuid not null references organizations(id),
  slug text not null,
  name text not null,
  description text,
  status text not null default 'active',
  is_favorite boolean not null default false,
  created_by uuid not null references users(id),
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now(),
  deleted_at timestamptz
);

create unique index if not exists projects_org_slug_live_idx
  on projects (organization_id, slug) where deleted_at is null;

create table if not exists project_members (
  project_id uuid not null references projects(id),
  user_id uuid not null references users(id),
  role_id uuid not null,
  added_at timestamptz not null default now(),
  primary key (project_id, user_id)
);

create table if not exists boards (
  id uuid primary key default gen_random_uuid(),
  project_id uuid not null references projects(id),
  name text not null,
  description text,
  position int not null,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create table if not exists board_columns (
  id uuid primary key default gen_random_uuid(),
  board_id uuid not null references boards(id),
  name text not null,
  color text,
  position int not null,
  wip_limit int,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create table if not exists custom_fields (
  id uuid primary key default gen_random_uuid(),
  board_id uuid not null references boards(id),
  name text not null,
  field_type text not null,
  config jsonb,
  required boolean not null default false,
  position int not null,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create table if not exists tasks (
  id uuid primary key default gen_random_uuid(),
  board_id uuid not null references boards(id),
  column_id uuid not null references board_columns(id),
  title text not null,
  description text,
  position int not null,
  created_by uuid not null references users(id),
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);

create table if not exists task_field_values (
  task_id uuid not null references tasks(id),
  field_id uuid not null references custom_fields(id),
  value jsonb not null,
  updated_at timestamptz not null default now(),
  primary key (task_id, field_id)
);

create table if not exists comments (
  id uuid primary key default gen_random_uuid(),
  task_id uuid not null references tasks(id),
  author_id uuid not null references users(id),
  body text not null,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

// Open connects to TEST_DB_DSN and makes sure the schema exists. The
// pool is closed when the test finishes. Data is not truncated between
// tests; callers keep rows disjoint with per-test slugs and subjects.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping postgres integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pool.Ping(ctx))

	_, err = pool.Exec(ctx, schema)
	require.NoError(t, err, "apply test schema")

	t.Cleanup(pool.Close)
	return pool
}

// OpenSQL opens the same database over database/sql and lib/pq, for
// tests that seed and inspect rows without going through a repository.
func OpenSQL(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())

	_, err = db.Exec(schema)
	require.NoError(t, err, "apply test schema")

	t.Cleanup(func() { _ = db.Close() })
	return db
}
