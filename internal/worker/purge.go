// Package worker holds the background maintenance jobs. The only job
// today is the retention purge: soft-deleted organizations and
// projects are kept restorable for a window and erased afterwards.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Purger struct {
	db        *pgxpool.Pool
	logger    *zap.Logger
	retention time.Duration
}

func NewPurger(db *pgxpool.Pool, logger *zap.Logger, retentionDays int) *Purger {
	return &Purger{
		db:        db,
		logger:    logger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
	}
}

// projectPurgeChain erases everything under projects soft-deleted
// before the cutoff, children first so no delete trips a foreign key.
var projectPurgeChain = []string{
	`delete from task_field_values where task_id in (
  select t.id from tasks t
  join boards b on b.id = t.board_id
  join projects p on p.id = b.project_id
  where p.deleted_at is not null and p.deleted_at < $1);`,
	`delete from comments where task_id in (
  select t.id from tasks t
  join boards b on b.id = t.board_id
  join projects p on p.id = b.project_id
  where p.deleted_at is not null and p.deleted_at < $1);`,
	`delete from tasks where board_id in (
  select b.id from boards b
  join projects p on p.id = b.project_id
  where p.deleted_at is not null and p.deleted_at < $1);`,
	`delete from custom_fields where board_id in (
  select b.id from boards b
  join projects p on p.id = b.project_id
  where p.deleted_at is not null and p.deleted_at < $1);`,
	`delete from board_columns where board_id in (
  select b.id from boards b
  join projects p on p.id = b.project_id
  where p.deleted_at is not null and p.deleted_at < $1);`,
	`delete from boards where project_id in (
  select id from projects where deleted_at is not null and deleted_at < $1);`,
	`delete from project_members where project_id in (
  select id from projects where deleted_at is not null and deleted_at < $1);`,
}

const projectPurgeFinal = `delete from projects where deleted_at is not null and deleted_at < $1;`

// orgPurgeChain erases doomed organizations with every project under
// them, soft-deleted or not.
var orgPurgeChain = []string{
	`delete from task_field_values where task_id in (
  select t.id from tasks t
  join boards b on b.id = t.board_id
  join projects p on p.id = b.project_id
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from comments where task_id in (
  select t.id from tasks t
  join boards b on b.id = t.board_id
  join projects p on p.id = b.project_id
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from tasks where board_id in (
  select b.id from boards b
  join projects p on p.id = b.project_id
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from custom_fields where board_id in (
  select b.id from boards b
  join projects p on p.id = b.project_id
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from board_columns where board_id in (
  select b.id from boards b
  join projects p on p.id = b.project_id
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from boards where project_id in (
  select p.id from projects p
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from project_members where project_id in (
  select p.id from projects p
  join organizations o on o.id = p.organization_id
  where o.deleted_at is not null and o.deleted_at < $1);`,
	`delete from projects where organization_id in (
  select id from organizations where deleted_at is not null and deleted_at < $1);`,
	`delete from organization_members where organization_id in (
  select id from organizations where deleted_at is not null and deleted_at < $1);`,
}

const orgPurgeFinal = `delete from organizations where deleted_at is not null and deleted_at < $1;`

// Run erases everything soft-deleted before the retention cutoff.
func (p *Purger) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-p.retention)

	projects, err := p.purge(ctx, projectPurgeChain, projectPurgeFinal, cutoff)
	if err != nil {
		return fmt.Errorf("purge projects: %w", err)
	}

	orgs, err := p.purge(ctx, orgPurgeChain, orgPurgeFinal, cutoff)
	if err != nil {
		return fmt.Errorf("purge organizations: %w", err)
	}

	p.logger.Info("retention purge finished",
		zap.Time("cutoff", cutoff),
		zap.Int64("projects", projects),
		zap.Int64("organizations", orgs))
	return nil
}

// purge runs the child chain and the final delete in one transaction
// and reports how many top-level rows went away.
func (p *Purger) purge(ctx context.Context, chain []string, final string, cutoff time.Time) (int64, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	for _, q := range chain {
		if _, err := tx.Exec(ctx, q, cutoff); err != nil {
			return 0, err
		}
	}

	ct, err := tx.Exec(ctx, final, cutoff)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
