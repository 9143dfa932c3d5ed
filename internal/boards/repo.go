package boards

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

const boardColumns = `id, project_id, name, coalesce(description,''), position, created_at, updated_at`

// CreateBoard inserts the board. Position 0 means append after the
// project's current last board.
func (r *Repo) CreateBoard(ctx context.Context, b *Board) error {
	const q = `
insert into boards (project_id, name, description, position)
values ($1, $2, $3,
        case when $4::int > 0 then $4::int
             else (select coalesce(max(position), 0) + 1 from boards where project_id = $1) end)
returning id, position, created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, b.ProjectID, b.Name, b.Description, b.Position).
		Scan(&b.ID, &b.Position, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert board: %w", err)
	}
	return nil
}

func (r *Repo) BoardByID(ctx context.Context, id uuid.UUID) (*Board, error) {
	const q = `
select ` + boardColumns + `
from boards
where id = $1;
`
	var b Board
	err := r.db.QueryRow(ctx, q, id).
		Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.Position, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &b, nil
}

func (r *Repo) ListBoards(ctx context.Context, projectID uuid.UUID) ([]Board, error) {
	const q = `
select ` + boardColumns + `
from boards
where project_id = $1
order by position asc, created_at asc;
`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("list boards: %w", err)
	}
	defer rows.Close()

	out := make([]Board, 0, 8)
	for rows.Next() {
		var b Board
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.Position, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *Repo) UpdateBoard(ctx context.Context, id uuid.UUID, name, description *string, position *int) (*Board, error) {
	const q = `
update boards
set name = coalesce($2, name),
    description = coalesce($3, description),
    position = coalesce($4, position),
    updated_at = now()
where id = $1
returning ` + boardColumns + `;
`
	var b Board
	err := r.db.QueryRow(ctx, q, id, name, description, position).
		Scan(&b.ID, &b.ProjectID, &b.Name, &b.Description, &b.Position, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrBoardNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update board: %w", err)
	}
	return &b, nil
}

// DeleteBoard removes the board with its columns and field definitions,
// but only while no task references it. Every delete carries the task
// guard so a concurrent task insert cannot slip between them.
func (r *Repo) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const guard = `and not exists (select 1 from tasks where board_id = $1)`

	if _, err := tx.Exec(ctx, `delete from custom_fields where board_id = $1 `+guard+`;`, id); err != nil {
		return fmt.Errorf("delete board fields: %w", err)
	}
	if _, err := tx.Exec(ctx, `delete from board_columns where board_id = $1 `+guard+`;`, id); err != nil {
		return fmt.Errorf("delete board columns: %w", err)
	}

	ct, err := tx.Exec(ctx, `delete from boards where id = $1 `+guard+`;`, id)
	if err != nil {
		return fmt.Errorf("delete board: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return tx.Commit(ctx)
	}

	var n int
	const count = `select count(*) from tasks where board_id = $1;`
	if err := r.db.QueryRow(ctx, count, id).Scan(&n); err != nil {
		return fmt.Errorf("count board tasks: %w", err)
	}
	if n > 0 {
		return ErrBoardHasTasks.WithDetails(map[string]any{"tasks": n})
	}
	return ErrBoardNotFound
}

const columnColumns = `id, board_id, name, coalesce(color,''), position, wip_limit, created_at, updated_at`

func (r *Repo) CreateColumn(ctx context.Context, c *Column) error {
	const q = `
insert into board_columns (board_id, name, color, position, wip_limit)
values ($1, $2, $3,
        case when $4::int > 0 then $4::int
             else (select coalesce(max(position), 0) + 1 from board_columns where board_id = $1) end,
        $5)
returning id, position, created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, c.BoardID, c.Name, c.Color, c.Position, c.WIPLimit).
		Scan(&c.ID, &c.Position, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert column: %w", err)
	}
	return nil
}

func (r *Repo) ColumnByID(ctx context.Context, id uuid.UUID) (*Column, error) {
	const q = `
select ` + columnColumns + `
from board_columns
where id = $1;
`
	var c Column
	err := r.db.QueryRow(ctx, q, id).
		Scan(&c.ID, &c.BoardID, &c.Name, &c.Color, &c.Position, &c.WIPLimit, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrColumnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get column: %w", err)
	}
	return &c, nil
}

func (r *Repo) ListColumns(ctx context.Context, boardID uuid.UUID) ([]Column, error) {
	const q = `
select ` + columnColumns + `
from board_columns
where board_id = $1
order by position asc, created_at asc;
`
	rows, err := r.db.Query(ctx, q, boardID)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}
	defer rows.Close()

	out := make([]Column, 0, 8)
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.ID, &c.BoardID, &c.Name, &c.Color, &c.Position, &c.WIPLimit, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateColumn patches the column; clearWIP drops the limit to null and
// wins over wip.
func (r *Repo) UpdateColumn(ctx context.Context, id uuid.UUID, name, color *string, position, wip *int, clearWIP bool) (*Column, error) {
	const q = `
update board_columns
set name = coalesce($2, name),
    color = coalesce($3, color),
    position = coalesce($4, position),
    wip_limit = case when $6::bool then null else coalesce($5, wip_limit) end,
    updated_at = now()
where id = $1
returning ` + columnColumns + `;
`
	var c Column
	err := r.db.QueryRow(ctx, q, id, name, color, position, wip, clearWIP).
		Scan(&c.ID, &c.BoardID, &c.Name, &c.Color, &c.Position, &c.WIPLimit, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrColumnNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update column: %w", err)
	}
	return &c, nil
}

// DeleteColumn refuses while tasks sit in the column, same shape as
// DeleteBoard.
func (r *Repo) DeleteColumn(ctx context.Context, id uuid.UUID) error {
	const q = `
delete from board_columns
where id = $1 and not exists (select 1 from tasks where column_id = $1);
`
	ct, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("delete column: %w", err)
	}
	if ct.RowsAffected() > 0 {
		return nil
	}

	var n int
	const count = `select count(*) from tasks where column_id = $1;`
	if err := r.db.QueryRow(ctx, count, id).Scan(&n); err != nil {
		return fmt.Errorf("count column tasks: %w", err)
	}
	if n > 0 {
		return ErrColumnHasTasks.WithDetails(map[string]any{"tasks": n})
	}
	return ErrColumnNotFound
}
