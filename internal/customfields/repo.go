package customfields

import (
	"context"
	"encoding/json"
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

const fieldColumns = `id, board_id, name, field_type, coalesce(config::text, ''), required, position, created_at, updated_at`

func scanField(row pgx.Row) (*Field, error) {
	var f Field
	var configText string
	err := row.Scan(&f.ID, &f.BoardID, &f.Name, &f.FieldType, &configText, &f.Required, &f.Position, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if configText != "" {
		f.Config = json.RawMessage(configText)
	}
	return &f, nil
}

// Create inserts the field. Position 0 means append after the board's
// current last field.
func (r *Repo) Create(ctx context.Context, f *Field) error {
	const q = `
insert into custom_fields (board_id, name, field_type, config, required, position)
values ($1, $2, $3, nullif($4, '')::jsonb, $5,
        case when $6::int > 0 then $6::int
             else (select coalesce(max(position), 0) + 1 from custom_fields where board_id = $1) end)
returning id, position, created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, f.BoardID, f.Name, f.FieldType, string(f.Config), f.Required, f.Position).
		Scan(&f.ID, &f.Position, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert custom field: %w", err)
	}
	return nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*Field, error) {
	const q = `
select ` + fieldColumns + `
from custom_fields
where id = $1;
`
	f, err := scanField(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get custom field: %w", err)
	}
	return f, nil
}

func (r *Repo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]Field, error) {
	const q = `
select ` + fieldColumns + `
from custom_fields
where board_id = $1
order by position asc, created_at asc;
`
	rows, err := r.db.Query(ctx, q, boardID)
	if err != nil {
		return nil, fmt.Errorf("list custom fields: %w", err)
	}
	defer rows.Close()

	out := make([]Field, 0, 8)
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// Update patches the field definition. The field type is fixed at
// creation, existing task values would silently change meaning.
func (r *Repo) Update(ctx context.Context, id uuid.UUID, name *string, config json.RawMessage, required *bool, position *int) (*Field, error) {
	const q = `
update custom_fields
set name = coalesce($2, name),
    config = coalesce(nullif($3, '')::jsonb, config),
    required = coalesce($4, required),
    position = coalesce($5, position),
    updated_at = now()
where id = $1
returning ` + fieldColumns + `;
`
	f, err := scanField(r.db.QueryRow(ctx, q, id, name, string(config), required, position))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update custom field: %w", err)
	}
	return f, nil
}

// Delete removes the field and every task value stored against it in
// one transaction.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete field: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from task_field_values where field_id = $1;`, id); err != nil {
		return fmt.Errorf("delete field values: %w", err)
	}

	ct, err := tx.Exec(ctx, `delete from custom_fields where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete custom field: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}
