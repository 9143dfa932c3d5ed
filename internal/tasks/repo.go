package tasks

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

const taskColumns = `id, board_id, column_id, title, coalesce(description,''), position, created_by, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.BoardID, &t.ColumnID, &t.Title, &t.Description, &t.Position, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts the task. Position 0 means append after the column's
// current last task.
func (r *Repo) Create(ctx context.Context, t *Task) error {
	const q = `
insert into tasks (board_id, column_id, title, description, position, created_by)
values ($1, $2, $3, $4,
        case when $5::int > 0 then $5::int
             else (select coalesce(max(position), 0) + 1 from tasks where column_id = $2) end,
        $6)
returning id, position, created_at, updated_at;
`
	err := r.db.QueryRow(ctx, q, t.BoardID, t.ColumnID, t.Title, t.Description, t.Position, t.CreatedBy).
		Scan(&t.ID, &t.Position, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *Repo) ByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	const q = `
select ` + taskColumns + `
from tasks
where id = $1;
`
	t, err := scanTask(r.db.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// ListByBoard returns the board's tasks grouped by column in board
// order, then by task position within the column.
func (r *Repo) ListByBoard(ctx context.Context, boardID uuid.UUID) ([]Task, error) {
	const q = `
select t.id, t.board_id, t.column_id, t.title, coalesce(t.description,''), t.position, t.created_by, t.created_at, t.updated_at
from tasks t
join board_columns c on c.id = t.column_id
where t.board_id = $1
order by c.position asc, t.position asc, t.created_at asc;
`
	rows, err := r.db.Query(ctx, q, boardID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	out := make([]Task, 0, 16)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *Repo) Update(ctx context.Context, id uuid.UUID, title, description *string) (*Task, error) {
	const q = `
update tasks
set title = coalesce($2, title),
    description = coalesce($3, description),
    updated_at = now()
where id = $1
returning ` + taskColumns + `;
`
	t, err := scanTask(r.db.QueryRow(ctx, q, id, title, description))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

// Move reassigns the task's column. Position 0 appends after the target
// column's current last task; the max excludes the moving task so a
// same-column move does not push it past itself.
func (r *Repo) Move(ctx context.Context, id, columnID uuid.UUID, position int) (*Task, error) {
	const q = `
update tasks
set column_id = $2,
    position = case when $3::int > 0 then $3::int
                    else (select coalesce(max(position), 0) + 1 from tasks where column_id = $2 and id <> $1) end,
    updated_at = now()
where id = $1
returning ` + taskColumns + `;
`
	t, err := scanTask(r.db.QueryRow(ctx, q, id, columnID, position))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}
	return t, nil
}

// Delete removes the task with its field values and comments in one
// transaction.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete task: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `delete from task_field_values where task_id = $1;`, id); err != nil {
		return fmt.Errorf("delete task values: %w", err)
	}
	if _, err := tx.Exec(ctx, `delete from comments where task_id = $1;`, id); err != nil {
		return fmt.Errorf("delete task comments: %w", err)
	}

	ct, err := tx.Exec(ctx, `delete from tasks where id = $1;`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return tx.Commit(ctx)
}

// SetFieldValue upserts one field value on the task.
func (r *Repo) SetFieldValue(ctx context.Context, taskID, fieldID uuid.UUID, value json.RawMessage) (*FieldValue, error) {
	const q = `
insert into task_field_values (task_id, field_id, value, updated_at)
values ($1, $2, $3::jsonb, now())
on conflict (task_id, field_id)
do update set value = excluded.value, updated_at = now()
returning updated_at;
`
	fv := &FieldValue{TaskID: taskID, FieldID: fieldID, Value: value}
	if err := r.db.QueryRow(ctx, q, taskID, fieldID, string(value)).Scan(&fv.UpdatedAt); err != nil {
		return nil, fmt.Errorf("set field value: %w", err)
	}
	return fv, nil
}

func (r *Repo) ListFieldValues(ctx context.Context, taskID uuid.UUID) ([]FieldValue, error) {
	const q = `
select task_id, field_id, value::text, updated_at
from task_field_values
where task_id = $1;
`
	rows, err := r.db.Query(ctx, q, taskID)
	if err != nil {
		return nil, fmt.Errorf("list field values: %w", err)
	}
	defer rows.Close()

	out := make([]FieldValue, 0, 4)
	for rows.Next() {
		var fv FieldValue
		var valueText string
		if err := rows.Scan(&fv.TaskID, &fv.FieldID, &valueText, &fv.UpdatedAt); err != nil {
			return nil, err
		}
		fv.Value = json.RawMessage(valueText)
		out = append(out, fv)
	}
	return out, rows.Err()
}
