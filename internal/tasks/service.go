package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/boards"
	"github.com/taskhive/taskhive-backend/internal/customfields"
	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
)

type Store interface {
	Create(ctx context.Context, t *Task) error
	ByID(ctx context.Context, id uuid.UUID) (*Task, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]Task, error)
	Update(ctx context.Context, id uuid.UUID, title, description *string) (*Task, error)
	Move(ctx context.Context, id, columnID uuid.UUID, position int) (*Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	SetFieldValue(ctx context.Context, taskID, fieldID uuid.UUID, value json.RawMessage) (*FieldValue, error)
	ListFieldValues(ctx context.Context, taskID uuid.UUID) ([]FieldValue, error)
}

// Boards gates access through the owning board and resolves columns
// for board-membership checks.
type Boards interface {
	RequireBoard(ctx context.Context, boardID, userID uuid.UUID, action orgdomain.Action) (*boards.Board, error)
	LookupColumn(ctx context.Context, columnID uuid.UUID) (*boards.Column, error)
}

// Fields resolves custom field definitions for value validation.
type Fields interface {
	Lookup(ctx context.Context, fieldID uuid.UUID) (*customfields.Field, error)
}

type Service struct {
	store  Store
	boards Boards
	fields Fields
}

func NewService(store Store, boards Boards, fields Fields) *Service {
	return &Service{store: store, boards: boards, fields: fields}
}

type CreateInput struct {
	ColumnID    uuid.UUID
	Title       string
	Description string
	Position    int
}

type Patch struct {
	Title       *string
	Description *string
}

func (s *Service) Create(ctx context.Context, userID, boardID uuid.UUID, in CreateInput) (*Task, error) {
	if _, err := s.boards.RequireBoard(ctx, boardID, userID, orgdomain.ActionManageTasks); err != nil {
		return nil, err
	}

	col, err := s.boards.LookupColumn(ctx, in.ColumnID)
	if err != nil {
		return nil, err
	}
	if col.BoardID != boardID {
		return nil, ErrColumnMismatch
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || len(title) > TitleMaxLen {
		return nil, ErrInvalidTitle
	}
	if len(in.Description) > DescriptionMaxLen {
		return nil, ErrInvalidDescription
	}

	t := &Task{
		BoardID:     boardID,
		ColumnID:    in.ColumnID,
		Title:       title,
		Description: in.Description,
		Position:    in.Position,
		CreatedBy:   userID,
	}
	if err := s.store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) ListByBoard(ctx context.Context, userID, boardID uuid.UUID) ([]Task, error) {
	if _, err := s.boards.RequireBoard(ctx, boardID, userID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return s.store.ListByBoard(ctx, boardID)
}

func (s *Service) Get(ctx context.Context, userID, taskID uuid.UUID) (*Task, []FieldValue, error) {
	t, err := s.require(ctx, taskID, userID, orgdomain.ActionViewProject)
	if err != nil {
		return nil, nil, err
	}
	values, err := s.store.ListFieldValues(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	return t, values, nil
}

func (s *Service) Update(ctx context.Context, userID, taskID uuid.UUID, in Patch) (*Task, error) {
	if _, err := s.require(ctx, taskID, userID, orgdomain.ActionManageTasks); err != nil {
		return nil, err
	}

	if in.Title != nil {
		trimmed := strings.TrimSpace(*in.Title)
		if trimmed == "" || len(trimmed) > TitleMaxLen {
			return nil, ErrInvalidTitle
		}
		in.Title = &trimmed
	}
	if in.Description != nil && len(*in.Description) > DescriptionMaxLen {
		return nil, ErrInvalidDescription
	}

	return s.store.Update(ctx, taskID, in.Title, in.Description)
}

// Move reassigns the task to a column on its own board.
func (s *Service) Move(ctx context.Context, userID, taskID, columnID uuid.UUID, position int) (*Task, error) {
	t, err := s.require(ctx, taskID, userID, orgdomain.ActionManageTasks)
	if err != nil {
		return nil, err
	}

	col, err := s.boards.LookupColumn(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if col.BoardID != t.BoardID {
		return nil, ErrColumnMismatch
	}

	return s.store.Move(ctx, taskID, columnID, position)
}

func (s *Service) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	if _, err := s.require(ctx, taskID, userID, orgdomain.ActionManageTasks); err != nil {
		return err
	}
	return s.store.Delete(ctx, taskID)
}

// SetFieldValue writes one custom field value after checking the field
// is defined on the task's board and the value fits the field type.
func (s *Service) SetFieldValue(ctx context.Context, userID, taskID, fieldID uuid.UUID, value json.RawMessage) (*FieldValue, error) {
	t, err := s.require(ctx, taskID, userID, orgdomain.ActionManageTasks)
	if err != nil {
		return nil, err
	}

	f, err := s.fields.Lookup(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if f.BoardID != t.BoardID {
		return nil, ErrFieldMismatch
	}
	if err := validateValue(f, value); err != nil {
		return nil, err
	}

	// An absent value clears the field the same way an explicit null does.
	if len(bytes.TrimSpace(value)) == 0 {
		value = jsonNull
	}

	return s.store.SetFieldValue(ctx, taskID, fieldID, value)
}

// RequireTask is the gate the comment feature calls with a task id it
// resolved from its own rows.
func (s *Service) RequireTask(ctx context.Context, taskID, userID uuid.UUID, action orgdomain.Action) (*Task, error) {
	return s.require(ctx, taskID, userID, action)
}

func (s *Service) require(ctx context.Context, taskID, userID uuid.UUID, action orgdomain.Action) (*Task, error) {
	t, err := s.store.ByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if _, err := s.boards.RequireBoard(ctx, t.BoardID, userID, action); err != nil {
		return nil, err
	}
	return t, nil
}

var jsonNull = []byte("null")

// validateValue checks a raw JSON value against the field definition.
// JSON null clears the value and is refused only on required fields.
func validateValue(f *customfields.Field, value json.RawMessage) error {
	if len(value) == 0 || bytes.Equal(bytes.TrimSpace(value), jsonNull) {
		if f.Required {
			return ErrValueRequired
		}
		return nil
	}

	switch f.FieldType {
	case customfields.TypeText:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return ErrInvalidValue
		}
	case customfields.TypeNumber:
		var n float64
		if err := json.Unmarshal(value, &n); err != nil {
			return ErrInvalidValue
		}
	case customfields.TypeCheckbox:
		var b bool
		if err := json.Unmarshal(value, &b); err != nil {
			return ErrInvalidValue
		}
	case customfields.TypeDate:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return ErrInvalidValue
		}
		if _, err := time.Parse("2006-01-02", s); err != nil {
			return ErrInvalidValue
		}
	case customfields.TypeSelect:
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return ErrInvalidValue
		}
		var cfg struct {
			Options []string `json:"options"`
		}
		if err := json.Unmarshal(f.Config, &cfg); err != nil {
			return ErrInvalidValue
		}
		for _, opt := range cfg.Options {
			if opt == s {
				return nil
			}
		}
		return ErrInvalidValue
	}
	return nil
}
