package tasks

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

type Task struct {
	ID          uuid.UUID `json:"id"`
	BoardID     uuid.UUID `json:"boardId"`
	ColumnID    uuid.UUID `json:"columnId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Position    int       `json:"position"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FieldValue is one custom field value on a task.
type FieldValue struct {
	TaskID    uuid.UUID       `json:"taskId"`
	FieldID   uuid.UUID       `json:"fieldId"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

const (
	TitleMaxLen       = 200
	DescriptionMaxLen = 4000
)

var (
	ErrNotFound           = apperr.NotFound("TASK_NOT_FOUND", "task not found")
	ErrInvalidTitle       = apperr.Validation("INVALID_TITLE", "title must be 1..200 characters")
	ErrInvalidDescription = apperr.Validation("INVALID_DESCRIPTION", "description is too long")
	ErrColumnMismatch     = apperr.Validation("COLUMN_NOT_ON_BOARD", "column does not belong to the board")
	ErrFieldMismatch      = apperr.Validation("FIELD_NOT_ON_BOARD", "field does not belong to the task's board")
	ErrInvalidValue       = apperr.Validation("INVALID_FIELD_VALUE", "value does not match the field type")
	ErrValueRequired      = apperr.Validation("VALUE_REQUIRED", "field is required and cannot be cleared")
)
