package customfields

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

// FieldType enumerates the value shapes a custom field can carry.
type FieldType string

const (
	TypeText     FieldType = "text"
	TypeNumber   FieldType = "number"
	TypeDate     FieldType = "date"
	TypeSelect   FieldType = "select"
	TypeCheckbox FieldType = "checkbox"
)

func (t FieldType) Valid() bool {
	switch t {
	case TypeText, TypeNumber, TypeDate, TypeSelect, TypeCheckbox:
		return true
	}
	return false
}

// Field is a board-scoped custom field definition. Config holds
// type-specific settings, for select fields the option list.
type Field struct {
	ID        uuid.UUID       `json:"id"`
	BoardID   uuid.UUID       `json:"boardId"`
	Name      string          `json:"name"`
	FieldType FieldType       `json:"fieldType"`
	Config    json.RawMessage `json:"config,omitempty"`
	Required  bool            `json:"required"`
	Position  int             `json:"position"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

const NameMaxLen = 120

var (
	ErrNotFound       = apperr.NotFound("FIELD_NOT_FOUND", "custom field not found")
	ErrInvalidName    = apperr.Validation("INVALID_NAME", "name must be 1..120 characters")
	ErrInvalidType    = apperr.Validation("INVALID_FIELD_TYPE", "fieldType must be one of text, number, date, select, checkbox")
	ErrInvalidConfig  = apperr.Validation("INVALID_CONFIG", "config must be a JSON object")
	ErrMissingOptions = apperr.Validation("MISSING_OPTIONS", "select fields need a non-empty config.options list")
)
