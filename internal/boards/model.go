// Package boards implements kanban boards and their ordered columns.
// Boards hang off projects; permission checks run through the project
// gate into the organization rule.
package boards

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

type Board struct {
	ID          uuid.UUID `json:"id"`
	ProjectID   uuid.UUID `json:"projectId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Column is one lane on a board. WIPLimit nil means unlimited.
type Column struct {
	ID        uuid.UUID `json:"id"`
	BoardID   uuid.UUID `json:"boardId"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	Position  int       `json:"position"`
	WIPLimit  *int      `json:"wipLimit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	NameMaxLen        = 120
	DescriptionMaxLen = 2000
	ColorMaxLen       = 32
)

var (
	ErrBoardNotFound  = apperr.NotFound("BOARD_NOT_FOUND", "board not found")
	ErrColumnNotFound = apperr.NotFound("COLUMN_NOT_FOUND", "column not found")

	ErrInvalidName     = apperr.Validation("INVALID_NAME", "name must be 1-120 characters")
	ErrInvalidColor    = apperr.Validation("INVALID_COLOR", "color is too long")
	ErrInvalidWIPLimit = apperr.Validation("INVALID_WIP_LIMIT", "wip limit must not be negative")

	ErrBoardHasTasks  = apperr.Conflict("BOARD_HAS_TASKS", "board still has tasks, move or delete them first")
	ErrColumnHasTasks = apperr.Conflict("COLUMN_HAS_TASKS", "column still has tasks, move or delete them first")
)
