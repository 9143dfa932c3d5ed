package comments

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

type Comment struct {
	ID        uuid.UUID `json:"id"`
	TaskID    uuid.UUID `json:"taskId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Info is a comment joined with its author for listings.
type Info struct {
	Comment
	AuthorEmail string `json:"authorEmail"`
	AuthorName  string `json:"authorName,omitempty"`
}

const BodyMaxLen = 4000

var (
	ErrNotFound    = apperr.NotFound("COMMENT_NOT_FOUND", "comment not found")
	ErrInvalidBody = apperr.Validation("INVALID_BODY", "body must be 1..4000 characters")
	ErrNotAuthor   = apperr.Forbidden("NOT_AUTHOR", "only the author may edit this comment")
)
