package domain

import "github.com/taskhive/taskhive-backend/internal/apperr"

var (
	ErrNotFound       = apperr.NotFound("PROJECT_NOT_FOUND", "project not found")
	ErrMemberNotFound = apperr.NotFound("MEMBER_NOT_FOUND", "project member not found")

	ErrInvalidName        = apperr.Validation("INVALID_NAME", "name must be 1-120 characters")
	ErrInvalidDescription = apperr.Validation("INVALID_DESCRIPTION", "description is too long")
	ErrInvalidSlug        = apperr.Validation("INVALID_SLUG", "slug must be lowercase letters, digits and dashes")

	ErrSlugTaken       = apperr.Conflict("SLUG_TAKEN", "a project with this slug already exists in the organization")
	ErrProjectLimit    = apperr.Conflict("PROJECT_LIMIT", "the organization has reached its project limit")
	ErrAlreadyArchived = apperr.Conflict("ALREADY_ARCHIVED", "project is already archived")
	ErrNotArchived     = apperr.Conflict("NOT_ARCHIVED", "project is not archived")
	ErrMemberExists    = apperr.Conflict("MEMBER_EXISTS", "user is already a member of this project")
)
