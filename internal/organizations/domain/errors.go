package domain

import (
	"errors"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

var (
	ErrNotFound  = apperr.NotFound("ORG_NOT_FOUND", "organization not found")
	ErrNotMember = apperr.Forbidden("NOT_MEMBER", "you are not a member of this organization")
	ErrForbidden = apperr.Forbidden("FORBIDDEN", "your role does not allow this action")
	ErrOwnerOnly = apperr.Forbidden("OWNER_ONLY", "only the organization creator can do this")
	ErrLastAdmin = apperr.Validation("LAST_ADMIN", "the organization must keep at least one admin or owner")

	ErrInvalidName        = apperr.Validation("INVALID_NAME", "name must be 1-120 characters")
	ErrInvalidDescription = apperr.Validation("INVALID_DESCRIPTION", "description is too long")
	ErrInvalidSlug        = apperr.Validation("INVALID_SLUG", "slug must be lowercase letters, digits and dashes")
	ErrInvalidInviteCode  = apperr.Validation("INVALID_INVITE_CODE", "invite code must be 8 characters")
	ErrInvalidRole        = apperr.Validation("INVALID_ROLE", "role must be admin or member")
	ErrNameMismatch       = apperr.Validation("NAME_MISMATCH", "confirmation name does not match the organization name")
	ErrOwnerCannotLeave   = apperr.Validation("OWNER_CANNOT_LEAVE", "the creator cannot leave, delete the organization instead")
	ErrCannotRemoveOwner  = apperr.Validation("CANNOT_REMOVE_OWNER", "the creator cannot be removed")
	ErrCannotChangeOwner  = apperr.Validation("CANNOT_CHANGE_OWNER_ROLE", "the creator's role cannot be changed")

	ErrSlugTaken      = apperr.Conflict("SLUG_TAKEN", "an organization with this slug already exists")
	ErrAlreadyMember  = apperr.Conflict("ALREADY_MEMBER", "you are already a member of this organization")
	ErrInviteNotFound = apperr.NotFound("INVITE_NOT_FOUND", "no organization matches that slug and invite code")
	ErrMemberNotFound = apperr.NotFound("MEMBER_NOT_FOUND", "member not found")
)

// ErrInviteCodeCollision is internal: the generated code hit the unique
// index and the caller should mint a new one and retry.
var ErrInviteCodeCollision = errors.New("invite code collision")
