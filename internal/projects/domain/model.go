// Package domain holds the project model. Permission decisions live in
// the organizations domain; projects only carry the data.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"organizationId"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	IsFavorite  bool      `json:"isFavorite"`
	CreatedBy   uuid.UUID `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member ties a user to a project. RoleID references a per-project role
// row seeded elsewhere; this package never interprets it.
type Member struct {
	ProjectID uuid.UUID `json:"projectId"`
	UserID    uuid.UUID `json:"userId"`
	RoleID    uuid.UUID `json:"roleId"`
	AddedAt   time.Time `json:"addedAt"`
}

// MemberInfo is a membership row joined with the user profile.
type MemberInfo struct {
	Member
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

const (
	NameMaxLen        = 120
	DescriptionMaxLen = 2000
)
