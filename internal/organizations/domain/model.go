// Package domain holds the organization model and the membership
// permission rules. Everything here is pure: no storage, no HTTP.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleMember:
		return true
	}
	return false
}

func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	}
	return 0
}

// AtLeast reports whether r grants everything min grants.
func (r Role) AtLeast(min Role) bool {
	return r.rank() >= min.rank()
}

type Organization struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	// InviteCode is only disclosed to admins, handlers attach it
	// explicitly where allowed.
	InviteCode string    `json:"-"`
	CreatedBy  uuid.UUID `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Member struct {
	OrgID    uuid.UUID `json:"orgId"`
	UserID   uuid.UUID `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

// MemberInfo is a membership row joined with the user profile, used by
// member listings.
type MemberInfo struct {
	Member
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// OrgWithRole is an organization seen through one user's membership.
type OrgWithRole struct {
	Organization
	Role Role `json:"role"`
}

const (
	NameMaxLen        = 120
	DescriptionMaxLen = 2000
)
