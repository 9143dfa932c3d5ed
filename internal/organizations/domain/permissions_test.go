package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func member(orgID, userID uuid.UUID, role Role) *Member {
	return &Member{OrgID: orgID, UserID: userID, Role: role}
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleAdmin))
	assert.True(t, RoleOwner.AtLeast(RoleMember))
	assert.True(t, RoleAdmin.AtLeast(RoleMember))
	assert.False(t, RoleMember.AtLeast(RoleAdmin))
	assert.False(t, RoleAdmin.AtLeast(RoleOwner))
	assert.False(t, Role("ghost").AtLeast(RoleMember))
}

func TestDecide(t *testing.T) {
	creator := uuid.New()
	org := &Organization{ID: uuid.New(), CreatedBy: creator}

	t.Run("non members are rejected", func(t *testing.T) {
		err := Decide(org, nil, ActionViewOrg)
		assert.ErrorIs(t, err, ErrNotMember)
	})

	t.Run("member can view but not update", func(t *testing.T) {
		m := member(org.ID, uuid.New(), RoleMember)
		assert.NoError(t, Decide(org, m, ActionViewOrg))
		assert.NoError(t, Decide(org, m, ActionCreateProject))
		assert.ErrorIs(t, Decide(org, m, ActionUpdateOrg), ErrForbidden)
		assert.ErrorIs(t, Decide(org, m, ActionRemoveMember), ErrForbidden)
	})

	t.Run("admin can manage but not delete org", func(t *testing.T) {
		m := member(org.ID, uuid.New(), RoleAdmin)
		assert.NoError(t, Decide(org, m, ActionUpdateOrg))
		assert.NoError(t, Decide(org, m, ActionInviteMember))
		assert.NoError(t, Decide(org, m, ActionUpdateMemberRole))
		assert.ErrorIs(t, Decide(org, m, ActionDeleteOrg), ErrOwnerOnly)
	})

	t.Run("owner role without creatorship cannot delete", func(t *testing.T) {
		m := member(org.ID, uuid.New(), RoleOwner)
		assert.ErrorIs(t, Decide(org, m, ActionDeleteOrg), ErrOwnerOnly)
	})

	t.Run("creator owner can delete", func(t *testing.T) {
		m := member(org.ID, creator, RoleOwner)
		assert.NoError(t, Decide(org, m, ActionDeleteOrg))
	})

	t.Run("unknown action is denied", func(t *testing.T) {
		m := member(org.ID, creator, RoleOwner)
		assert.ErrorIs(t, Decide(org, m, Action("format_disk")), ErrForbidden)
	})
}
