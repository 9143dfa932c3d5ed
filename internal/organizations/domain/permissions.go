package domain

// Action names an operation gated by organization membership. Child
// resources (projects, boards, tasks) reuse these: their services
// resolve the owning organization and ask the same question.
type Action string

const (
	ActionViewOrg          Action = "view_org"
	ActionUpdateOrg        Action = "update_org"
	ActionDeleteOrg        Action = "delete_org"
	ActionInviteMember     Action = "invite_member"
	ActionRemoveMember     Action = "remove_member"
	ActionUpdateMemberRole Action = "update_member_role"

	ActionCreateProject       Action = "create_project"
	ActionViewProject         Action = "view_project"
	ActionUpdateProject       Action = "update_project"
	ActionArchiveProject      Action = "archive_project"
	ActionDeleteProject       Action = "delete_project"
	ActionManageProjectMember Action = "manage_project_members"
	ActionManageBoard         Action = "manage_board"
	ActionManageFields        Action = "manage_fields"
	ActionManageTasks         Action = "manage_tasks"
	ActionComment             Action = "comment"
	ActionModerateComments    Action = "moderate_comments"
)

// minRoleFor is the static action → minimum role table. Anything not
// listed is denied outright.
var minRoleFor = map[Action]Role{
	ActionViewOrg:          RoleMember,
	ActionUpdateOrg:        RoleAdmin,
	ActionDeleteOrg:        RoleOwner,
	ActionInviteMember:     RoleAdmin,
	ActionRemoveMember:     RoleAdmin,
	ActionUpdateMemberRole: RoleAdmin,

	ActionCreateProject:       RoleMember,
	ActionViewProject:         RoleMember,
	ActionUpdateProject:       RoleMember,
	ActionArchiveProject:      RoleMember,
	ActionDeleteProject:       RoleAdmin,
	ActionManageProjectMember: RoleAdmin,
	ActionManageBoard:         RoleMember,
	ActionManageFields:        RoleMember,
	ActionManageTasks:         RoleMember,
	ActionComment:             RoleMember,
	ActionModerateComments:    RoleAdmin,
}

// Decide applies the permission table for one caller against one
// organization. m == nil means no membership row exists. The decision
// reads only its inputs; LAST_ADMIN needs a member count and is
// enforced by the service on the mutating paths that can violate it.
func Decide(org *Organization, m *Member, action Action) error {
	if m == nil {
		return ErrNotMember
	}

	// Deleting an organization is reserved to its creator, a role of
	// owner alone is not enough.
	if action == ActionDeleteOrg && org.CreatedBy != m.UserID {
		return ErrOwnerOnly
	}

	min, ok := minRoleFor[action]
	if !ok {
		return ErrForbidden
	}
	if !m.Role.AtLeast(min) {
		return ErrForbidden
	}
	return nil
}
