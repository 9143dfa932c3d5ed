// Package service implements the organization use cases: lifecycle,
// membership, invites. Every operation follows the same pipeline:
// validate input, fetch the org, fetch the caller's membership, apply
// the permission rule, then mutate. Checks read fresh rows on every
// request; the small window between check and mutation is an accepted
// race (two concurrent leaves can both pass the LAST_ADMIN check).
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/organizations/domain"
)

// Repo is what the service needs from persistence.
type Repo interface {
	CreateWithOwner(ctx context.Context, o *domain.Organization) error
	BySlug(ctx context.Context, slug string) (*domain.Organization, error)
	ByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
	BySlugAndCode(ctx context.Context, slug, code string) (*domain.Organization, error)
	Update(ctx context.Context, id uuid.UUID, name, description *string) (*domain.Organization, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SetInviteCode(ctx context.Context, id uuid.UUID, code string) error
	GetMember(ctx context.Context, orgID, userID uuid.UUID) (*domain.Member, error)
	AddMember(ctx context.Context, m *domain.Member) error
	RemoveMember(ctx context.Context, orgID, userID uuid.UUID) (bool, error)
	UpdateMemberRole(ctx context.Context, orgID, userID uuid.UUID, role domain.Role) (bool, error)
	ListMembers(ctx context.Context, orgID uuid.UUID) ([]domain.MemberInfo, error)
	CountAdmins(ctx context.Context, orgID uuid.UUID) (int, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.OrgWithRole, error)
}

type Service struct {
	repo Repo
}

func New(repo Repo) *Service {
	return &Service{repo: repo}
}

type CreateInput struct {
	Name        string
	Slug        string
	Description string
}

type UpdateInput struct {
	Name        *string
	Description *string
}

// Details is an organization seen through the caller's membership.
type Details struct {
	Org     *domain.Organization
	Role    domain.Role
	IsOwner bool
	IsAdmin bool
}

const createAttempts = 5

// Create inserts the organization plus the creator's owner membership.
// When the slug is omitted it is derived from the name and retried with
// numeric suffixes; an explicitly chosen slug conflicts immediately.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, in CreateInput) (*domain.Organization, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > domain.NameMaxLen {
		return nil, domain.ErrInvalidName
	}
	if len(in.Description) > domain.DescriptionMaxLen {
		return nil, domain.ErrInvalidDescription
	}

	slug := strings.TrimSpace(in.Slug)
	derived := slug == ""
	if derived {
		slug = domain.Slugify(name)
	}
	if !domain.ValidSlug(slug) {
		return nil, domain.ErrInvalidSlug
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := domain.NewInviteCode()
		if err != nil {
			return nil, err
		}

		o := &domain.Organization{
			Name:        name,
			Slug:        slug,
			Description: strings.TrimSpace(in.Description),
			InviteCode:  code,
			CreatedBy:   userID,
		}

		err = s.repo.CreateWithOwner(ctx, o)
		if err == nil {
			return o, nil
		}
		if errors.Is(err, domain.ErrInviteCodeCollision) {
			continue
		}
		if errors.Is(err, domain.ErrSlugTaken) && derived {
			// derived slugs get a numeric suffix and another try
			slug = domain.SuffixSlug(domain.Slugify(name), attempt+2)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("create organization: attempts exhausted")
}

// Details fetches the org and the caller's view of it. Non-members get
// NOT_MEMBER even for orgs they can name by slug.
func (s *Service) Details(ctx context.Context, userID uuid.UUID, slug string) (*Details, error) {
	org, member, err := s.resolve(ctx, userID, slug, domain.ActionViewOrg)
	if err != nil {
		return nil, err
	}

	return &Details{
		Org:     org,
		Role:    member.Role,
		IsOwner: org.CreatedBy == userID,
		IsAdmin: member.Role.AtLeast(domain.RoleAdmin),
	}, nil
}

func (s *Service) Update(ctx context.Context, userID uuid.UUID, slug string, in UpdateInput) (*domain.Organization, error) {
	org, _, err := s.resolve(ctx, userID, slug, domain.ActionUpdateOrg)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" || len(trimmed) > domain.NameMaxLen {
			return nil, domain.ErrInvalidName
		}
		in.Name = &trimmed
	}
	if in.Description != nil && len(*in.Description) > domain.DescriptionMaxLen {
		return nil, domain.ErrInvalidDescription
	}
	if in.Name == nil && in.Description == nil {
		return org, nil
	}

	return s.repo.Update(ctx, org.ID, in.Name, in.Description)
}

// Delete soft-deletes the organization. Only the creator may delete,
// and the request must repeat the organization's exact name, a
// case-sensitive guard against deleting the wrong tenant.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, slug, confirmName string) error {
	org, _, err := s.resolve(ctx, userID, slug, domain.ActionDeleteOrg)
	if err != nil {
		return err
	}

	if confirmName != org.Name {
		return domain.ErrNameMismatch
	}

	return s.repo.SoftDelete(ctx, org.ID)
}

// Join adds the caller as a member when slug and invite code match the
// same organization. A miss never discloses whether the slug exists.
func (s *Service) Join(ctx context.Context, userID uuid.UUID, slug, inviteCode string) (*domain.Member, *domain.Organization, error) {
	code := domain.NormalizeInviteCode(inviteCode)
	if code == "" {
		return nil, nil, domain.ErrInvalidInviteCode
	}

	org, err := s.repo.BySlugAndCode(ctx, strings.TrimSpace(slug), code)
	if err != nil {
		return nil, nil, err
	}

	existing, err := s.repo.GetMember(ctx, org.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, domain.ErrAlreadyMember
	}

	m := &domain.Member{OrgID: org.ID, UserID: userID, Role: domain.RoleMember}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, nil, err
	}
	return m, org, nil
}

// Leave removes the caller's own membership. The creator can never
// leave, and the last admin-or-owner cannot abandon the org.
func (s *Service) Leave(ctx context.Context, userID uuid.UUID, slug string) error {
	org, member, err := s.resolve(ctx, userID, slug, domain.ActionViewOrg)
	if err != nil {
		return err
	}

	if org.CreatedBy == userID {
		return domain.ErrOwnerCannotLeave
	}
	if err := s.guardLastAdmin(ctx, org.ID, member.Role); err != nil {
		return err
	}

	removed, err := s.repo.RemoveMember(ctx, org.ID, userID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrMemberNotFound
	}
	return nil
}

// RemoveMember ejects another member. Self-removal is treated exactly
// like leaving.
func (s *Service) RemoveMember(ctx context.Context, userID uuid.UUID, slug string, targetID uuid.UUID) error {
	if targetID == userID {
		return s.Leave(ctx, userID, slug)
	}

	org, _, err := s.resolve(ctx, userID, slug, domain.ActionRemoveMember)
	if err != nil {
		return err
	}

	target, err := s.repo.GetMember(ctx, org.ID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrMemberNotFound
	}
	if target.UserID == org.CreatedBy {
		return domain.ErrCannotRemoveOwner
	}
	if err := s.guardLastAdmin(ctx, org.ID, target.Role); err != nil {
		return err
	}

	removed, err := s.repo.RemoveMember(ctx, org.ID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrMemberNotFound
	}
	return nil
}

// UpdateMemberRole grants admin or demotes to member. Owner is not a
// grantable role and the creator's row is untouchable.
func (s *Service) UpdateMemberRole(ctx context.Context, userID uuid.UUID, slug string, targetID uuid.UUID, role domain.Role) error {
	if role != domain.RoleAdmin && role != domain.RoleMember {
		return domain.ErrInvalidRole
	}

	org, _, err := s.resolve(ctx, userID, slug, domain.ActionUpdateMemberRole)
	if err != nil {
		return err
	}

	target, err := s.repo.GetMember(ctx, org.ID, targetID)
	if err != nil {
		return err
	}
	if target == nil {
		return domain.ErrMemberNotFound
	}
	if target.UserID == org.CreatedBy {
		return domain.ErrCannotChangeOwner
	}
	if role == domain.RoleMember {
		// demotion counts against the admin floor
		if err := s.guardLastAdmin(ctx, org.ID, target.Role); err != nil {
			return err
		}
	}

	updated, err := s.repo.UpdateMemberRole(ctx, org.ID, targetID, role)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, userID uuid.UUID, slug string) ([]domain.MemberInfo, error) {
	org, _, err := s.resolve(ctx, userID, slug, domain.ActionViewOrg)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, org.ID)
}

// RegenerateInviteCode replaces the code, invalidating the old one for
// future joins.
func (s *Service) RegenerateInviteCode(ctx context.Context, userID uuid.UUID, slug string) (string, error) {
	org, _, err := s.resolve(ctx, userID, slug, domain.ActionInviteMember)
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		code, err := domain.NewInviteCode()
		if err != nil {
			return "", err
		}
		err = s.repo.SetInviteCode(ctx, org.ID, code)
		if err == nil {
			return code, nil
		}
		if errors.Is(err, domain.ErrInviteCodeCollision) {
			continue
		}
		return "", err
	}
	return "", fmt.Errorf("regenerate invite code: attempts exhausted")
}

func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]domain.OrgWithRole, error) {
	return s.repo.ListByUser(ctx, userID)
}

// RequireMember is the gate child features (projects, boards, tasks)
// call with the org id they resolved from their own rows. It returns
// the caller's role for handlers that shape responses by it.
func (s *Service) RequireMember(ctx context.Context, orgID, userID uuid.UUID, action domain.Action) (domain.Role, error) {
	org, err := s.repo.ByID(ctx, orgID)
	if err != nil {
		return "", err
	}
	member, err := s.repo.GetMember(ctx, org.ID, userID)
	if err != nil {
		return "", err
	}
	if err := domain.Decide(org, member, action); err != nil {
		return "", err
	}
	return member.Role, nil
}

// ResolveMember is the slug-addressed variant of RequireMember, for
// features nested under /orgs/:slug that still need the org row.
func (s *Service) ResolveMember(ctx context.Context, userID uuid.UUID, slug string, action domain.Action) (*domain.Organization, domain.Role, error) {
	org, member, err := s.resolve(ctx, userID, slug, action)
	if err != nil {
		return nil, "", err
	}
	return org, member.Role, nil
}

// resolve is the shared org-by-slug + membership + permission prefix of
// almost every operation.
func (s *Service) resolve(ctx context.Context, userID uuid.UUID, slug string, action domain.Action) (*domain.Organization, *domain.Member, error) {
	org, err := s.repo.BySlug(ctx, strings.TrimSpace(slug))
	if err != nil {
		return nil, nil, err
	}

	member, err := s.repo.GetMember(ctx, org.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	if err := domain.Decide(org, member, action); err != nil {
		return nil, nil, err
	}
	return org, member, nil
}

// guardLastAdmin rejects removing or demoting the organization's only
// admin-or-owner.
func (s *Service) guardLastAdmin(ctx context.Context, orgID uuid.UUID, role domain.Role) error {
	if !role.AtLeast(domain.RoleAdmin) {
		return nil
	}
	n, err := s.repo.CountAdmins(ctx, orgID)
	if err != nil {
		return err
	}
	if n <= 1 {
		return domain.ErrLastAdmin
	}
	return nil
}
