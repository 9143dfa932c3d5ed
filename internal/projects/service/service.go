// Package service implements the project use cases. Every operation
// resolves the owning organization first and runs the caller through
// the membership permission rule before touching project rows.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
	"github.com/taskhive/taskhive-backend/internal/projects/domain"
)

// Repo is what the service needs from persistence.
type Repo interface {
	Create(ctx context.Context, p *domain.Project) error
	ByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]domain.Project, error)
	CountLive(ctx context.Context, orgID uuid.UUID) (int, error)
	Update(ctx context.Context, id uuid.UUID, name, description *string, favorite *bool) (*domain.Project, error)
	SetStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (bool, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	AddMember(ctx context.Context, m *domain.Member) error
	RemoveMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error)
	UpdateMemberRole(ctx context.Context, projectID, userID, roleID uuid.UUID) (bool, error)
	ListMembers(ctx context.Context, projectID uuid.UUID) ([]domain.MemberInfo, error)
}

// OrgGate is the slice of the organizations service used for membership
// and permission checks.
type OrgGate interface {
	ResolveMember(ctx context.Context, userID uuid.UUID, slug string, action orgdomain.Action) (*orgdomain.Organization, orgdomain.Role, error)
	RequireMember(ctx context.Context, orgID, userID uuid.UUID, action orgdomain.Action) (orgdomain.Role, error)
}

type Service struct {
	repo      Repo
	orgs      OrgGate
	maxPerOrg int // 0 means unlimited
}

func New(repo Repo, orgs OrgGate, maxPerOrg int) *Service {
	return &Service{repo: repo, orgs: orgs, maxPerOrg: maxPerOrg}
}

type CreateInput struct {
	Name        string
	Slug        string
	Description string
}

type UpdateInput struct {
	Name        *string
	Description *string
	IsFavorite  *bool
}

const createAttempts = 5

// Create adds a project to the organization named by slug. Any member
// may create; the per-org ceiling and slug uniqueness answer 409.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, orgSlug string, in CreateInput) (*domain.Project, error) {
	org, _, err := s.orgs.ResolveMember(ctx, userID, orgSlug, orgdomain.ActionCreateProject)
	if err != nil {
		return nil, err
	}

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
		slug = orgdomain.Slugify(name)
	}
	if !orgdomain.ValidSlug(slug) {
		return nil, domain.ErrInvalidSlug
	}

	if s.maxPerOrg > 0 {
		n, err := s.repo.CountLive(ctx, org.ID)
		if err != nil {
			return nil, err
		}
		if n >= s.maxPerOrg {
			return nil, domain.ErrProjectLimit.WithDetails(map[string]any{"limit": s.maxPerOrg})
		}
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		p := &domain.Project{
			OrgID:       org.ID,
			Slug:        slug,
			Name:        name,
			Description: strings.TrimSpace(in.Description),
			CreatedBy:   userID,
		}

		err = s.repo.Create(ctx, p)
		if err == nil {
			return p, nil
		}
		if errors.Is(err, domain.ErrSlugTaken) && derived {
			slug = orgdomain.SuffixSlug(orgdomain.Slugify(name), attempt+2)
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("create project: attempts exhausted")
}

func (s *Service) ListByOrg(ctx context.Context, userID uuid.UUID, orgSlug string) ([]domain.Project, error) {
	org, _, err := s.orgs.ResolveMember(ctx, userID, orgSlug, orgdomain.ActionViewProject)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOrg(ctx, org.ID)
}

func (s *Service) Get(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	p, _, err := s.require(ctx, userID, projectID, orgdomain.ActionViewProject)
	return p, err
}

func (s *Service) Update(ctx context.Context, userID, projectID uuid.UUID, in UpdateInput) (*domain.Project, error) {
	p, _, err := s.require(ctx, userID, projectID, orgdomain.ActionUpdateProject)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > domain.NameMaxLen {
			return nil, domain.ErrInvalidName
		}
		in.Name = &name
	}
	if in.Description != nil && len(*in.Description) > domain.DescriptionMaxLen {
		return nil, domain.ErrInvalidDescription
	}
	if in.Name == nil && in.Description == nil && in.IsFavorite == nil {
		return p, nil
	}

	return s.repo.Update(ctx, projectID, in.Name, in.Description, in.IsFavorite)
}

// Archive moves active→archived. The single-statement transition makes
// a repeat call lose and come back as ALREADY_ARCHIVED.
func (s *Service) Archive(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	return s.transition(ctx, userID, projectID, domain.StatusActive, domain.StatusArchived, domain.ErrAlreadyArchived)
}

// Unarchive moves archived→active; unarchiving an active project is
// NOT_ARCHIVED.
func (s *Service) Unarchive(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	return s.transition(ctx, userID, projectID, domain.StatusArchived, domain.StatusActive, domain.ErrNotArchived)
}

func (s *Service) transition(ctx context.Context, userID, projectID uuid.UUID, from, to domain.Status, conflict error) (*domain.Project, error) {
	if _, _, err := s.require(ctx, userID, projectID, orgdomain.ActionArchiveProject); err != nil {
		return nil, err
	}

	moved, err := s.repo.SetStatus(ctx, projectID, from, to)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, conflict
	}
	return s.repo.ByID(ctx, projectID)
}

func (s *Service) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, _, err := s.require(ctx, userID, projectID, orgdomain.ActionDeleteProject); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, projectID)
}

func (s *Service) AddMember(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) (*domain.Member, error) {
	if _, _, err := s.require(ctx, userID, projectID, orgdomain.ActionManageProjectMember); err != nil {
		return nil, err
	}

	m := &domain.Member{ProjectID: projectID, UserID: targetID, RoleID: roleID}
	if err := s.repo.AddMember(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) RemoveMember(ctx context.Context, userID, projectID, targetID uuid.UUID) error {
	if _, _, err := s.require(ctx, userID, projectID, orgdomain.ActionManageProjectMember); err != nil {
		return err
	}

	removed, err := s.repo.RemoveMember(ctx, projectID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (s *Service) UpdateMemberRole(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) error {
	if _, _, err := s.require(ctx, userID, projectID, orgdomain.ActionManageProjectMember); err != nil {
		return err
	}

	updated, err := s.repo.UpdateMemberRole(ctx, projectID, targetID, roleID)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrMemberNotFound
	}
	return nil
}

func (s *Service) ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]domain.MemberInfo, error) {
	if _, _, err := s.require(ctx, userID, projectID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return s.repo.ListMembers(ctx, projectID)
}

// RequireProject is the gate board and task features call with a
// project id they resolved from their own rows.
func (s *Service) RequireProject(ctx context.Context, projectID, userID uuid.UUID, action orgdomain.Action) (*domain.Project, error) {
	p, _, err := s.require(ctx, userID, projectID, action)
	return p, err
}

// require loads the project and checks the caller's role in its owning
// organization.
func (s *Service) require(ctx context.Context, userID, projectID uuid.UUID, action orgdomain.Action) (*domain.Project, orgdomain.Role, error) {
	p, err := s.repo.ByID(ctx, projectID)
	if err != nil {
		return nil, "", err
	}
	role, err := s.orgs.RequireMember(ctx, p.OrgID, userID, action)
	if err != nil {
		return nil, "", err
	}
	return p, role, nil
}
