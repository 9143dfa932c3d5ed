package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
	"github.com/taskhive/taskhive-backend/internal/projects/domain"
)

// fakeOrgs implements OrgGate over a role table, running callers
// through the real permission rule.
type fakeOrgs struct {
	bySlug map[string]*orgdomain.Organization
	roles  map[uuid.UUID]map[uuid.UUID]orgdomain.Role
}

func newFakeOrgs() *fakeOrgs {
	return &fakeOrgs{
		bySlug: make(map[string]*orgdomain.Organization),
		roles:  make(map[uuid.UUID]map[uuid.UUID]orgdomain.Role),
	}
}

func (f *fakeOrgs) addOrg(slug string, creator uuid.UUID) *orgdomain.Organization {
	org := &orgdomain.Organization{ID: uuid.New(), Name: slug, Slug: slug, CreatedBy: creator}
	f.bySlug[slug] = org
	f.roles[org.ID] = map[uuid.UUID]orgdomain.Role{creator: orgdomain.RoleOwner}
	return org
}

func (f *fakeOrgs) addRole(orgID, userID uuid.UUID, role orgdomain.Role) {
	f.roles[orgID][userID] = role
}

func (f *fakeOrgs) decide(org *orgdomain.Organization, userID uuid.UUID, action orgdomain.Action) (orgdomain.Role, error) {
	var m *orgdomain.Member
	role, ok := f.roles[org.ID][userID]
	if ok {
		m = &orgdomain.Member{OrgID: org.ID, UserID: userID, Role: role}
	}
	if err := orgdomain.Decide(org, m, action); err != nil {
		return "", err
	}
	return role, nil
}

func (f *fakeOrgs) ResolveMember(_ context.Context, userID uuid.UUID, slug string, action orgdomain.Action) (*orgdomain.Organization, orgdomain.Role, error) {
	org, ok := f.bySlug[slug]
	if !ok {
		return nil, "", orgdomain.ErrNotFound
	}
	role, err := f.decide(org, userID, action)
	if err != nil {
		return nil, "", err
	}
	return org, role, nil
}

func (f *fakeOrgs) RequireMember(_ context.Context, orgID, userID uuid.UUID, action orgdomain.Action) (orgdomain.Role, error) {
	for _, org := range f.bySlug {
		if org.ID == orgID {
			return f.decide(org, userID, action)
		}
	}
	return "", orgdomain.ErrNotFound
}

// fakeRepo is an in-memory Repo with the same conflict semantics as the
// postgres implementation.
type fakeRepo struct {
	projects map[uuid.UUID]*domain.Project
	members  map[uuid.UUID]map[uuid.UUID]*domain.Member
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		projects: make(map[uuid.UUID]*domain.Project),
		members:  make(map[uuid.UUID]map[uuid.UUID]*domain.Member),
	}
}

func (f *fakeRepo) Create(_ context.Context, p *domain.Project) error {
	for _, existing := range f.projects {
		if existing.OrgID == p.OrgID && existing.Slug == p.Slug {
			return domain.ErrSlugTaken
		}
	}
	p.ID = uuid.New()
	p.Status = domain.StatusActive
	f.projects[p.ID] = p
	return nil
}

func (f *fakeRepo) ByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	if p, ok := f.projects[id]; ok {
		return p, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRepo) ListByOrg(_ context.Context, orgID uuid.UUID) ([]domain.Project, error) {
	out := make([]domain.Project, 0, 4)
	for _, p := range f.projects {
		if p.OrgID == orgID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) CountLive(_ context.Context, orgID uuid.UUID) (int, error) {
	n := 0
	for _, p := range f.projects {
		if p.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) Update(_ context.Context, id uuid.UUID, name, description *string, favorite *bool) (*domain.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if name != nil {
		p.Name = *name
	}
	if description != nil {
		p.Description = *description
	}
	if favorite != nil {
		p.IsFavorite = *favorite
	}
	return p, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, from, to domain.Status) (bool, error) {
	p, ok := f.projects[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	return true, nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.projects[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeRepo) AddMember(_ context.Context, m *domain.Member) error {
	if _, ok := f.members[m.ProjectID][m.UserID]; ok {
		return domain.ErrMemberExists
	}
	if f.members[m.ProjectID] == nil {
		f.members[m.ProjectID] = make(map[uuid.UUID]*domain.Member)
	}
	f.members[m.ProjectID][m.UserID] = m
	return nil
}

func (f *fakeRepo) RemoveMember(_ context.Context, projectID, userID uuid.UUID) (bool, error) {
	if _, ok := f.members[projectID][userID]; !ok {
		return false, nil
	}
	delete(f.members[projectID], userID)
	return true, nil
}

func (f *fakeRepo) UpdateMemberRole(_ context.Context, projectID, userID, roleID uuid.UUID) (bool, error) {
	m, ok := f.members[projectID][userID]
	if !ok {
		return false, nil
	}
	m.RoleID = roleID
	return true, nil
}

func (f *fakeRepo) ListMembers(_ context.Context, projectID uuid.UUID) ([]domain.MemberInfo, error) {
	out := make([]domain.MemberInfo, 0, len(f.members[projectID]))
	for _, m := range f.members[projectID] {
		out = append(out, domain.MemberInfo{Member: *m})
	}
	return out, nil
}

type fixture struct {
	svc    *Service
	repo   *fakeRepo
	orgs   *fakeOrgs
	org    *orgdomain.Organization
	owner  uuid.UUID
	member uuid.UUID
}

func newFixture(t *testing.T, maxPerOrg int) *fixture {
	t.Helper()
	owner := uuid.New()
	member := uuid.New()
	orgs := newFakeOrgs()
	org := orgs.addOrg("acme", owner)
	orgs.addRole(org.ID, member, orgdomain.RoleMember)
	repo := newFakeRepo()
	return &fixture{
		svc:    New(repo, orgs, maxPerOrg),
		repo:   repo,
		orgs:   orgs,
		org:    org,
		owner:  owner,
		member: member,
	}
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("any member may create, slug derived from name", func(t *testing.T) {
		fx := newFixture(t, 0)

		p, err := fx.svc.Create(ctx, fx.member, "acme", CreateInput{Name: "Website Redesign"})
		require.NoError(t, err)
		assert.Equal(t, "website-redesign", p.Slug)
		assert.Equal(t, domain.StatusActive, p.Status)
		assert.Equal(t, fx.org.ID, p.OrgID)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		fx := newFixture(t, 0)

		_, err := fx.svc.Create(ctx, uuid.New(), "acme", CreateInput{Name: "Sneaky"})
		assert.ErrorIs(t, err, orgdomain.ErrNotMember)
	})

	t.Run("explicit slug conflict within the org is 409", func(t *testing.T) {
		fx := newFixture(t, 0)

		_, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "One", Slug: "web"})
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Two", Slug: "web"})
		assert.ErrorIs(t, err, domain.ErrSlugTaken)
	})

	t.Run("same slug in another org is fine", func(t *testing.T) {
		fx := newFixture(t, 0)
		other := fx.orgs.addOrg("globex", fx.owner)

		_, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "One", Slug: "web"})
		require.NoError(t, err)
		p, err := fx.svc.Create(ctx, fx.owner, "globex", CreateInput{Name: "Two", Slug: "web"})
		require.NoError(t, err)
		assert.Equal(t, other.ID, p.OrgID)
	})

	t.Run("derived slug conflict retries with a suffix", func(t *testing.T) {
		fx := newFixture(t, 0)

		_, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Web"})
		require.NoError(t, err)
		p, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Web"})
		require.NoError(t, err)
		assert.Equal(t, "web-2", p.Slug)
	})

	t.Run("project ceiling answers PROJECT_LIMIT", func(t *testing.T) {
		fx := newFixture(t, 2)

		_, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "One"})
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Two"})
		require.NoError(t, err)
		_, err = fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Three"})
		assert.ErrorIs(t, err, domain.ErrProjectLimit)
	})

	t.Run("bad input", func(t *testing.T) {
		fx := newFixture(t, 0)

		_, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "   "})
		assert.ErrorIs(t, err, domain.ErrInvalidName)

		_, err = fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Ok", Slug: "Bad Slug"})
		assert.ErrorIs(t, err, domain.ErrInvalidSlug)
	})
}

func TestArchiveUnarchive(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)

	p, err := fx.svc.Create(ctx, fx.member, "acme", CreateInput{Name: "Web"})
	require.NoError(t, err)

	t.Run("archive flips status once", func(t *testing.T) {
		got, err := fx.svc.Archive(ctx, fx.member, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusArchived, got.Status)
	})

	t.Run("second archive conflicts", func(t *testing.T) {
		_, err := fx.svc.Archive(ctx, fx.member, p.ID)
		assert.ErrorIs(t, err, domain.ErrAlreadyArchived)
	})

	t.Run("unarchive restores", func(t *testing.T) {
		got, err := fx.svc.Unarchive(ctx, fx.member, p.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusActive, got.Status)
	})

	t.Run("unarchiving an active project conflicts", func(t *testing.T) {
		_, err := fx.svc.Unarchive(ctx, fx.member, p.ID)
		assert.ErrorIs(t, err, domain.ErrNotArchived)
	})

	t.Run("unknown project is not found", func(t *testing.T) {
		_, err := fx.svc.Archive(ctx, fx.member, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)

	p, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Web"})
	require.NoError(t, err)

	t.Run("rename and favorite", func(t *testing.T) {
		name := "Website"
		fav := true
		got, err := fx.svc.Update(ctx, fx.member, p.ID, UpdateInput{Name: &name, IsFavorite: &fav})
		require.NoError(t, err)
		assert.Equal(t, "Website", got.Name)
		assert.True(t, got.IsFavorite)
	})

	t.Run("empty patch is a no-op", func(t *testing.T) {
		got, err := fx.svc.Update(ctx, fx.member, p.ID, UpdateInput{})
		require.NoError(t, err)
		assert.Equal(t, "Website", got.Name)
	})

	t.Run("blank name rejected", func(t *testing.T) {
		blank := "  "
		_, err := fx.svc.Update(ctx, fx.member, p.ID, UpdateInput{Name: &blank})
		assert.ErrorIs(t, err, domain.ErrInvalidName)
	})

	t.Run("non-member cannot update", func(t *testing.T) {
		name := "Hijack"
		_, err := fx.svc.Update(ctx, uuid.New(), p.ID, UpdateInput{Name: &name})
		assert.ErrorIs(t, err, orgdomain.ErrNotMember)
	})
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)

	p, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Web"})
	require.NoError(t, err)

	t.Run("plain member cannot delete", func(t *testing.T) {
		err := fx.svc.Delete(ctx, fx.member, p.ID)
		assert.ErrorIs(t, err, orgdomain.ErrForbidden)
	})

	t.Run("admin deletes", func(t *testing.T) {
		fx.orgs.addRole(fx.org.ID, fx.member, orgdomain.RoleAdmin)
		require.NoError(t, fx.svc.Delete(ctx, fx.member, p.ID))

		_, err := fx.svc.Get(ctx, fx.owner, p.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestProjectMembers(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, 0)
	roleID := uuid.New()

	p, err := fx.svc.Create(ctx, fx.owner, "acme", CreateInput{Name: "Web"})
	require.NoError(t, err)

	t.Run("plain member cannot manage", func(t *testing.T) {
		_, err := fx.svc.AddMember(ctx, fx.member, p.ID, uuid.New(), roleID)
		assert.ErrorIs(t, err, orgdomain.ErrForbidden)
	})

	t.Run("admin adds, duplicate conflicts", func(t *testing.T) {
		m, err := fx.svc.AddMember(ctx, fx.owner, p.ID, fx.member, roleID)
		require.NoError(t, err)
		assert.Equal(t, roleID, m.RoleID)

		_, err = fx.svc.AddMember(ctx, fx.owner, p.ID, fx.member, roleID)
		assert.ErrorIs(t, err, domain.ErrMemberExists)
	})

	t.Run("role update and listing", func(t *testing.T) {
		newRole := uuid.New()
		require.NoError(t, fx.svc.UpdateMemberRole(ctx, fx.owner, p.ID, fx.member, newRole))

		members, err := fx.svc.ListMembers(ctx, fx.member, p.ID)
		require.NoError(t, err)
		require.Len(t, members, 1)
		assert.Equal(t, newRole, members[0].RoleID)
	})

	t.Run("removing an unknown member is not found", func(t *testing.T) {
		err := fx.svc.RemoveMember(ctx, fx.owner, p.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrMemberNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, fx.svc.RemoveMember(ctx, fx.owner, p.ID, fx.member))

		members, err := fx.svc.ListMembers(ctx, fx.owner, p.ID)
		require.NoError(t, err)
		assert.Empty(t, members)
	})
}
