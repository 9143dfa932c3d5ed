package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
	orgrepo "github.com/taskhive/taskhive-backend/internal/organizations/repository"
	"github.com/taskhive/taskhive-backend/internal/pgtest"
	"github.com/taskhive/taskhive-backend/internal/projects/domain"
)

func seedOrg(t *testing.T, db *pgxpool.Pool) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	var user uuid.UUID
	subject := "test|" + uuid.NewString()
	err := db.QueryRow(ctx,
		`insert into users (subject, email) values ($1, $2) returning id;`,
		subject, subject+"@example.com").Scan(&user)
	require.NoError(t, err)

	code, err := orgdomain.NewInviteCode()
	require.NoError(t, err)
	org := &orgdomain.Organization{
		Name:       "Workshop",
		Slug:       "workshop-" + uuid.NewString()[:8],
		InviteCode: code,
		CreatedBy:  user,
	}
	require.NoError(t, orgrepo.NewRepo(db).CreateWithOwner(ctx, org))
	return org.ID, user
}

func TestProjectSlugScope(t *testing.T) {
	db := pgtest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	orgA, userA := seedOrg(t, db)
	orgB, userB := seedOrg(t, db)

	site := &domain.Project{OrgID: orgA, Slug: "site", Name: "Site", CreatedBy: userA}
	require.NoError(t, repo.Create(ctx, site))
	assert.Equal(t, domain.StatusActive, site.Status)

	t.Run("slug is taken within the organization", func(t *testing.T) {
		dup := &domain.Project{OrgID: orgA, Slug: "site", Name: "Site again", CreatedBy: userA}
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, domain.ErrSlugTaken)
	})

	t.Run("another organization may use the same slug", func(t *testing.T) {
		other := &domain.Project{OrgID: orgB, Slug: "site", Name: "Their site", CreatedBy: userB}
		assert.NoError(t, repo.Create(ctx, other))
	})

	t.Run("soft delete frees the slug", func(t *testing.T) {
		require.NoError(t, repo.SoftDelete(ctx, site.ID))

		_, err := repo.ByID(ctx, site.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		again := &domain.Project{OrgID: orgA, Slug: "site", Name: "Site v2", CreatedBy: userA}
		assert.NoError(t, repo.Create(ctx, again))
	})
}

func TestProjectStatusTransitions(t *testing.T) {
	db := pgtest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	orgID, userID := seedOrg(t, db)
	p := &domain.Project{OrgID: orgID, Slug: "app", Name: "App", CreatedBy: userID}
	require.NoError(t, repo.Create(ctx, p))

	ok, err := repo.SetStatus(ctx, p.ID, domain.StatusActive, domain.StatusArchived)
	require.NoError(t, err)
	assert.True(t, ok)

	// Exactly one of two concurrent archive calls can flip the row.
	ok, err = repo.SetStatus(ctx, p.ID, domain.StatusActive, domain.StatusArchived)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.SetStatus(ctx, p.ID, domain.StatusArchived, domain.StatusActive)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := repo.ByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
}

func TestProjectCountAndListing(t *testing.T) {
	db := pgtest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	orgID, userID := seedOrg(t, db)
	keep := &domain.Project{OrgID: orgID, Slug: "keep", Name: "Keep", CreatedBy: userID}
	drop := &domain.Project{OrgID: orgID, Slug: "drop", Name: "Drop", CreatedBy: userID}
	require.NoError(t, repo.Create(ctx, keep))
	require.NoError(t, repo.Create(ctx, drop))
	require.NoError(t, repo.SoftDelete(ctx, drop.ID))

	n, err := repo.CountLive(ctx, orgID)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "the project ceiling only counts live rows")

	list, err := repo.ListByOrg(ctx, orgID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	fav := true
	got, err := repo.Update(ctx, keep.ID, nil, nil, &fav)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)
	assert.Equal(t, "Keep", got.Name, "nil patch fields stay untouched")
}

func TestProjectMemberRows(t *testing.T) {
	db := pgtest.Open(t)
	repo := NewRepo(db)
	ctx := context.Background()

	orgID, ownerID := seedOrg(t, db)
	p := &domain.Project{OrgID: orgID, Slug: "crew", Name: "Crew", CreatedBy: ownerID}
	require.NoError(t, repo.Create(ctx, p))

	roleID := uuid.New()
	m := &domain.Member{ProjectID: p.ID, UserID: ownerID, RoleID: roleID}
	require.NoError(t, repo.AddMember(ctx, m))
	require.False(t, m.AddedAt.IsZero())

	err := repo.AddMember(ctx, &domain.Member{ProjectID: p.ID, UserID: ownerID, RoleID: roleID})
	assert.ErrorIs(t, err, domain.ErrMemberExists)

	list, err := repo.ListMembers(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, roleID, list[0].RoleID)
	assert.NotEmpty(t, list[0].Email)

	newRole := uuid.New()
	ok, err := repo.UpdateMemberRole(ctx, p.ID, ownerID, newRole)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RemoveMember(ctx, p.ID, ownerID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.RemoveMember(ctx, p.ID, ownerID)
	require.NoError(t, err)
	assert.False(t, ok)
}
