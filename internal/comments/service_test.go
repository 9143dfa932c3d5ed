package comments

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
	"github.com/taskhive/taskhive-backend/internal/tasks"
)

type fakeTasks struct {
	org   *orgdomain.Organization
	tasks map[uuid.UUID]*tasks.Task
	roles map[uuid.UUID]orgdomain.Role
}

func newFakeTasks() *fakeTasks {
	return &fakeTasks{
		org:   &orgdomain.Organization{ID: uuid.New(), CreatedBy: uuid.New()},
		tasks: make(map[uuid.UUID]*tasks.Task),
		roles: make(map[uuid.UUID]orgdomain.Role),
	}
}

func (f *fakeTasks) addTask() *tasks.Task {
	t := &tasks.Task{ID: uuid.New(), BoardID: uuid.New()}
	f.tasks[t.ID] = t
	return t
}

func (f *fakeTasks) RequireTask(_ context.Context, taskID, userID uuid.UUID, action orgdomain.Action) (*tasks.Task, error) {
	t, ok := f.tasks[taskID]
	if !ok {
		return nil, tasks.ErrNotFound
	}
	var m *orgdomain.Member
	if role, ok := f.roles[userID]; ok {
		m = &orgdomain.Member{OrgID: f.org.ID, UserID: userID, Role: role}
	}
	if err := orgdomain.Decide(f.org, m, action); err != nil {
		return nil, err
	}
	return t, nil
}

type fakeStore struct {
	order    []uuid.UUID
	comments map[uuid.UUID]*Comment
}

func newFakeStore() *fakeStore {
	return &fakeStore{comments: make(map[uuid.UUID]*Comment)}
}

func (f *fakeStore) Create(_ context.Context, c *Comment) error {
	c.ID = uuid.New()
	f.comments[c.ID] = c
	f.order = append(f.order, c.ID)
	return nil
}

func (f *fakeStore) ByID(_ context.Context, id uuid.UUID) (*Comment, error) {
	if c, ok := f.comments[id]; ok {
		return c, nil
	}
	return nil, ErrNotFound
}

func (f *fakeStore) ListByTask(_ context.Context, taskID uuid.UUID) ([]Info, error) {
	out := make([]Info, 0, len(f.order))
	for _, id := range f.order {
		c, ok := f.comments[id]
		if !ok || c.TaskID != taskID {
			continue
		}
		out = append(out, Info{Comment: *c, AuthorEmail: "user@example.com"})
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, id uuid.UUID, body string) (*Comment, error) {
	c, ok := f.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	c.Body = body
	return c, nil
}

func (f *fakeStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.comments[id]; !ok {
		return ErrNotFound
	}
	delete(f.comments, id)
	return nil
}

type fixture struct {
	svc    *Service
	store  *fakeStore
	gate   *fakeTasks
	task   *tasks.Task
	author uuid.UUID
	other  uuid.UUID
	admin  uuid.UUID
}

func newFixture() *fixture {
	gate := newFakeTasks()
	store := newFakeStore()
	author := uuid.New()
	other := uuid.New()
	admin := uuid.New()
	gate.roles[author] = orgdomain.RoleMember
	gate.roles[other] = orgdomain.RoleMember
	gate.roles[admin] = orgdomain.RoleAdmin
	return &fixture{
		svc:    NewService(store, gate),
		store:  store,
		gate:   gate,
		task:   gate.addTask(),
		author: author,
		other:  other,
		admin:  admin,
	}
}

func TestCreateComment(t *testing.T) {
	ctx := context.Background()

	t.Run("members comment", func(t *testing.T) {
		fx := newFixture()

		c, err := fx.svc.Create(ctx, fx.author, fx.task.ID, "  looks good  ")
		require.NoError(t, err)
		assert.Equal(t, "looks good", c.Body)
		assert.Equal(t, fx.author, c.AuthorID)
	})

	t.Run("outsiders cannot", func(t *testing.T) {
		fx := newFixture()

		_, err := fx.svc.Create(ctx, uuid.New(), fx.task.ID, "hi")
		assert.ErrorIs(t, err, orgdomain.ErrNotMember)
	})

	t.Run("blank body rejected", func(t *testing.T) {
		fx := newFixture()

		_, err := fx.svc.Create(ctx, fx.author, fx.task.ID, "   ")
		assert.ErrorIs(t, err, ErrInvalidBody)
	})

	t.Run("unknown task is not found", func(t *testing.T) {
		fx := newFixture()

		_, err := fx.svc.Create(ctx, fx.author, uuid.New(), "hi")
		assert.ErrorIs(t, err, tasks.ErrNotFound)
	})
}

func TestUpdateComment(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	c, err := fx.svc.Create(ctx, fx.author, fx.task.ID, "first take")
	require.NoError(t, err)

	t.Run("author edits own", func(t *testing.T) {
		got, err := fx.svc.Update(ctx, fx.author, c.ID, "second take")
		require.NoError(t, err)
		assert.Equal(t, "second take", got.Body)
	})

	t.Run("another member cannot edit", func(t *testing.T) {
		_, err := fx.svc.Update(ctx, fx.other, c.ID, "hijack")
		assert.ErrorIs(t, err, ErrNotAuthor)
	})

	t.Run("admins cannot rewrite either", func(t *testing.T) {
		_, err := fx.svc.Update(ctx, fx.admin, c.ID, "as admin")
		assert.ErrorIs(t, err, ErrNotAuthor)
	})
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()

	t.Run("author deletes own", func(t *testing.T) {
		fx := newFixture()
		c, err := fx.svc.Create(ctx, fx.author, fx.task.ID, "oops")
		require.NoError(t, err)

		require.NoError(t, fx.svc.Delete(ctx, fx.author, c.ID))

		err = fx.svc.Delete(ctx, fx.author, c.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("plain member cannot delete someone else's", func(t *testing.T) {
		fx := newFixture()
		c, err := fx.svc.Create(ctx, fx.author, fx.task.ID, "keep out")
		require.NoError(t, err)

		err = fx.svc.Delete(ctx, fx.other, c.ID)
		assert.ErrorIs(t, err, orgdomain.ErrForbidden)
	})

	t.Run("org admin moderates", func(t *testing.T) {
		fx := newFixture()
		c, err := fx.svc.Create(ctx, fx.author, fx.task.ID, "spam")
		require.NoError(t, err)

		require.NoError(t, fx.svc.Delete(ctx, fx.admin, c.ID))
	})
}

func TestListComments(t *testing.T) {
	ctx := context.Background()
	fx := newFixture()

	for _, body := range []string{"one", "two", "three"} {
		_, err := fx.svc.Create(ctx, fx.author, fx.task.ID, body)
		require.NoError(t, err)
	}

	items, err := fx.svc.ListByTask(ctx, fx.other, fx.task.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "one", items[0].Body)
	assert.Equal(t, "three", items[2].Body)

	_, err = fx.svc.ListByTask(ctx, uuid.New(), fx.task.ID)
	assert.ErrorIs(t, err, orgdomain.ErrNotMember)
}
