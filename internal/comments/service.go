package comments

import (
	"context"
	"strings"

	"github.com/google/uuid"

	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
	"github.com/taskhive/taskhive-backend/internal/tasks"
)

type Store interface {
	Create(ctx context.Context, c *Comment) error
	ByID(ctx context.Context, id uuid.UUID) (*Comment, error)
	ListByTask(ctx context.Context, taskID uuid.UUID) ([]Info, error)
	Update(ctx context.Context, id uuid.UUID, body string) (*Comment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskGate resolves a task and checks the caller's role in the owning
// organization.
type TaskGate interface {
	RequireTask(ctx context.Context, taskID, userID uuid.UUID, action orgdomain.Action) (*tasks.Task, error)
}

type Service struct {
	store Store
	tasks TaskGate
}

func NewService(store Store, tasks TaskGate) *Service {
	return &Service{store: store, tasks: tasks}
}

func (s *Service) Create(ctx context.Context, userID, taskID uuid.UUID, body string) (*Comment, error) {
	if _, err := s.tasks.RequireTask(ctx, taskID, userID, orgdomain.ActionComment); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" || len(body) > BodyMaxLen {
		return nil, ErrInvalidBody
	}

	c := &Comment{TaskID: taskID, AuthorID: userID, Body: body}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListByTask(ctx context.Context, userID, taskID uuid.UUID) ([]Info, error) {
	if _, err := s.tasks.RequireTask(ctx, taskID, userID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return s.store.ListByTask(ctx, taskID)
}

// Update edits a comment body. Only the author may edit, admins
// moderate by deletion, not by rewriting someone's words.
func (s *Service) Update(ctx context.Context, userID, commentID uuid.UUID, body string) (*Comment, error) {
	c, err := s.store.ByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.tasks.RequireTask(ctx, c.TaskID, userID, orgdomain.ActionComment); err != nil {
		return nil, err
	}
	if c.AuthorID != userID {
		return nil, ErrNotAuthor
	}

	body = strings.TrimSpace(body)
	if body == "" || len(body) > BodyMaxLen {
		return nil, ErrInvalidBody
	}

	return s.store.Update(ctx, commentID, body)
}

// Delete removes a comment. Authors delete their own, org admins may
// delete anyone's.
func (s *Service) Delete(ctx context.Context, userID, commentID uuid.UUID) error {
	c, err := s.store.ByID(ctx, commentID)
	if err != nil {
		return err
	}

	action := orgdomain.ActionModerateComments
	if c.AuthorID == userID {
		action = orgdomain.ActionComment
	}
	if _, err := s.tasks.RequireTask(ctx, c.TaskID, userID, action); err != nil {
		return err
	}

	return s.store.Delete(ctx, commentID)
}
