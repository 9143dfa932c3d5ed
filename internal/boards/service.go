package boards

import (
	"context"
	"strings"

	"github.com/google/uuid"

	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
	projdomain "github.com/taskhive/taskhive-backend/internal/projects/domain"
)

// Store is what the service needs from persistence.
type Store interface {
	CreateBoard(ctx context.Context, b *Board) error
	BoardByID(ctx context.Context, id uuid.UUID) (*Board, error)
	ListBoards(ctx context.Context, projectID uuid.UUID) ([]Board, error)
	UpdateBoard(ctx context.Context, id uuid.UUID, name, description *string, position *int) (*Board, error)
	DeleteBoard(ctx context.Context, id uuid.UUID) error
	CreateColumn(ctx context.Context, c *Column) error
	ColumnByID(ctx context.Context, id uuid.UUID) (*Column, error)
	ListColumns(ctx context.Context, boardID uuid.UUID) ([]Column, error)
	UpdateColumn(ctx context.Context, id uuid.UUID, name, color *string, position, wip *int, clearWIP bool) (*Column, error)
	DeleteColumn(ctx context.Context, id uuid.UUID) error
}

// ProjectGate resolves a project and checks the caller's role in its
// owning organization.
type ProjectGate interface {
	RequireProject(ctx context.Context, projectID, userID uuid.UUID, action orgdomain.Action) (*projdomain.Project, error)
}

type Service struct {
	store    Store
	projects ProjectGate
}

func NewService(store Store, projects ProjectGate) *Service {
	return &Service{store: store, projects: projects}
}

type BoardInput struct {
	Name        string
	Description string
	Position    int
}

type BoardPatch struct {
	Name        *string
	Description *string
	Position    *int
}

type ColumnInput struct {
	Name     string
	Color    string
	Position int
	WIPLimit *int
}

type ColumnPatch struct {
	Name     *string
	Color    *string
	Position *int
	// WIPLimit 0 clears the limit, >0 sets it, nil leaves it.
	WIPLimit *int
}

func (s *Service) CreateBoard(ctx context.Context, userID, projectID uuid.UUID, in BoardInput) (*Board, error) {
	if _, err := s.projects.RequireProject(ctx, projectID, userID, orgdomain.ActionManageBoard); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > NameMaxLen {
		return nil, ErrInvalidName
	}

	b := &Board{
		ProjectID:   projectID,
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Position:    in.Position,
	}
	if err := s.store.CreateBoard(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) ListBoards(ctx context.Context, userID, projectID uuid.UUID) ([]Board, error) {
	if _, err := s.projects.RequireProject(ctx, projectID, userID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return s.store.ListBoards(ctx, projectID)
}

// GetBoard returns the board together with its columns in position
// order.
func (s *Service) GetBoard(ctx context.Context, userID, boardID uuid.UUID) (*Board, []Column, error) {
	b, err := s.requireBoard(ctx, boardID, userID, orgdomain.ActionViewProject)
	if err != nil {
		return nil, nil, err
	}

	cols, err := s.store.ListColumns(ctx, b.ID)
	if err != nil {
		return nil, nil, err
	}
	return b, cols, nil
}

func (s *Service) UpdateBoard(ctx context.Context, userID, boardID uuid.UUID, in BoardPatch) (*Board, error) {
	if _, err := s.requireBoard(ctx, boardID, userID, orgdomain.ActionManageBoard); err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > NameMaxLen {
			return nil, ErrInvalidName
		}
		in.Name = &name
	}

	return s.store.UpdateBoard(ctx, boardID, in.Name, in.Description, in.Position)
}

func (s *Service) DeleteBoard(ctx context.Context, userID, boardID uuid.UUID) error {
	if _, err := s.requireBoard(ctx, boardID, userID, orgdomain.ActionManageBoard); err != nil {
		return err
	}
	return s.store.DeleteBoard(ctx, boardID)
}

func (s *Service) CreateColumn(ctx context.Context, userID, boardID uuid.UUID, in ColumnInput) (*Column, error) {
	if _, err := s.requireBoard(ctx, boardID, userID, orgdomain.ActionManageBoard); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > NameMaxLen {
		return nil, ErrInvalidName
	}
	if len(in.Color) > ColorMaxLen {
		return nil, ErrInvalidColor
	}
	if in.WIPLimit != nil && *in.WIPLimit < 0 {
		return nil, ErrInvalidWIPLimit
	}

	c := &Column{
		BoardID:  boardID,
		Name:     name,
		Color:    in.Color,
		Position: in.Position,
		WIPLimit: in.WIPLimit,
	}
	if err := s.store.CreateColumn(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListColumns(ctx context.Context, userID, boardID uuid.UUID) ([]Column, error) {
	if _, err := s.requireBoard(ctx, boardID, userID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return s.store.ListColumns(ctx, boardID)
}

func (s *Service) UpdateColumn(ctx context.Context, userID, columnID uuid.UUID, in ColumnPatch) (*Column, error) {
	col, err := s.store.ColumnByID(ctx, columnID)
	if err != nil {
		return nil, err
	}
	if _, err := s.requireBoard(ctx, col.BoardID, userID, orgdomain.ActionManageBoard); err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" || len(name) > NameMaxLen {
			return nil, ErrInvalidName
		}
		in.Name = &name
	}
	if in.Color != nil && len(*in.Color) > ColorMaxLen {
		return nil, ErrInvalidColor
	}

	var wip *int
	clearWIP := false
	if in.WIPLimit != nil {
		switch {
		case *in.WIPLimit < 0:
			return nil, ErrInvalidWIPLimit
		case *in.WIPLimit == 0:
			clearWIP = true
		default:
			wip = in.WIPLimit
		}
	}

	return s.store.UpdateColumn(ctx, columnID, in.Name, in.Color, in.Position, wip, clearWIP)
}

func (s *Service) DeleteColumn(ctx context.Context, userID, columnID uuid.UUID) error {
	col, err := s.store.ColumnByID(ctx, columnID)
	if err != nil {
		return err
	}
	if _, err := s.requireBoard(ctx, col.BoardID, userID, orgdomain.ActionManageBoard); err != nil {
		return err
	}
	return s.store.DeleteColumn(ctx, columnID)
}

// RequireBoard is the gate task and field features call with a board id
// they resolved from their own rows.
func (s *Service) RequireBoard(ctx context.Context, boardID, userID uuid.UUID, action orgdomain.Action) (*Board, error) {
	return s.requireBoard(ctx, boardID, userID, action)
}

// LookupColumn fetches a column without a permission check, for
// cross-feature board-membership validation.
func (s *Service) LookupColumn(ctx context.Context, columnID uuid.UUID) (*Column, error) {
	return s.store.ColumnByID(ctx, columnID)
}

func (s *Service) requireBoard(ctx context.Context, boardID, userID uuid.UUID, action orgdomain.Action) (*Board, error) {
	b, err := s.store.BoardByID(ctx, boardID)
	if err != nil {
		return nil, err
	}
	if _, err := s.projects.RequireProject(ctx, b.ProjectID, userID, action); err != nil {
		return nil, err
	}
	return b, nil
}
