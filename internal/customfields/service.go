package customfields

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/boards"
	orgdomain "github.com/taskhive/taskhive-backend/internal/organizations/domain"
)

type Store interface {
	Create(ctx context.Context, f *Field) error
	ByID(ctx context.Context, id uuid.UUID) (*Field, error)
	ListByBoard(ctx context.Context, boardID uuid.UUID) ([]Field, error)
	Update(ctx context.Context, id uuid.UUID, name *string, config json.RawMessage, required *bool, position *int) (*Field, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// BoardGate resolves a board and checks the caller's role in the
// owning organization.
type BoardGate interface {
	RequireBoard(ctx context.Context, boardID, userID uuid.UUID, action orgdomain.Action) (*boards.Board, error)
}

type Service struct {
	store  Store
	boards BoardGate
}

func NewService(store Store, boards BoardGate) *Service {
	return &Service{store: store, boards: boards}
}

type CreateInput struct {
	Name      string
	FieldType FieldType
	Config    json.RawMessage
	Required  bool
	Position  int
}

type Patch struct {
	Name     *string
	Config   json.RawMessage
	Required *bool
	Position *int
}

func (s *Service) Create(ctx context.Context, userID, boardID uuid.UUID, in CreateInput) (*Field, error) {
	if _, err := s.boards.RequireBoard(ctx, boardID, userID, orgdomain.ActionManageFields); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > NameMaxLen {
		return nil, ErrInvalidName
	}
	if !in.FieldType.Valid() {
		return nil, ErrInvalidType
	}
	if err := validateConfig(in.FieldType, in.Config); err != nil {
		return nil, err
	}

	f := &Field{
		BoardID:   boardID,
		Name:      name,
		FieldType: in.FieldType,
		Config:    in.Config,
		Required:  in.Required,
		Position:  in.Position,
	}
	if err := s.store.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) ListByBoard(ctx context.Context, userID, boardID uuid.UUID) ([]Field, error) {
	if _, err := s.boards.RequireBoard(ctx, boardID, userID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return s.store.ListByBoard(ctx, boardID)
}

func (s *Service) Get(ctx context.Context, userID, fieldID uuid.UUID) (*Field, error) {
	f, err := s.store.ByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if _, err := s.boards.RequireBoard(ctx, f.BoardID, userID, orgdomain.ActionViewProject); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Update(ctx context.Context, userID, fieldID uuid.UUID, in Patch) (*Field, error) {
	f, err := s.store.ByID(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	if _, err := s.boards.RequireBoard(ctx, f.BoardID, userID, orgdomain.ActionManageFields); err != nil {
		return nil, err
	}

	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" || len(trimmed) > NameMaxLen {
			return nil, ErrInvalidName
		}
		in.Name = &trimmed
	}
	if in.Config != nil {
		if err := validateConfig(f.FieldType, in.Config); err != nil {
			return nil, err
		}
	}

	return s.store.Update(ctx, fieldID, in.Name, in.Config, in.Required, in.Position)
}

func (s *Service) Delete(ctx context.Context, userID, fieldID uuid.UUID) error {
	f, err := s.store.ByID(ctx, fieldID)
	if err != nil {
		return err
	}
	if _, err := s.boards.RequireBoard(ctx, f.BoardID, userID, orgdomain.ActionManageFields); err != nil {
		return err
	}
	return s.store.Delete(ctx, fieldID)
}

// Lookup fetches a field definition without a permission check.
// Callers gate access by the owning board themselves.
func (s *Service) Lookup(ctx context.Context, fieldID uuid.UUID) (*Field, error) {
	return s.store.ByID(ctx, fieldID)
}

// validateConfig checks the type-specific settings. Select fields must
// name their options up front, everything else accepts any object.
func validateConfig(t FieldType, cfg json.RawMessage) error {
	if len(cfg) == 0 {
		if t == TypeSelect {
			return ErrMissingOptions
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(cfg, &obj); err != nil {
		return ErrInvalidConfig
	}

	if t == TypeSelect {
		var options []string
		if err := json.Unmarshal(obj["options"], &options); err != nil || len(options) == 0 {
			return ErrMissingOptions
		}
	}
	return nil
}
