package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/projects/domain"
	"github.com/taskhive/taskhive-backend/internal/projects/service"
)

type stubSvc struct {
	create     func(userID uuid.UUID, orgSlug string, in service.CreateInput) (*domain.Project, error)
	listByOrg  func(userID uuid.UUID, orgSlug string) ([]domain.Project, error)
	get        func(userID, projectID uuid.UUID) (*domain.Project, error)
	update     func(userID, projectID uuid.UUID, in service.UpdateInput) (*domain.Project, error)
	archive    func(userID, projectID uuid.UUID) (*domain.Project, error)
	unarchive  func(userID, projectID uuid.UUID) (*domain.Project, error)
	deleteProj func(userID, projectID uuid.UUID) error
	addMember  func(userID, projectID, targetID, roleID uuid.UUID) (*domain.Member, error)
}

var errUnexpectedCall = errors.New("unexpected service call")

func (s *stubSvc) Create(_ context.Context, userID uuid.UUID, orgSlug string, in service.CreateInput) (*domain.Project, error) {
	if s.create == nil {
		return nil, errUnexpectedCall
	}
	return s.create(userID, orgSlug, in)
}

func (s *stubSvc) ListByOrg(_ context.Context, userID uuid.UUID, orgSlug string) ([]domain.Project, error) {
	if s.listByOrg == nil {
		return nil, errUnexpectedCall
	}
	return s.listByOrg(userID, orgSlug)
}

func (s *stubSvc) Get(_ context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	if s.get == nil {
		return nil, errUnexpectedCall
	}
	return s.get(userID, projectID)
}

func (s *stubSvc) Update(_ context.Context, userID, projectID uuid.UUID, in service.UpdateInput) (*domain.Project, error) {
	if s.update == nil {
		return nil, errUnexpectedCall
	}
	return s.update(userID, projectID, in)
}

func (s *stubSvc) Archive(_ context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	if s.archive == nil {
		return nil, errUnexpectedCall
	}
	return s.archive(userID, projectID)
}

func (s *stubSvc) Unarchive(_ context.Context, userID, projectID uuid.UUID) (*domain.Project, error) {
	if s.unarchive == nil {
		return nil, errUnexpectedCall
	}
	return s.unarchive(userID, projectID)
}

func (s *stubSvc) Delete(_ context.Context, userID, projectID uuid.UUID) error {
	if s.deleteProj == nil {
		return errUnexpectedCall
	}
	return s.deleteProj(userID, projectID)
}

func (s *stubSvc) AddMember(_ context.Context, userID, projectID, targetID, roleID uuid.UUID) (*domain.Member, error) {
	if s.addMember == nil {
		return nil, errUnexpectedCall
	}
	return s.addMember(userID, projectID, targetID, roleID)
}

func (s *stubSvc) RemoveMember(context.Context, uuid.UUID, uuid.UUID, uuid.UUID) error {
	return errUnexpectedCall
}

func (s *stubSvc) UpdateMemberRole(context.Context, uuid.UUID, uuid.UUID, uuid.UUID, uuid.UUID) error {
	return errUnexpectedCall
}

func (s *stubSvc) ListMembers(context.Context, uuid.UUID, uuid.UUID) ([]domain.MemberInfo, error) {
	return nil, errUnexpectedCall
}

var testUserID = uuid.New()

func newRouter(svc ProjectService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set(auth.CtxUserDBID, testUserID.String()) })
	h := NewHandler(svc)
	h.RegisterOrgRoutes(r.Group("/api/v1/orgs"))
	h.Register(r.Group("/api/v1/projects"))
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCreateProjectHandler(t *testing.T) {
	t.Run("created under the org from the path", func(t *testing.T) {
		svc := &stubSvc{create: func(userID uuid.UUID, orgSlug string, in service.CreateInput) (*domain.Project, error) {
			assert.Equal(t, testUserID, userID)
			assert.Equal(t, "acme", orgSlug)
			return &domain.Project{ID: uuid.New(), Slug: "web", Name: in.Name, Status: domain.StatusActive}, nil
		}}
		w := do(newRouter(svc), http.MethodPost, "/api/v1/orgs/acme/projects", `{"name":"Web"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"project"`)
	})

	t.Run("limit conflict carries the ceiling in details", func(t *testing.T) {
		svc := &stubSvc{create: func(uuid.UUID, string, service.CreateInput) (*domain.Project, error) {
			return nil, domain.ErrProjectLimit.WithDetails(map[string]any{"limit": 3})
		}}
		w := do(newRouter(svc), http.MethodPost, "/api/v1/orgs/acme/projects", `{"name":"Web"}`)

		require.Equal(t, http.StatusConflict, w.Code)

		var env struct {
			Error struct {
				Code    string         `json:"code"`
				Details map[string]any `json:"details"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Equal(t, "CONFLICT", env.Error.Code)
		assert.Equal(t, "PROJECT_LIMIT", env.Error.Details["reason"])
		assert.EqualValues(t, 3, env.Error.Details["limit"])
	})

	t.Run("missing name is rejected before the service", func(t *testing.T) {
		w := do(newRouter(&stubSvc{}), http.MethodPost, "/api/v1/orgs/acme/projects", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestArchiveHandler(t *testing.T) {
	id := uuid.New()

	t.Run("double archive maps to 409", func(t *testing.T) {
		svc := &stubSvc{archive: func(_, projectID uuid.UUID) (*domain.Project, error) {
			assert.Equal(t, id, projectID)
			return nil, domain.ErrAlreadyArchived
		}}
		w := do(newRouter(svc), http.MethodPost, "/api/v1/projects/"+id.String()+"/archive", "")

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"ALREADY_ARCHIVED"`)
	})

	t.Run("unarchive of active maps to 409", func(t *testing.T) {
		svc := &stubSvc{unarchive: func(uuid.UUID, uuid.UUID) (*domain.Project, error) {
			return nil, domain.ErrNotArchived
		}}
		w := do(newRouter(svc), http.MethodPost, "/api/v1/projects/"+id.String()+"/unarchive", "")

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"NOT_ARCHIVED"`)
	})

	t.Run("malformed id is 400 INVALID_ID", func(t *testing.T) {
		w := do(newRouter(&stubSvc{}), http.MethodPost, "/api/v1/projects/nope/archive", "")

		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"INVALID_ID"`)
	})
}

func TestProjectMemberHandler(t *testing.T) {
	id := uuid.New()

	t.Run("add member forwards ids", func(t *testing.T) {
		target, role := uuid.New(), uuid.New()
		svc := &stubSvc{addMember: func(_, projectID, targetID, roleID uuid.UUID) (*domain.Member, error) {
			assert.Equal(t, id, projectID)
			assert.Equal(t, target, targetID)
			assert.Equal(t, role, roleID)
			return &domain.Member{ProjectID: projectID, UserID: targetID, RoleID: roleID}, nil
		}}
		body := `{"userId":"` + target.String() + `","roleId":"` + role.String() + `"}`
		w := do(newRouter(svc), http.MethodPost, "/api/v1/projects/"+id.String()+"/members", body)

		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("duplicate member maps to 409", func(t *testing.T) {
		svc := &stubSvc{addMember: func(uuid.UUID, uuid.UUID, uuid.UUID, uuid.UUID) (*domain.Member, error) {
			return nil, domain.ErrMemberExists
		}}
		body := `{"userId":"` + uuid.NewString() + `","roleId":"` + uuid.NewString() + `"}`
		w := do(newRouter(svc), http.MethodPost, "/api/v1/projects/"+id.String()+"/members", body)

		require.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"MEMBER_EXISTS"`)
	})
}

func TestGetProjectHandler(t *testing.T) {
	id := uuid.New()
	svc := &stubSvc{get: func(_, projectID uuid.UUID) (*domain.Project, error) {
		return nil, domain.ErrNotFound
	}}
	w := do(newRouter(svc), http.MethodGet, "/api/v1/projects/"+id.String(), "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"NOT_FOUND"`)
}
