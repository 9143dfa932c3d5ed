// Package http exposes the project endpoints: CRUD nested under the
// owning organization, archive transitions, and project membership.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/httpapi"
	"github.com/taskhive/taskhive-backend/internal/projects/domain"
	"github.com/taskhive/taskhive-backend/internal/projects/service"
)

// ProjectService is the slice of the projects service the handlers
// consume.
type ProjectService interface {
	Create(ctx context.Context, userID uuid.UUID, orgSlug string, in service.CreateInput) (*domain.Project, error)
	ListByOrg(ctx context.Context, userID uuid.UUID, orgSlug string) ([]domain.Project, error)
	Get(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)
	Update(ctx context.Context, userID, projectID uuid.UUID, in service.UpdateInput) (*domain.Project, error)
	Archive(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)
	Unarchive(ctx context.Context, userID, projectID uuid.UUID) (*domain.Project, error)
	Delete(ctx context.Context, userID, projectID uuid.UUID) error
	AddMember(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) (*domain.Member, error)
	RemoveMember(ctx context.Context, userID, projectID, targetID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, userID, projectID, targetID, roleID uuid.UUID) error
	ListMembers(ctx context.Context, userID, projectID uuid.UUID) ([]domain.MemberInfo, error)
}

type Handler struct {
	svc ProjectService
}

func NewHandler(svc ProjectService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) createInOrg(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Create(c.Request.Context(), auth.UserID(c), c.Param("slug"), service.CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"project": p})
}

func (h *Handler) listInOrg(c *gin.Context) {
	items, err := h.svc.ListByOrg(c.Request.Context(), auth.UserID(c), c.Param("slug"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"projects": items})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	p, err := h.svc.Get(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		IsFavorite  *bool   `json:"isFavorite"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	p, err := h.svc.Update(c.Request.Context(), auth.UserID(c), id, service.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		IsFavorite:  req.IsFavorite,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *Handler) archive(c *gin.Context) {
	h.transition(c, h.svc.Archive)
}

func (h *Handler) unarchive(c *gin.Context) {
	h.transition(c, h.svc.Unarchive)
}

func (h *Handler) transition(c *gin.Context, op func(context.Context, uuid.UUID, uuid.UUID) (*domain.Project, error)) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	p, err := op(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *Handler) delete(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), id); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listMembers(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	members, err := h.svc.ListMembers(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *Handler) addMember(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserID uuid.UUID `json:"userId" binding:"required"`
		RoleID uuid.UUID `json:"roleId" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	m, err := h.svc.AddMember(c.Request.Context(), auth.UserID(c), id, req.UserID, req.RoleID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"member": m})
}

func (h *Handler) updateMemberRole(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := httpapi.UUIDParam(c, "memberId")
	if !ok {
		return
	}

	var req struct {
		RoleID uuid.UUID `json:"roleId" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	if err := h.svc.UpdateMemberRole(c.Request.Context(), auth.UserID(c), id, memberID, req.RoleID); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) removeMember(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}
	memberID, ok := httpapi.UUIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), auth.UserID(c), id, memberID); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
