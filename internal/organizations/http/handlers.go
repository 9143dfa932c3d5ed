// Package http exposes the organization endpoints. Handlers bind and
// parse, delegate to the service and translate failures through
// httpapi.Error; no permission logic lives here.
package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/httpapi"
	"github.com/taskhive/taskhive-backend/internal/organizations/domain"
	"github.com/taskhive/taskhive-backend/internal/organizations/service"
)

// OrgService is the slice of the organizations service the handlers
// consume.
type OrgService interface {
	Create(ctx context.Context, userID uuid.UUID, in service.CreateInput) (*domain.Organization, error)
	Details(ctx context.Context, userID uuid.UUID, slug string) (*service.Details, error)
	Update(ctx context.Context, userID uuid.UUID, slug string, in service.UpdateInput) (*domain.Organization, error)
	Delete(ctx context.Context, userID uuid.UUID, slug, confirmName string) error
	Join(ctx context.Context, userID uuid.UUID, slug, inviteCode string) (*domain.Member, *domain.Organization, error)
	Leave(ctx context.Context, userID uuid.UUID, slug string) error
	RemoveMember(ctx context.Context, userID uuid.UUID, slug string, targetID uuid.UUID) error
	UpdateMemberRole(ctx context.Context, userID uuid.UUID, slug string, targetID uuid.UUID, role domain.Role) error
	ListMembers(ctx context.Context, userID uuid.UUID, slug string) ([]domain.MemberInfo, error)
	RegenerateInviteCode(ctx context.Context, userID uuid.UUID, slug string) (string, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]domain.OrgWithRole, error)
}

type Handler struct {
	svc OrgService
}

func NewHandler(svc OrgService) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) create(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Slug        string `json:"slug"`
		Description string `json:"description"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	org, err := h.svc.Create(c.Request.Context(), auth.UserID(c), service.CreateInput{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"organization": org,
		"inviteCode":   org.InviteCode,
	})
}

func (h *Handler) listMine(c *gin.Context) {
	orgs, err := h.svc.ListMine(c.Request.Context(), auth.UserID(c))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": orgs})
}

func (h *Handler) details(c *gin.Context) {
	d, err := h.svc.Details(c.Request.Context(), auth.UserID(c), c.Param("slug"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}

	resp := gin.H{
		"organization": d.Org,
		"role":         d.Role,
		"isOwner":      d.IsOwner,
		"isAdmin":      d.IsAdmin,
	}
	// the invite code is for people who can invite
	if d.IsAdmin {
		resp["inviteCode"] = d.Org.InviteCode
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) update(c *gin.Context) {
	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	org, err := h.svc.Update(c.Request.Context(), auth.UserID(c), c.Param("slug"), service.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organization": org})
}

func (h *Handler) delete(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), auth.UserID(c), c.Param("slug"), req.Name); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) join(c *gin.Context) {
	var req struct {
		Slug       string `json:"slug" binding:"required"`
		InviteCode string `json:"inviteCode" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	m, org, err := h.svc.Join(c.Request.Context(), auth.UserID(c), req.Slug, req.InviteCode)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"organization": org,
		"membership":   m,
	})
}

func (h *Handler) leave(c *gin.Context) {
	if err := h.svc.Leave(c.Request.Context(), auth.UserID(c), c.Param("slug")); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.svc.ListMembers(c.Request.Context(), auth.UserID(c), c.Param("slug"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h *Handler) removeMember(c *gin.Context) {
	memberID, ok := httpapi.UUIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.svc.RemoveMember(c.Request.Context(), auth.UserID(c), c.Param("slug"), memberID); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) updateMemberRole(c *gin.Context) {
	memberID, ok := httpapi.UUIDParam(c, "memberId")
	if !ok {
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	err := h.svc.UpdateMemberRole(c.Request.Context(), auth.UserID(c), c.Param("slug"), memberID, domain.Role(req.Role))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) regenerateInviteCode(c *gin.Context) {
	code, err := h.svc.RegenerateInviteCode(c.Request.Context(), auth.UserID(c), c.Param("slug"))
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inviteCode": code})
}
