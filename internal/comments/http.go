package comments

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/httpapi"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterTaskRoutes attaches the task-nested collection routes; rg is
// the /tasks group.
func (h *Handler) RegisterTaskRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/comments", h.list)
	rg.POST("/:id/comments", h.create)
}

// Register attaches the id-addressed comment routes; rg is the
// /comments group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	taskID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	comment, err := h.svc.Create(c.Request.Context(), auth.UserID(c), taskID, req.Body)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

func (h *Handler) list(c *gin.Context) {
	taskID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.ListByTask(c.Request.Context(), auth.UserID(c), taskID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": items})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	comment, err := h.svc.Update(c.Request.Context(), auth.UserID(c), id, req.Body)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment": comment})
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
	c.Status(http.StatusNoContent)
}
