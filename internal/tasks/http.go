package tasks

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/auth"
	"github.com/taskhive/taskhive-backend/internal/httpapi"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterBoardRoutes attaches the board-nested collection routes; rg
// is the /boards group.
func (h *Handler) RegisterBoardRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/tasks", h.list)
	rg.POST("/:id/tasks", h.create)
}

// Register attaches the id-addressed task routes; rg is the /tasks
// group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
	rg.POST("/:id/move", h.move)
	rg.PUT("/:id/fields/:fieldId", h.setFieldValue)
}

func (h *Handler) create(c *gin.Context) {
	boardID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ColumnID    uuid.UUID `json:"columnId" binding:"required"`
		Title       string    `json:"title" binding:"required"`
		Description string    `json:"description"`
		Position    int       `json:"position"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.Create(c.Request.Context(), auth.UserID(c), boardID, CreateInput{
		ColumnID:    req.ColumnID,
		Title:       req.Title,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"task": t})
}

func (h *Handler) list(c *gin.Context) {
	boardID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.ListByBoard(c.Request.Context(), auth.UserID(c), boardID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": items})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	t, values, err := h.svc.Get(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t, "fieldValues": values})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.Update(c.Request.Context(), auth.UserID(c), id, Patch{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
}

func (h *Handler) move(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		ColumnID uuid.UUID `json:"columnId" binding:"required"`
		Position int       `json:"position"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	t, err := h.svc.Move(c.Request.Context(), auth.UserID(c), id, req.ColumnID, req.Position)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"task": t})
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

func (h *Handler) setFieldValue(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}
	fieldID, ok := httpapi.UUIDParam(c, "fieldId")
	if !ok {
		return
	}

	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	fv, err := h.svc.SetFieldValue(c.Request.Context(), auth.UserID(c), id, fieldID, req.Value)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fieldValue": fv})
}
