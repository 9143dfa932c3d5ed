package customfields

import (
	"encoding/json"
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

// RegisterBoardRoutes attaches the board-nested collection routes; rg
// is the /boards group.
func (h *Handler) RegisterBoardRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/fields", h.list)
	rg.POST("/:id/fields", h.create)
}

// Register attaches the id-addressed field routes; rg is the /fields
// group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

func (h *Handler) create(c *gin.Context) {
	boardID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name      string          `json:"name" binding:"required"`
		FieldType string          `json:"fieldType" binding:"required"`
		Config    json.RawMessage `json:"config"`
		Required  bool            `json:"required"`
		Position  int             `json:"position"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	f, err := h.svc.Create(c.Request.Context(), auth.UserID(c), boardID, CreateInput{
		Name:      req.Name,
		FieldType: FieldType(req.FieldType),
		Config:    req.Config,
		Required:  req.Required,
		Position:  req.Position,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"field": f})
}

func (h *Handler) list(c *gin.Context) {
	boardID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	fields, err := h.svc.ListByBoard(c.Request.Context(), auth.UserID(c), boardID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fields": fields})
}

func (h *Handler) get(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	f, err := h.svc.Get(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": f})
}

func (h *Handler) update(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name     *string         `json:"name"`
		Config   json.RawMessage `json:"config"`
		Required *bool           `json:"required"`
		Position *int            `json:"position"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	f, err := h.svc.Update(c.Request.Context(), auth.UserID(c), id, Patch{
		Name:     req.Name,
		Config:   req.Config,
		Required: req.Required,
		Position: req.Position,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": f})
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
