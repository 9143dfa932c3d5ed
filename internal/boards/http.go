package boards

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

// RegisterProjectRoutes attaches the project-nested collection routes;
// rg is the /projects group.
func (h *Handler) RegisterProjectRoutes(rg *gin.RouterGroup) {
	rg.GET("/:id/boards", h.listBoards)
	rg.POST("/:id/boards", h.createBoard)
}

// Register attaches the id-addressed board and column routes. boardsRG
// is the /boards group, columnsRG the /columns group.
func (h *Handler) Register(boardsRG, columnsRG *gin.RouterGroup) {
	boardsRG.GET("/:id", h.getBoard)
	boardsRG.PATCH("/:id", h.updateBoard)
	boardsRG.DELETE("/:id", h.deleteBoard)
	boardsRG.GET("/:id/columns", h.listColumns)
	boardsRG.POST("/:id/columns", h.createColumn)

	columnsRG.PATCH("/:id", h.updateColumn)
	columnsRG.DELETE("/:id", h.deleteColumn)
}

func (h *Handler) createBoard(c *gin.Context) {
	projectID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Position    int    `json:"position"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.CreateBoard(c.Request.Context(), auth.UserID(c), projectID, BoardInput{
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"board": b})
}

func (h *Handler) listBoards(c *gin.Context) {
	projectID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	items, err := h.svc.ListBoards(c.Request.Context(), auth.UserID(c), projectID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boards": items})
}

func (h *Handler) getBoard(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	b, cols, err := h.svc.GetBoard(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": b, "columns": cols})
}

func (h *Handler) updateBoard(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
		Position    *int    `json:"position"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	b, err := h.svc.UpdateBoard(c.Request.Context(), auth.UserID(c), id, BoardPatch{
		Name:        req.Name,
		Description: req.Description,
		Position:    req.Position,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"board": b})
}

func (h *Handler) deleteBoard(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteBoard(c.Request.Context(), auth.UserID(c), id); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) createColumn(c *gin.Context) {
	boardID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name     string `json:"name" binding:"required"`
		Color    string `json:"color"`
		Position int    `json:"position"`
		WIPLimit *int   `json:"wipLimit"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	col, err := h.svc.CreateColumn(c.Request.Context(), auth.UserID(c), boardID, ColumnInput{
		Name:     req.Name,
		Color:    req.Color,
		Position: req.Position,
		WIPLimit: req.WIPLimit,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"column": col})
}

func (h *Handler) listColumns(c *gin.Context) {
	boardID, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	cols, err := h.svc.ListColumns(c.Request.Context(), auth.UserID(c), boardID)
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": cols})
}

func (h *Handler) updateColumn(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Color    *string `json:"color"`
		Position *int    `json:"position"`
		WIPLimit *int    `json:"wipLimit"`
	}
	if !httpapi.BindJSON(c, &req) {
		return
	}

	col, err := h.svc.UpdateColumn(c.Request.Context(), auth.UserID(c), id, ColumnPatch{
		Name:     req.Name,
		Color:    req.Color,
		Position: req.Position,
		WIPLimit: req.WIPLimit,
	})
	if err != nil {
		httpapi.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"column": col})
}

func (h *Handler) deleteColumn(c *gin.Context) {
	id, ok := httpapi.UUIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.svc.DeleteColumn(c.Request.Context(), auth.UserID(c), id); err != nil {
		httpapi.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
