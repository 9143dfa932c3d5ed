package http

import "github.com/gin-gonic/gin"

// Register mounts the organization routes on rg (usually /api/v1/orgs).
// The static /join route must be declared alongside the :slug params;
// gin resolves static segments before parameters.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("", h.create)
	rg.GET("", h.listMine)
	rg.POST("/join", h.join)

	rg.GET("/:slug", h.details)
	rg.PATCH("/:slug", h.update)
	rg.DELETE("/:slug", h.delete)
	rg.POST("/:slug/leave", h.leave)
	rg.POST("/:slug/invite-code", h.regenerateInviteCode)

	rg.GET("/:slug/members", h.listMembers)
	rg.DELETE("/:slug/members/:memberId", h.removeMember)
	rg.PATCH("/:slug/members/:memberId", h.updateMemberRole)
}
