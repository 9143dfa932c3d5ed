package http

import "github.com/gin-gonic/gin"

// RegisterOrgRoutes attaches the org-nested collection routes; rg is
// the /orgs group, so paths resolve to /orgs/:slug/projects.
func (h *Handler) RegisterOrgRoutes(rg *gin.RouterGroup) {
	rg.POST("/:slug/projects", h.createInOrg)
	rg.GET("/:slug/projects", h.listInOrg)
}

// Register attaches the id-addressed routes to the /projects group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/:id", h.get)
	rg.PATCH("/:id", h.update)
	rg.DELETE("/:id", h.delete)

	rg.POST("/:id/archive", h.archive)
	rg.POST("/:id/unarchive", h.unarchive)

	rg.GET("/:id/members", h.listMembers)
	rg.POST("/:id/members", h.addMember)
	rg.PATCH("/:id/members/:memberId", h.updateMemberRole)
	rg.DELETE("/:id/members/:memberId", h.removeMember)
}
