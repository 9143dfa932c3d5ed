package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

// UUIDParam parses a path parameter as a UUID. On a malformed value it
// answers a validation error and reports ok=false.
func UUIDParam(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		Error(c, apperr.Validation("INVALID_ID", param+" must be a UUID"))
		return uuid.Nil, false
	}
	return id, true
}
