package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/taskhive/taskhive-backend/internal/apperr"
)

type errorPayload struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error writes the error envelope for err and aborts the request. The
// tagged error's reason rides in details so clients can tell LAST_ADMIN
// from any other forbidden/validation failure without parsing messages.
// Internal causes are attached to gin's error list for the request
// logger and never serialized.
func Error(c *gin.Context, err error) {
	e := apperr.From(err)

	if e.Kind == apperr.KindInternal {
		_ = c.Error(err)
	}

	details := e.Details
	if e.Reason != "" {
		merged := make(map[string]any, len(details)+1)
		for k, v := range details {
			merged[k] = v
		}
		merged["reason"] = e.Reason
		details = merged
	}

	c.AbortWithStatusJSON(e.Kind.HTTPStatus(), gin.H{"error": errorPayload{
		Code:    e.Kind.Code(),
		Message: e.Message,
		Details: details,
	}})
}

// BindJSON binds the request body into dst, answering VALIDATION_ERROR
// itself on failure. Callers bail out when it returns false.
func BindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		Error(c, apperr.Validation("INVALID_BODY", "invalid request body").Wrap(err))
		return false
	}
	return true
}
