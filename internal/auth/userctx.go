package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/apperr"
	"github.com/taskhive/taskhive-backend/internal/httpapi"
	"github.com/taskhive/taskhive-backend/internal/users"
)

const (
	CtxSubject  = "auth_subject"
	CtxUserDBID = "user_db_id"
	CtxEmail    = "auth_email"
)

var (
	errMissingToken = apperr.Unauthorized("MISSING_TOKEN", "missing authorization token")
	errInvalidToken = apperr.Unauthorized("INVALID_TOKEN", "invalid or expired token")
)

// UserEnsurer is the slice of users.Repo the middleware needs.
type UserEnsurer interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (uuid.UUID, error)
}

// RequireUser authenticates the request and resolves the internal user
// row, creating it on first sight. Handlers downstream read the id via
// UserID(c).
func RequireUser(verifier TokenVerifier, userRepo UserEnsurer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			httpapi.Error(c, errMissingToken)
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			httpapi.Error(c, errInvalidToken.Wrap(err))
			return
		}

		uid, err := userRepo.EnsureUser(c.Request.Context(), users.UpsertUser{
			Subject:     id.Subject,
			Email:       id.Email,
			DisplayName: id.Name,
		})
		if err != nil {
			httpapi.Error(c, err)
			return
		}

		c.Set(CtxSubject, id.Subject)
		c.Set(CtxUserDBID, uid.String())
		c.Set(CtxEmail, id.Email)
		c.Next()
	}
}

// UserID returns the authenticated caller's internal id, uuid.Nil when
// the request never passed RequireUser.
func UserID(c *gin.Context) uuid.UUID {
	id, err := uuid.Parse(c.GetString(CtxUserDBID))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// extractToken extracts the Bearer token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(bearerToken) > 7 && strings.HasPrefix(bearerToken, "Bearer ") {
		return bearerToken[7:]
	}
	return ""
}
