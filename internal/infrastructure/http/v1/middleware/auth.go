package middleware

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"supplyfin/internal/core/apperror"
	appctx "supplyfin/internal/core/context"
)

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	ValidateToken(tokenString string) (*appctx.Session, error)
}

// Auth middleware validates JWT tokens and puts the session into the request context.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		session, err := validator.ValidateToken(parts[1])
		if err != nil {
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Request = c.Request.WithContext(appctx.WithSession(c.Request.Context(), session))
		c.Set("user_id", session.UserID)
		c.Set("company_id", session.CompanyID.String())

		c.Next()
	}
}

// RequireRole rejects sessions whose role is not listed.
func RequireRole(roles ...appctx.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := appctx.GetSession(c.Request.Context())
		if session == nil {
			abortUnauthorized(c, "authentication required")
			return
		}
		if !slices.Contains(roles, session.Role) {
			_ = c.Error(
				apperror.NewForbidden(apperror.CodeForbidden, "insufficient permissions").
					WithDetail("required_roles", roles),
			)
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
