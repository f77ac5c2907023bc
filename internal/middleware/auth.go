package middleware

import (
	"strings"

	"edushare/config"
	"edushare/internal/auth"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "user_id"
	ctxName   = "user_name"
	ctxRole   = "role"
	ctxClaims = "claims"
)

// AuthRequired validates the bearer JWT and sets the caller's id, name and role in context.
func AuthRequired(cfg *config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortWith(c, apperror.Unauthenticated("missing authorization header"))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWith(c, apperror.Unauthenticated("invalid authorization format"))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, parts[1])
		if err != nil {
			abortWith(c, apperror.Unauthenticated("invalid or expired token"))
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxName, claims.Name)
		c.Set(ctxRole, claims.Role)
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

// RequireRole checks that the authenticated user has one of the allowed roles.
func RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		r := GetRole(c)
		if r == "" {
			abortWith(c, apperror.Unauthenticated("unauthorized"))
			return
		}
		for _, a := range allowed {
			if r == a {
				c.Next()
				return
			}
		}
		abortWith(c, apperror.Forbidden("forbidden"))
	}
}

func abortWith(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	c.AbortWithStatusJSON(apperror.HTTPStatus(code), gin.H{"error": apperror.Message(err), "code": code})
}

// GetUserID returns the authenticated user ID, or "" outside AuthRequired.
func GetUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func GetUserName(c *gin.Context) string {
	return c.GetString(ctxName)
}

func GetRole(c *gin.Context) string {
	return c.GetString(ctxRole)
}
