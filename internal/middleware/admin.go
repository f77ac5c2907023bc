package middleware

import (
	"edushare/internal/domain"

	"github.com/gin-gonic/gin"
)

// AdminRequired is RequireRole(admin). Use after AuthRequired.
func AdminRequired() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
