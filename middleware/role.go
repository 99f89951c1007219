package middleware

import (
	"net/http"

	"taskilo/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through only for the given caller roles. It
// must run after JWTAuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		if _, role := Caller(c); !allowed[role] {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.ErrorResponse{Error: "Keine Berechtigung für diese Aktion"})
			return
		}
		c.Next()
	}
}
