package middleware

import (
	"crypto/subtle"
	"net/http"

	"taskilo/utils"

	"github.com/gin-gonic/gin"
)

// AdminAuthMiddleware guards operator endpoints with the static ADMIN_TOKEN.
// An empty token disables the endpoints.
func AdminAuthMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Fehlende oder ungültige Authorization-Header"})
			return
		}
		if adminToken == "" || subtle.ConstantTimeCompare([]byte(tokenString), []byte(adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Kein Admin-Zugriff"})
			return
		}

		c.Set("isAdmin", true)
		c.Next()
	}
}
