package middleware

import (
	"net/http"
	"strings"

	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by JWTAuthMiddleware.
const (
	CallerIDKey   = "callerID"
	CallerRoleKey = "callerRole"
)

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

// JWTAuthMiddleware validates the bearer token and stores the caller's id
// and role in the context.
func JWTAuthMiddleware(signer *utils.TokenSigner, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Fehlende oder ungültige Authorization-Header"})
			return
		}

		subject, role, err := signer.ExtractClaims(tokenString)
		if err != nil {
			logger.Debug("Rejected token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorResponse{Error: "Ungültiges Token"})
			return
		}

		c.Set(CallerIDKey, subject)
		c.Set(CallerRoleKey, role)
		c.Next()
	}
}

// Caller returns the id and role stored by JWTAuthMiddleware.
func Caller(c *gin.Context) (id, role string) {
	return c.GetString(CallerIDKey), c.GetString(CallerRoleKey)
}
