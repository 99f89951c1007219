package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware(t *testing.T) {
	signer, err := utils.NewTokenSigner("secret")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", JWTAuthMiddleware(signer, zap.NewNop()), RequireRole(utils.RoleCustomer), func(c *gin.Context) {
		id, role := Caller(c)
		c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	token, err := signer.GenerateToken("company-1", utils.RoleProvider, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	token, err = signer.GenerateToken("user-1", utils.RoleCustomer, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"user-1","role":"customer"}`, w.Body.String())
}

func TestAdminAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AdminAuthMiddleware("s3cret"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req.Header.Set("Authorization", "Bearer s3cret")
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)

	disabled := gin.New()
	disabled.GET("/admin", AdminAuthMiddleware(""), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	assert.Equal(t, http.StatusUnauthorized, serve(disabled, req).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimitMiddleware(2, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(r, req).Code)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.Header.Set("X-Forwarded-For", "198.51.100.1")
	assert.Equal(t, http.StatusOK, serve(r, other).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), RequestLogger(zap.NewNop()))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	generated := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, generated)
	assert.Equal(t, generated, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Header().Get(RequestIDHeader))
}
