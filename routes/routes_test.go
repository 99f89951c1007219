package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskilo/handlers"
	"taskilo/middleware"
	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func ok(c *gin.Context) { c.Status(http.StatusOK) }

func testRouter(t *testing.T) (*gin.Engine, *utils.TokenSigner) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := utils.NewTokenSigner("secret")
	require.NoError(t, err)

	hb := &handlers.HandlerBundle{
		Auth:                        middleware.JWTAuthMiddleware(signer, zap.NewNop()),
		AdminAuth:                   middleware.AdminAuthMiddleware("admin"),
		CreateQuoteHandler:          ok,
		GetQuoteHandler:             ok,
		RespondToQuoteHandler:       ok,
		AcceptQuoteHandler:          ok,
		QuotePaymentHandler:         ok,
		ContactExchangeHandler:      ok,
		StripeWebhookHandler:        ok,
		ListPendingTransfersHandler: ok,
		PayoutHandler:               ok,
		RetryTransfersHandler:       ok,
		HealthHandler:               ok,
	}
	r := gin.New()
	RegisterRoutes(r, hb)
	return r, signer
}

func do(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRoutesAuth(t *testing.T) {
	r, signer := testRouter(t)
	customer, err := signer.GenerateToken("user-1", utils.RoleCustomer, time.Hour)
	require.NoError(t, err)
	provider, err := signer.GenerateToken("company-1", utils.RoleProvider, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/webhooks/stripe", ""))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/api/quotes/q-1", ""))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/quotes/q-1", customer))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/quotes/q-1/payment", provider))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/quotes", customer))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/quotes", provider))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/quotes/q-1/response", customer))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/quotes/q-1/response", provider))

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodPost, "/api/admin/transfers/retry", customer))
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/admin/transfers/retry", "admin"))
	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/admin/transfers/pending", "admin"))
}
