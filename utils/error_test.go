package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAppErrorStatus(t *testing.T) {
	cases := map[*AppError]int{
		ConfigError("x"):       http.StatusInternalServerError,
		NotFound("x"):          http.StatusNotFound,
		Validation("x"):        http.StatusBadRequest,
		Conflict("x"):          http.StatusConflict,
		Forbidden("x"):         http.StatusForbidden,
		Unauthorized("x"):      http.StatusUnauthorized,
		Upstream("x", "", nil): http.StatusInternalServerError,
		Internal("x", nil):     http.StatusInternalServerError,
	}
	for e, want := range cases {
		assert.Equal(t, want, e.Status(), string(e.Kind))
	}
}

func TestUpstreamAppendsProviderMessage(t *testing.T) {
	cause := errors.New("card declined")
	e := Upstream("Zahlung fehlgeschlagen", "Your card was declined.", cause)
	assert.Equal(t, "Zahlung fehlgeschlagen: Your card was declined.", e.Message)
	assert.ErrorIs(t, e, cause)
}

func TestIsKindThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", Validation("bad"))
	assert.True(t, IsKind(err, KindValidation))
	assert.False(t, IsKind(err, KindNotFound))
	assert.False(t, IsKind(errors.New("plain"), KindValidation))
}

func TestRespondError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	for name, tc := range map[string]struct {
		err    error
		status int
		msg    string
	}{
		"app error":   {NotFound("Angebot nicht gefunden").WithDetails("q-1"), http.StatusNotFound, "Angebot nicht gefunden"},
		"plain error": {errors.New("boom"), http.StatusInternalServerError, "Interner Serverfehler"},
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

			RespondError(c, zap.NewNop(), tc.err)

			assert.Equal(t, tc.status, w.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tc.msg, body.Error)
		})
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler(zap.NewNop()))
	r.GET("/panic", func(c *gin.Context) { panic("kaputt") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
