package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskilo/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func serveHealth(t *testing.T, p utils.Pinger) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	m := utils.NewHealthMonitor(p, nil, 0)
	m.Check(context.Background())

	r := gin.New()
	r.GET("/health", NewHealthHandler(m).Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHealthOK(t *testing.T) {
	w, body := serveHealth(t, stubPinger{})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["healthy"])
	assert.Equal(t, true, body["store"])
}

func TestHealthStoreDown(t *testing.T) {
	w, body := serveHealth(t, stubPinger{err: errors.New("no reachable servers")})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, false, body["healthy"])
	assert.Equal(t, false, body["store"])
}
