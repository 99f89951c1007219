package handlers

import (
	"net/http"

	"taskilo/utils"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	Monitor *utils.HealthMonitor
}

func NewHealthHandler(m *utils.HealthMonitor) *HealthHandler {
	return &HealthHandler{Monitor: m}
}

// Health reports the last store and Redis check. It answers 503 while
// a dependency is down.
func (h *HealthHandler) Health(c *gin.Context) {
	status := h.Monitor.Status()
	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"healthy":   status.Healthy(),
		"store":     status.Store,
		"redis":     status.Redis,
		"checkedAt": status.CheckedAt,
	})
}
