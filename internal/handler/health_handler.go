package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/despensa_api/internal/utils"
)

var startTime = time.Now()

// Pinger is a dependency whose reachability is reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	backend string
	storage Pinger
	redis   Pinger
}

// NewHealthHandler creates a new HealthHandler. redis may be nil.
func NewHealthHandler(backend string, storage, redis Pinger) *HealthHandler {
	return &HealthHandler{backend: backend, storage: storage, redis: redis}
}

// GetHealth responds with service, storage and cache status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	storageStatus := "connected"
	if err := h.storage.Ping(ctx); err != nil {
		storageStatus = "disconnected"
	}
	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "connected"
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "disconnected"
		}
	}

	status := "healthy"
	if storageStatus != "connected" {
		status = "degraded"
	}

	utils.Success(c, http.StatusOK, "Service is "+status, gin.H{
		"status": status,
		"uptime": int(time.Since(startTime).Seconds()),
		"storage": gin.H{
			"backend": h.backend,
			"status":  storageStatus,
		},
		"redis": gin.H{
			"status": redisStatus,
		},
	})
}
