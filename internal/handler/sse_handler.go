package handler

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/despensa_api/internal/sse"
)

// SSEHandler handles Server-Sent Events for live list updates.
type SSEHandler struct {
	hub       *sse.Hub
	keepalive time.Duration
}

// NewSSEHandler creates a new SSEHandler.
func NewSSEHandler(hub *sse.Hub) *SSEHandler {
	return &SSEHandler{hub: hub, keepalive: 30 * time.Second}
}

// Stream handles GET /api/events
func (h *SSEHandler) Stream(c *gin.Context) {
	clientID := fmt.Sprintf("list-%s", uuid.New().String()[:8])

	// SSE headers
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable nginx buffering

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(clientID)

	// Send initial connected event
	c.SSEvent("connected", gin.H{
		"client_id": clientID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Debug().Str("client_id", clientID).Msg("SSE stream started")

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	// Stream events
	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("product", string(data))
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
