package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/despensa_api/internal/service"
	"github.com/GTDGit/despensa_api/internal/utils"
)

// ShareHandler handles sharing of the depleted-products list.
type ShareHandler struct {
	shareService *service.ShareService
}

// NewShareHandler constructs a ShareHandler.
func NewShareHandler(shareService *service.ShareService) *ShareHandler {
	return &ShareHandler{shareService: shareService}
}

// ShareDepleted handles POST /api/products/depleted/share
func (h *ShareHandler) ShareDepleted(c *gin.Context) {
	share, err := h.shareService.ShareDepleted(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusOK, "Depleted list ready", share)
}

// GetShared handles GET /api/share/:token and returns the message as plain text.
func (h *ShareHandler) GetShared(c *gin.Context) {
	list, err := h.shareService.GetShared(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, list.Message)
}
