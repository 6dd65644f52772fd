package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/despensa_api/internal/utils"
)

// respondError maps service errors to the response envelope.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrProductNotFound):
		utils.Error(c, http.StatusNotFound, utils.ErrProductNotFound.Error(), "Product not found")
	case errors.Is(err, utils.ErrInvalidInput):
		utils.Error(c, http.StatusBadRequest, utils.ErrInvalidInput.Error(), err.Error())
	case errors.Is(err, utils.ErrNoDepletedProducts):
		utils.Error(c, http.StatusNotFound, utils.ErrNoDepletedProducts.Error(), "No hay productos agotados")
	case errors.Is(err, utils.ErrShareNotFound):
		utils.Error(c, http.StatusNotFound, utils.ErrShareNotFound.Error(), "Shared list not found or expired")
	case errors.Is(err, utils.ErrShareUnavailable):
		utils.Error(c, http.StatusServiceUnavailable, utils.ErrShareUnavailable.Error(), "Share links are not enabled")
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
		_ = c.Error(err)
		utils.Error(c, http.StatusInternalServerError, utils.ErrStorageFailure.Error(), "Storage failure")
	}
}
