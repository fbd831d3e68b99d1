package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/wordspy/internal/services"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidInput),
		errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *RoomHandler) respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	if status == http.StatusServiceUnavailable {
		c.Header("Retry-After", "1")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
