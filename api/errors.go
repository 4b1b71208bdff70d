package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/echord/echord-backend/services"
)

// respondError maps the service error taxonomy onto HTTP statuses.
// Distinct upstream failures keep distinct statuses; only the generic
// fallback hides detail, and then only outside development mode.
func (s *Server) respondError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Validation error",
			"message": vErr.Message,
		})
		return
	}

	var rErr *services.ResolutionError
	if errors.As(err, &rErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Resolution error",
			"message": rErr.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Configuration error",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Configuration error",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{
			"error":   "Upstream timeout",
			"message": err.Error(),
		})
	case errors.Is(err, services.ErrFavoriteNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not found",
			"message": "no favorite exists with the given ID",
		})
	case errors.Is(err, services.ErrDuplicateFavorite):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Duplicate resource",
			"message": err.Error(),
		})
	default:
		var uErr *services.UpstreamError
		if errors.As(err, &uErr) {
			c.JSON(http.StatusBadGateway, gin.H{
				"error":           "Upstream service error",
				"message":         uErr.Message,
				"upstream_status": uErr.Status,
			})
			return
		}

		log.Printf("[API] internal error: %v", err)
		msg := "an unexpected error occurred"
		if s.cfg.IsDev() {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal server error",
			"message": msg,
		})
	}
}
