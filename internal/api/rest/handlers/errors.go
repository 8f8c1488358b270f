package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SufyanAli-7/Genix-AI/internal/domain"
	"github.com/SufyanAli-7/Genix-AI/pkg/logger"
)

// respondError maps a service error onto an HTTP status and writes the
// JSON error body. Provider failures surface as 502 so clients can tell
// an upstream outage from a bug in this service.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	var providerErr *domain.ProviderError

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, domain.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": "Free generation limit reached. Please upgrade to pro."})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domain.ErrTimeoutExceeded):
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "Generation timed out. Please try again."})
	case errors.As(err, &providerErr):
		log.Error("Provider %s failed: %v", providerErr.Provider, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream provider error"})
	case errors.Is(err, domain.ErrExternalServiceUnavailable):
		log.Error("External service unavailable: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream provider error"})
	default:
		log.Error("Unhandled error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
