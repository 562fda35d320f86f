package handlers

import (
	"errors"
	"net/http"

	"loyaltybot-backend/services"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates service-layer errors into HTTP responses.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRewardNotFound),
		errors.Is(err, services.ErrClaimNotFound),
		errors.Is(err, services.ErrGrantNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrGrantConsumed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrInsufficientBalance),
		errors.Is(err, services.ErrRewardInactive),
		errors.Is(err, services.ErrOutOfStock),
		errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrGrantExpired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
