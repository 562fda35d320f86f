package handlers

import (
	"net/http"
	"strconv"

	"loyaltybot-backend/services"
	"loyaltybot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PointsHandler struct {
	DB     *gorm.DB
	Ledger *services.Ledger
}

// AdjustPoints credits or debits a user's balance on admin authority.
func (h *PointsHandler) AdjustPoints(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		Amount int    `json:"amount" binding:"required"`
		Reason string `json:"reason" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)
	balance, err := h.Ledger.ApplyDelta(userID, req.Amount, req.Reason, &actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id": userID,
		"amount":  req.Amount,
		"balance": balance,
	})
}

// MyHistory returns the caller's ledger entries, newest first.
func (h *PointsHandler) MyHistory(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	history, err := h.Ledger.History(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch points history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}

// UserHistory returns any user's ledger entries for the admin dashboard.
func (h *PointsHandler) UserHistory(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	history, err := h.Ledger.History(userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch points history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"history": history})
}
