package handlers

import (
	"net/http"

	"loyaltybot-backend/models"
	"loyaltybot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChannelHandler struct {
	DB *gorm.DB
}

// GetChannels lists the channels users are asked to join.
func (h *ChannelHandler) GetChannels(c *gin.Context) {
	var channels []models.Channel
	if err := h.DB.Order("created_at ASC").Find(&channels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch channels"})
		return
	}
	c.JSON(http.StatusOK, channels)
}

func (h *ChannelHandler) CreateChannel(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Link        string `json:"link"`
		ChannelID   string `json:"channel_id" binding:"required"`
		Description string `json:"description"`
		IsRequired  *bool  `json:"is_required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var existing models.Channel
	if err := h.DB.Where("channel_id = ?", req.ChannelID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Channel already registered"})
		return
	}

	channel := models.Channel{
		ID:          uuid.New(),
		Title:       req.Title,
		Link:        req.Link,
		ChannelID:   req.ChannelID,
		Description: req.Description,
		IsRequired:  true,
	}
	if req.IsRequired != nil {
		channel.IsRequired = *req.IsRequired
	}

	if err := h.DB.Create(&channel).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}
	// Persist an explicit false past the column default.
	h.DB.Model(&channel).Update("is_required", channel.IsRequired)

	c.JSON(http.StatusCreated, channel)
}

func (h *ChannelHandler) UpdateChannel(c *gin.Context) {
	id := c.Param("id")
	var channel models.Channel

	if err := h.DB.Where("id = ?", id).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Link        *string `json:"link"`
		Description *string `json:"description"`
		IsRequired  *bool   `json:"is_required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Link != nil {
		updates["link"] = *req.Link
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsRequired != nil {
		updates["is_required"] = *req.IsRequired
	}

	if len(updates) > 0 {
		if err := h.DB.Model(&channel).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update channel"})
			return
		}
	}

	h.DB.Where("id = ?", id).First(&channel)
	c.JSON(http.StatusOK, channel)
}

func (h *ChannelHandler) DeleteChannel(c *gin.Context) {
	id := c.Param("id")
	var channel models.Channel

	if err := h.DB.Where("id = ?", id).First(&channel).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		return
	}

	if err := h.DB.Delete(&models.Channel{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete channel"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel deleted successfully"})
}
