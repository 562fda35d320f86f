package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strconv"

	"loyaltybot-backend/firebase"
	"loyaltybot-backend/models"
	"loyaltybot-backend/services"
	"loyaltybot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RewardHandler struct {
	DB          *gorm.DB
	Catalog     *services.Catalog
	Fulfillment *services.Fulfillment
	Storage     firebase.StorageClient
	Sender      services.Sender
}

// GetRewards lists active rewards, cheapest first.
func (h *RewardHandler) GetRewards(c *gin.Context) {
	rewards, err := h.Catalog.ActiveRewards()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rewards"})
		return
	}
	c.JSON(http.StatusOK, rewards)
}

// GetAllRewards returns all rewards (active + inactive) for admin use
func (h *RewardHandler) GetAllRewards(c *gin.Context) {
	var rewards []models.Reward
	if err := h.DB.Order("created_at DESC").Find(&rewards).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rewards"})
		return
	}
	c.JSON(http.StatusOK, rewards)
}

func (h *RewardHandler) GetReward(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward ID"})
		return
	}

	reward, err := h.Catalog.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reward)
}

// ClaimReward redeems a reward for the authenticated user.
func (h *RewardHandler) ClaimReward(c *gin.Context) {
	rewardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reward ID"})
		return
	}

	userID := c.MustGet("user_id").(uuid.UUID)
	result, err := h.Fulfillment.Claim(userID, rewardID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	// Telegram confirmation is best effort; the claim already committed.
	if h.Sender != nil && result.User.TelegramID != "" {
		go func(chatID, title string, balance int) {
			msg := fmt.Sprintf("You claimed %s! Remaining balance: %d points.", title, balance)
			if err := h.Sender.Send(chatID, msg); err != nil {
				log.Printf("claim notification failed: %v", err)
			}
		}(result.User.TelegramID, result.Reward.Title, result.User.Points)
	}

	c.JSON(http.StatusCreated, gin.H{
		"claim":   result.Claim,
		"balance": result.User.Points,
		"reward":  result.Reward,
	})
}

// MyClaims lists the caller's claims, newest first.
func (h *RewardHandler) MyClaims(c *gin.Context) {
	userID := c.MustGet("user_id").(uuid.UUID)

	claims, err := h.Fulfillment.UserClaims(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claims"})
		return
	}

	c.JSON(http.StatusOK, claims)
}

func (h *RewardHandler) CreateReward(c *gin.Context) {
	var reward models.Reward

	reward.ID = uuid.New()
	reward.Title = c.PostForm("title")
	reward.Description = c.PostForm("description")
	reward.IsActive = c.PostForm("is_active") != "false"

	if reward.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	cost, err := strconv.Atoi(c.DefaultPostForm("cost_points", "0"))
	if err != nil || cost < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cost_points must be a non-negative integer"})
		return
	}
	reward.CostPoints = cost

	stock, err := strconv.Atoi(c.DefaultPostForm("stock", strconv.Itoa(models.UnlimitedStock)))
	if err != nil || (stock < 0 && stock != models.UnlimitedStock) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be non-negative or -1 for unlimited"})
		return
	}
	reward.Stock = stock

	// Image is optional for rewards; the bot renders text-only cards fine.
	fileHeader, err := c.FormFile("image")
	if err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		file, openErr := fileHeader.Open()
		if openErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		imageURL, uploadErr := h.Storage.UploadRewardImage(
			file,
			fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"),
		)
		if uploadErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
			return
		}
		reward.ImageURL = imageURL
	}

	if err := h.DB.Create(&reward).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reward"})
		return
	}

	c.JSON(http.StatusCreated, reward)
}

func (h *RewardHandler) UpdateReward(c *gin.Context) {
	id := c.Param("id")
	var reward models.Reward

	if err := h.DB.Where("id = ?", id).First(&reward).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}

	if title := c.PostForm("title"); title != "" {
		reward.Title = title
	}
	if desc, ok := c.GetPostForm("description"); ok {
		reward.Description = desc
	}
	if active, ok := c.GetPostForm("is_active"); ok {
		reward.IsActive = active == "true"
	}
	if costStr, ok := c.GetPostForm("cost_points"); ok {
		cost, err := strconv.Atoi(costStr)
		if err != nil || cost < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cost_points must be a non-negative integer"})
			return
		}
		reward.CostPoints = cost
	}
	if stockStr, ok := c.GetPostForm("stock"); ok {
		stock, err := strconv.Atoi(stockStr)
		if err != nil || (stock < 0 && stock != models.UnlimitedStock) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "stock must be non-negative or -1 for unlimited"})
			return
		}
		reward.Stock = stock
	}

	fileHeader, err := c.FormFile("image")
	if err == nil {
		if err := utils.ValidateFileUpload(fileHeader); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if reward.ImageURL != "" {
			objectPath, pathErr := utils.ExtractObjectPath(reward.ImageURL)
			if pathErr == nil {
				_ = h.Storage.DeleteFile(objectPath)
			}
		}

		file, openErr := fileHeader.Open()
		if openErr != nil {
			log.Printf("Failed to open uploaded file: %v", openErr)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to open uploaded file"})
			return
		}
		defer file.Close()

		imageURL, uploadErr := h.Storage.UploadRewardImage(
			file,
			fileHeader.Filename,
			fileHeader.Header.Get("Content-Type"),
		)
		if uploadErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Image upload failed"})
			return
		}
		reward.ImageURL = imageURL
	}

	if err := h.DB.Save(&reward).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update reward"})
		return
	}

	c.JSON(http.StatusOK, reward)
}

// DeleteReward removes a reward. Rewards with claims are deactivated instead
// so claim history keeps resolving.
func (h *RewardHandler) DeleteReward(c *gin.Context) {
	id := c.Param("id")
	var reward models.Reward

	if err := h.DB.Where("id = ?", id).First(&reward).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reward not found"})
		return
	}

	var claimCount int64
	h.DB.Model(&models.Claim{}).Where("reward_id = ?", reward.ID).Count(&claimCount)
	if claimCount > 0 {
		if err := h.DB.Model(&reward).Update("is_active", false).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate reward"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Reward has claims and was deactivated instead of deleted"})
		return
	}

	if reward.ImageURL != "" {
		objectPath, err := utils.ExtractObjectPath(reward.ImageURL)
		if err == nil {
			_ = h.Storage.DeleteFile(objectPath)
		}
	}

	if err := h.DB.Delete(&models.Reward{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete reward"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reward deleted successfully"})
}
