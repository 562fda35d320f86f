package handlers

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"loyaltybot-backend/models"
	"loyaltybot-backend/services"
	"loyaltybot-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB          *gorm.DB
	Fulfillment *services.Fulfillment
	Broadcaster *services.Broadcaster
}

// GrantReward creates a claim for a user without charging points.
func (h *AdminHandler) GrantReward(c *gin.Context) {
	var req struct {
		UserID   uuid.UUID `json:"user_id" binding:"required"`
		RewardID uuid.UUID `json:"reward_id" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)
	claim, err := h.Fulfillment.Grant(req.UserID, req.RewardID, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, claim)
}

// CreatePendingGrant stores a grant awaiting confirmation through the bot.
func (h *AdminHandler) CreatePendingGrant(c *gin.Context) {
	var req struct {
		UserID     uuid.UUID `json:"user_id" binding:"required"`
		RewardID   uuid.UUID `json:"reward_id" binding:"required"`
		TTLMinutes int       `json:"ttl_minutes" binding:"omitempty,min=1"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)
	grant, err := h.Fulfillment.CreatePendingGrant(actorID, req.UserID, req.RewardID,
		time.Duration(req.TTLMinutes)*time.Minute)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grant)
}

// ResolvePendingGrant consumes a stored grant and performs it.
func (h *AdminHandler) ResolvePendingGrant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid grant ID"})
		return
	}

	claim, err := h.Fulfillment.ResolvePendingGrant(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// UpdateClaimStatus moves a claim to delivered or cancelled.
func (h *AdminHandler) UpdateClaimStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid claim ID"})
		return
	}

	var req struct {
		Status models.ClaimStatus `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)
	claim, err := h.Fulfillment.UpdateClaimStatus(id, req.Status, actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, claim)
}

// GetClaims lists claims for the dashboard, optionally filtered by status.
func (h *AdminHandler) GetClaims(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.DB.Model(&models.Claim{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var claims []models.Claim
	if err := query.Preload("Reward").Order("claimed_at DESC").
		Offset(offset).Limit(limit).Find(&claims).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch claims"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"claims": claims,
		"total":  total,
		"page":   page,
		"limit":  limit,
		"pages":  int(math.Ceil(float64(total) / float64(limit))),
	})
}

// Broadcast sends a message to a segment of the user base.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req struct {
		Segment string `json:"segment" binding:"omitempty,oneof=all admins users"`
		Text    string `json:"text" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.Segment == "" {
		req.Segment = services.SegmentAll
	}

	result, err := h.Broadcaster.Broadcast(req.Segment, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListUsers pages through users for the dashboard, with optional search.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.DB.Model(&models.User{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?) OR telegram_id = ?",
			"%"+search+"%", "%"+search+"%", search)
	}

	var total int64
	query.Count(&total)

	var users []models.User
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
		"pages": int(math.Ceil(float64(total) / float64(limit))),
	})
}

// SetAdmin promotes or demotes a user.
func (h *AdminHandler) SetAdmin(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		IsAdmin *bool `json:"is_admin" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)
	if actorID == id && !*req.IsAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot revoke your own admin access"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", id).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.DB.Model(&user).Update("is_admin", *req.IsAdmin).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	user.IsAdmin = *req.IsAdmin
	c.JSON(http.StatusOK, userResponse(user))
}

// SetBlocked blocks or unblocks a user.
func (h *AdminHandler) SetBlocked(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	var req struct {
		IsBlocked *bool `json:"is_blocked" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actorID := c.MustGet("user_id").(uuid.UUID)
	if actorID == id && *req.IsBlocked {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot block yourself"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", id).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.DB.Model(&user).Update("is_blocked", *req.IsBlocked).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	user.IsBlocked = *req.IsBlocked
	c.JSON(http.StatusOK, userResponse(user))
}

// GetSession returns the caller's conversation state, creating the idle row
// on first access.
func (h *AdminHandler) GetSession(c *gin.Context) {
	adminID := c.MustGet("user_id").(uuid.UUID)

	var session models.AdminSession
	if err := h.DB.Where("admin_id = ?", adminID).First(&session).Error; err != nil {
		session = models.AdminSession{AdminID: adminID, State: models.AdminStateIdle}
		if err := h.DB.Create(&session).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
	}

	c.JSON(http.StatusOK, session)
}

// UpdateSession moves the caller's conversation state through the allowed
// transitions.
func (h *AdminHandler) UpdateSession(c *gin.Context) {
	adminID := c.MustGet("user_id").(uuid.UUID)

	var req struct {
		State   models.AdminSessionState `json:"state" binding:"required"`
		Context string                   `json:"context"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var session models.AdminSession
	if err := h.DB.Where("admin_id = ?", adminID).First(&session).Error; err != nil {
		session = models.AdminSession{AdminID: adminID, State: models.AdminStateIdle}
		if err := h.DB.Create(&session).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
			return
		}
	}

	if !models.IsValidSessionTransition(session.State, req.State) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid state transition from " + string(session.State) + " to " + string(req.State),
		})
		return
	}

	session.State = req.State
	session.Context = req.Context
	if err := h.DB.Save(&session).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update session"})
		return
	}

	c.JSON(http.StatusOK, session)
}
