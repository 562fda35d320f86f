package routes

import (
	"loyaltybot-backend/config"
	"loyaltybot-backend/firebase"
	"loyaltybot-backend/handlers"
	"loyaltybot-backend/middleware"
	"loyaltybot-backend/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storage firebase.StorageClient, sender services.Sender) {
	// Initialize services
	ledger := &services.Ledger{DB: db}
	catalog := &services.Catalog{DB: db}
	fulfillment := &services.Fulfillment{DB: db, GrantDeductsStock: config.GrantDeductsStock()}
	broadcaster := &services.Broadcaster{DB: db, Sender: sender, Delay: config.BroadcastDelay()}
	stats := &services.Statistics{DB: db}

	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	pointsHandler := &handlers.PointsHandler{DB: db, Ledger: ledger}
	rewardHandler := &handlers.RewardHandler{DB: db, Catalog: catalog, Fulfillment: fulfillment, Storage: storage, Sender: sender}
	adminHandler := &handlers.AdminHandler{DB: db, Fulfillment: fulfillment, Broadcaster: broadcaster}
	statsHandler := &handlers.StatsHandler{Stats: stats}
	channelHandler := &handlers.ChannelHandler{DB: db}

	// Public routes
	api := r.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/refresh", authHandler.RefreshTokenHandler)

		api.GET("/rewards", rewardHandler.GetRewards)
		api.GET("/rewards/:id", rewardHandler.GetReward)

		api.GET("/channels", channelHandler.GetChannels)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		protected.POST("/rewards/:id/claim", rewardHandler.ClaimReward)
		protected.GET("/claims", rewardHandler.MyClaims)
		protected.GET("/points/history", pointsHandler.MyHistory)
		protected.GET("/leaderboard", statsHandler.GetLeaderboard)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Reward management
		admin.GET("/rewards", rewardHandler.GetAllRewards)
		admin.POST("/rewards", rewardHandler.CreateReward)
		admin.PUT("/rewards/:id", rewardHandler.UpdateReward)
		admin.DELETE("/rewards/:id", rewardHandler.DeleteReward)

		// User management
		admin.GET("/users", adminHandler.ListUsers)
		admin.PUT("/users/:id/admin", adminHandler.SetAdmin)
		admin.PUT("/users/:id/block", adminHandler.SetBlocked)
		admin.POST("/users/:id/points", pointsHandler.AdjustPoints)
		admin.GET("/users/:id/history", pointsHandler.UserHistory)

		// Grants and claims
		admin.POST("/grants", adminHandler.GrantReward)
		admin.POST("/pending-grants", adminHandler.CreatePendingGrant)
		admin.POST("/pending-grants/:id/resolve", adminHandler.ResolvePendingGrant)
		admin.GET("/claims", adminHandler.GetClaims)
		admin.PUT("/claims/:id/status", adminHandler.UpdateClaimStatus)

		// Broadcast
		admin.POST("/broadcast", adminHandler.Broadcast)

		// Statistics
		admin.GET("/statistics", statsHandler.GetStatistics)
		admin.GET("/leaderboard", statsHandler.GetLeaderboard)
		admin.GET("/top-rewards", statsHandler.GetTopRewards)

		// Channel management
		admin.POST("/channels", channelHandler.CreateChannel)
		admin.PUT("/channels/:id", channelHandler.UpdateChannel)
		admin.DELETE("/channels/:id", channelHandler.DeleteChannel)

		// Conversation state
		admin.GET("/session", adminHandler.GetSession)
		admin.PUT("/session", adminHandler.UpdateSession)
	}
}
