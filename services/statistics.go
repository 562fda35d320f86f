package services

import (
	"loyaltybot-backend/models"

	"gorm.io/gorm"
)

// Statistics computes read-only aggregates for the admin dashboard.
type Statistics struct {
	DB *gorm.DB
}

type Totals struct {
	TotalUsers        int64 `json:"total_users"`
	TotalAdmins       int64 `json:"total_admins"`
	TotalPoints       int64 `json:"total_points"`
	ActiveRewardCount int64 `json:"active_reward_count"`
	ClaimedCount      int64 `json:"claimed_count"`
}

type RewardCount struct {
	RewardID string `json:"reward_id"`
	Title    string `json:"title"`
	Count    int64  `json:"count"`
}

func (s *Statistics) Totals() (*Totals, error) {
	var totals Totals

	if err := s.DB.Model(&models.User{}).Count(&totals.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).Where("is_admin = ?", true).
		Count(&totals.TotalAdmins).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.User{}).
		Select("COALESCE(SUM(points), 0)").Scan(&totals.TotalPoints).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Reward{}).Where("is_active = ?", true).
		Count(&totals.ActiveRewardCount).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Model(&models.Claim{}).Count(&totals.ClaimedCount).Error; err != nil {
		return nil, err
	}

	return &totals, nil
}

// HistoryTotal sums every ledger entry ever written. Equals the sum of user
// balances when the ledger is intact.
func (s *Statistics) HistoryTotal() (int64, error) {
	var total int64
	err := s.DB.Model(&models.PointsHistory{}).
		Select("COALESCE(SUM(amount), 0)").Scan(&total).Error
	return total, err
}

// Leaderboard ranks users by balance. Ties break toward the older account.
func (s *Statistics) Leaderboard(limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	var users []models.User
	err := s.DB.Order("points DESC, created_at ASC").
		Limit(limit).Offset(offset).Find(&users).Error
	return users, err
}

// TopRewards lists the most claimed rewards.
func (s *Statistics) TopRewards(limit int) ([]RewardCount, error) {
	if limit <= 0 {
		limit = 5
	}

	var counts []RewardCount
	err := s.DB.Model(&models.Claim{}).
		Select("claims.reward_id as reward_id, rewards.title as title, COUNT(claims.id) as count").
		Joins("JOIN rewards ON rewards.id = claims.reward_id").
		Group("claims.reward_id, rewards.title").
		Order("count DESC").
		Limit(limit).
		Scan(&counts).Error
	return counts, err
}
