package services

import (
	"errors"

	"loyaltybot-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Catalog owns reward definitions and their stock counters.
type Catalog struct {
	DB *gorm.DB
}

func (ct *Catalog) Get(rewardID uuid.UUID) (*models.Reward, error) {
	var reward models.Reward
	if err := ct.DB.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}
	return &reward, nil
}

// ActiveRewards lists claimable rewards, cheapest first.
func (ct *Catalog) ActiveRewards() ([]models.Reward, error) {
	var rewards []models.Reward
	err := ct.DB.Where("is_active = ?", true).
		Order("cost_points ASC").Find(&rewards).Error
	return rewards, err
}

// IsAvailable reports whether the reward is active and in stock.
func (ct *Catalog) IsAvailable(rewardID uuid.UUID) (bool, error) {
	reward, err := ct.Get(rewardID)
	if err != nil {
		return false, err
	}
	return reward.Available(), nil
}

// DecrementStock takes one unit of stock and returns the remaining count.
// Unlimited stock is returned unchanged without a write.
func (ct *Catalog) DecrementStock(rewardID uuid.UUID) (int, error) {
	var newStock int
	err := runInTransaction(ct.DB, func(tx *gorm.DB) error {
		stock, err := decrementStock(tx, rewardID)
		if err != nil {
			return err
		}
		newStock = stock
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newStock, nil
}

// decrementStock locks the reward row so concurrent claims serialize: a
// reward with stock N allows exactly N successful decrements, never more,
// and stock never goes negative.
func decrementStock(tx *gorm.DB, rewardID uuid.UUID) (int, error) {
	var reward models.Reward
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrRewardNotFound
		}
		return 0, err
	}

	if reward.HasUnlimitedStock() {
		return models.UnlimitedStock, nil
	}
	if reward.Stock <= 0 {
		return 0, ErrOutOfStock
	}

	reward.Stock--
	if err := tx.Model(&reward).Update("stock", reward.Stock).Error; err != nil {
		return 0, err
	}
	return reward.Stock, nil
}

// restoreStock puts one unit back after a cancellation. No-op for unlimited
// stock.
func restoreStock(tx *gorm.DB, rewardID uuid.UUID) error {
	var reward models.Reward
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRewardNotFound
		}
		return err
	}

	if reward.HasUnlimitedStock() {
		return nil
	}
	return tx.Model(&reward).Update("stock", gorm.Expr("stock + ?", 1)).Error
}
