package services

import (
	"errors"
	"fmt"
	"log"

	"loyaltybot-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns point-balance changes. Every change appends a PointsHistory
// row in the same commit unit as the balance update, so the cached balance
// always equals the sum of the user's history entries.
type Ledger struct {
	DB *gorm.DB
}

// ApplyDelta adds amount (positive or negative) to the user's balance and
// records an audit entry. actorID is set when an administrator caused the
// change. Returns the new balance.
func (l *Ledger) ApplyDelta(userID uuid.UUID, amount int, reason string, actorID *uuid.UUID) (int, error) {
	if amount == 0 {
		return 0, fmt.Errorf("%w: amount must be non-zero", ErrValidation)
	}
	if reason == "" {
		return 0, fmt.Errorf("%w: reason is required", ErrValidation)
	}

	var newBalance int
	err := runInTransaction(l.DB, func(tx *gorm.DB) error {
		balance, err := applyDelta(tx, userID, amount, reason, actorID)
		if err != nil {
			return err
		}
		newBalance = balance
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Printf("points updated: userId=%s amount=%d reason=%q", userID, amount, reason)
	return newBalance, nil
}

// applyDelta performs the balance update inside the caller's transaction.
// The user row is locked so concurrent deltas serialize and the
// negative-balance check never runs against a stale balance.
func applyDelta(tx *gorm.DB, userID uuid.UUID, amount int, reason string, actorID *uuid.UUID) (int, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	newBalance := user.Points + amount
	if newBalance < 0 {
		return 0, ErrInsufficientBalance
	}

	if err := tx.Model(&user).Update("points", newBalance).Error; err != nil {
		return 0, err
	}

	entry := models.PointsHistory{
		UserID:  userID,
		Amount:  amount,
		Reason:  reason,
		ActorID: actorID,
	}
	if err := tx.Create(&entry).Error; err != nil {
		return 0, err
	}

	return newBalance, nil
}

// History returns the user's audit entries, newest first.
func (l *Ledger) History(userID uuid.UUID, limit int) ([]models.PointsHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var entries []models.PointsHistory
	err := l.DB.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Find(&entries).Error
	return entries, err
}
