package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"loyaltybot-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPendingGrantTTL bounds how long a two-step admin grant stays
// resolvable.
const DefaultPendingGrantTTL = 15 * time.Minute

// Fulfillment orchestrates reward claims. The balance debit, the stock
// decrement, the history entry and the claim record commit as one unit: a
// failure at any step leaves the database exactly as before the call.
type Fulfillment struct {
	DB *gorm.DB
	// GrantDeductsStock controls whether an admin grant consumes catalog
	// stock. Grants never debit points either way.
	GrantDeductsStock bool
}

type ClaimResult struct {
	User   models.User   `json:"user"`
	Reward models.Reward `json:"reward"`
	Claim  models.Claim  `json:"claim"`
}

// Claim redeems a reward for a user: validates activity, stock and balance,
// debits the cost, takes a stock unit and records the claim.
func (f *Fulfillment) Claim(userID, rewardID uuid.UUID) (*ClaimResult, error) {
	var result ClaimResult
	err := runInTransaction(f.DB, func(tx *gorm.DB) error {
		var reward models.Reward
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", rewardID).First(&reward).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRewardNotFound
			}
			return err
		}
		if !reward.IsActive {
			return ErrRewardInactive
		}
		if !reward.HasUnlimitedStock() && reward.Stock <= 0 {
			return ErrOutOfStock
		}

		var user models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", userID).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		if user.Points < reward.CostPoints {
			return ErrInsufficientBalance
		}

		// Free rewards skip the ledger: there is no zero-amount entry.
		if reward.CostPoints > 0 {
			newBalance, err := applyDelta(tx, userID, -reward.CostPoints, "reward claim: "+reward.Title, nil)
			if err != nil {
				return err
			}
			user.Points = newBalance
		}

		deducted := false
		if !reward.HasUnlimitedStock() {
			reward.Stock--
			if err := tx.Model(&reward).Update("stock", reward.Stock).Error; err != nil {
				return err
			}
			deducted = true
		}

		claim := models.Claim{
			UserID:        userID,
			RewardID:      rewardID,
			Status:        models.ClaimStatusClaimed,
			CostPoints:    reward.CostPoints,
			DeductedStock: deducted,
			ClaimedAt:     time.Now(),
		}
		if err := tx.Create(&claim).Error; err != nil {
			return err
		}

		result = ClaimResult{User: user, Reward: reward, Claim: claim}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reward claimed: userId=%s rewardId=%s", userID, rewardID)
	return &result, nil
}

// Grant creates a claim on an administrator's authority, bypassing the cost
// check and the debit. Stock is consumed only when GrantDeductsStock is set.
func (f *Fulfillment) Grant(userID, rewardID, actorID uuid.UUID) (*models.Claim, error) {
	var claim *models.Claim
	err := runInTransaction(f.DB, func(tx *gorm.DB) error {
		created, err := f.grant(tx, userID, rewardID, actorID)
		if err != nil {
			return err
		}
		claim = created
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("reward granted: userId=%s rewardId=%s adminId=%s", userID, rewardID, actorID)
	return claim, nil
}

// grant performs the grant inside the caller's transaction. Shared between
// the direct endpoint and pending-grant resolution.
func (f *Fulfillment) grant(tx *gorm.DB, userID, rewardID, actorID uuid.UUID) (*models.Claim, error) {
	var user models.User
	if err := tx.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var reward models.Reward
	if err := tx.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	deducted := false
	if f.GrantDeductsStock && !reward.HasUnlimitedStock() {
		if _, err := decrementStock(tx, rewardID); err != nil {
			return nil, err
		}
		deducted = true
	}

	actor := actorID
	claim := models.Claim{
		UserID:        userID,
		RewardID:      rewardID,
		Status:        models.ClaimStatusClaimed,
		DeductedStock: deducted,
		GrantedBy:     &actor,
		ClaimedAt:     time.Now(),
	}
	if err := tx.Create(&claim).Error; err != nil {
		return nil, err
	}
	return &claim, nil
}

// UpdateClaimStatus moves a claim through its state machine. Cancelling a
// claim gives back what it took: the recorded debit and, when the claim
// consumed a stock unit, that unit.
func (f *Fulfillment) UpdateClaimStatus(claimID uuid.UUID, to models.ClaimStatus, actorID uuid.UUID) (*models.Claim, error) {
	var updated models.Claim
	err := runInTransaction(f.DB, func(tx *gorm.DB) error {
		var claim models.Claim
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", claimID).First(&claim).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClaimNotFound
			}
			return err
		}

		if !models.IsValidClaimTransition(claim.Status, to) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, claim.Status, to)
		}

		now := time.Now()
		switch to {
		case models.ClaimStatusDelivered:
			claim.Status = to
			claim.DeliveredAt = &now
		case models.ClaimStatusCancelled:
			claim.Status = to
			if claim.CostPoints > 0 {
				actor := actorID
				if _, err := applyDelta(tx, claim.UserID, claim.CostPoints, "claim cancelled: refund", &actor); err != nil {
					return err
				}
			}
			if claim.DeductedStock {
				if err := restoreStock(tx, claim.RewardID); err != nil {
					return err
				}
			}
		default:
			return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, claim.Status, to)
		}

		if err := tx.Save(&claim).Error; err != nil {
			return err
		}
		updated = claim
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// UserClaims returns a user's claims, newest first, with their rewards.
func (f *Fulfillment) UserClaims(userID uuid.UUID) ([]models.Claim, error) {
	var claims []models.Claim
	err := f.DB.Preload("Reward").Where("user_id = ?", userID).
		Order("claimed_at DESC").Find(&claims).Error
	return claims, err
}

// CreatePendingGrant stores a durable correlation record for a grant the
// admin will confirm later through the bot conversation.
func (f *Fulfillment) CreatePendingGrant(adminID, userID, rewardID uuid.UUID, ttl time.Duration) (*models.PendingGrant, error) {
	if ttl <= 0 {
		ttl = DefaultPendingGrantTTL
	}

	var user models.User
	if err := f.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	var reward models.Reward
	if err := f.DB.Where("id = ?", rewardID).First(&reward).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRewardNotFound
		}
		return nil, err
	}

	grant := models.PendingGrant{
		AdminID:   adminID,
		UserID:    userID,
		RewardID:  rewardID,
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := f.DB.Create(&grant).Error; err != nil {
		return nil, err
	}

	f.purgeStalePendingGrants()
	return &grant, nil
}

// ResolvePendingGrant consumes a correlation record and performs the grant.
// A record resolves at most once and never after its expiry.
func (f *Fulfillment) ResolvePendingGrant(correlationID uuid.UUID) (*models.Claim, error) {
	var claim *models.Claim
	err := runInTransaction(f.DB, func(tx *gorm.DB) error {
		var grant models.PendingGrant
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", correlationID).First(&grant).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGrantNotFound
			}
			return err
		}

		if grant.ConsumedAt != nil {
			return ErrGrantConsumed
		}
		if grant.Expired(time.Now()) {
			return ErrGrantExpired
		}

		now := time.Now()
		if err := tx.Model(&grant).Update("consumed_at", &now).Error; err != nil {
			return err
		}

		created, err := f.grant(tx, grant.UserID, grant.RewardID, grant.AdminID)
		if err != nil {
			return err
		}
		claim = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claim, nil
}

// purgeStalePendingGrants removes records that can never resolve again.
// Consumed rows are kept for an hour for debugging, expired rows a day.
func (f *Fulfillment) purgeStalePendingGrants() {
	now := time.Now()
	f.DB.Where("consumed_at IS NOT NULL AND consumed_at < ?", now.Add(-1*time.Hour)).
		Delete(&models.PendingGrant{})
	f.DB.Where("consumed_at IS NULL AND expires_at < ?", now.Add(-24*time.Hour)).
		Delete(&models.PendingGrant{})
}
