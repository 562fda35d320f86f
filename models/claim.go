package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClaimStatus string

const (
	ClaimStatusClaimed   ClaimStatus = "claimed"
	ClaimStatusDelivered ClaimStatus = "delivered"
	ClaimStatusCancelled ClaimStatus = "cancelled"
)

// Claim records that a user redeemed (or was granted) a reward. CostPoints
// snapshots the debit taken at claim time so refunds on cancellation do not
// depend on the reward's current price; DeductedStock records whether this
// claim consumed a stock unit.
type Claim struct {
	ID            uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	User          User        `gorm:"foreignKey:UserID" json:"-"`
	RewardID      uuid.UUID   `gorm:"type:uuid;not null;index" json:"reward_id"`
	Reward        Reward      `gorm:"foreignKey:RewardID" json:"reward,omitempty"`
	Status        ClaimStatus `gorm:"default:claimed;index" json:"status"`
	CostPoints    int         `gorm:"default:0" json:"cost_points"`
	DeductedStock bool        `gorm:"default:false" json:"deducted_stock"`
	GrantedBy     *uuid.UUID  `gorm:"type:uuid" json:"granted_by,omitempty"`
	ClaimedAt     time.Time   `json:"claimed_at"`
	DeliveredAt   *time.Time  `json:"delivered_at,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

func (cl *Claim) BeforeCreate(tx *gorm.DB) error {
	if cl.ID == uuid.Nil {
		cl.ID = uuid.New()
	}
	if cl.ClaimedAt.IsZero() {
		cl.ClaimedAt = time.Now()
	}
	return nil
}

// ClaimTransitions defines the valid claim status state machine. Delivered
// and cancelled are terminal.
var ClaimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusClaimed:   {ClaimStatusDelivered, ClaimStatusCancelled},
	ClaimStatusDelivered: {},
	ClaimStatusCancelled: {},
}

// IsValidClaimTransition checks if a claim status transition is allowed.
func IsValidClaimTransition(from, to ClaimStatus) bool {
	allowed, exists := ClaimTransitions[from]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
