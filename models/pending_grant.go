package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PendingGrant is a durable correlation record for the two-step admin grant
// flow: the admin picks a user and reward, the bot layer carries the grant's
// ID through the conversation, and the grant is resolved later by that ID.
// Rows are single-use and expire; they survive process restarts.
type PendingGrant struct {
	ID         uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AdminID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"admin_id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null" json:"user_id"`
	RewardID   uuid.UUID  `gorm:"type:uuid;not null" json:"reward_id"`
	ExpiresAt  time.Time  `gorm:"not null;index" json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (pg *PendingGrant) BeforeCreate(tx *gorm.DB) error {
	if pg.ID == uuid.Nil {
		pg.ID = uuid.New()
	}
	return nil
}

func (pg *PendingGrant) Expired(now time.Time) bool {
	return now.After(pg.ExpiresAt)
}
