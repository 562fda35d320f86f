package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsHistory is the append-only audit trail of balance changes. Rows are
// never updated or deleted; a user's Points column must always equal the sum
// of their entries.
type PointsHistory struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
	Amount    int        `gorm:"not null" json:"amount"`
	Reason    string     `gorm:"not null" json:"reason"`
	ActorID   *uuid.UUID `gorm:"type:uuid" json:"actor_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *PointsHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
