package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel is a directory entry for channels the bot may require users to
// subscribe to. Subscription checking itself happens in the bot layer.
type Channel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Link        string    `gorm:"not null" json:"link"`
	ChannelID   string    `gorm:"uniqueIndex;not null" json:"channel_id"`
	Description string    `json:"description"`
	IsRequired  bool      `gorm:"default:true" json:"is_required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ch *Channel) BeforeCreate(tx *gorm.DB) error {
	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	return nil
}
