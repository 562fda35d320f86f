package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	TelegramID string    `gorm:"uniqueIndex;not null" json:"telegram_id"`
	Username   string    `gorm:"index" json:"username"`
	Name       string    `gorm:"not null" json:"name"`
	Phone      string    `gorm:"index" json:"phone"`
	Email      string    `gorm:"index" json:"email,omitempty"`
	Password   string    `json:"-"`
	Points     int       `gorm:"default:0;index" json:"points"`
	IsAdmin    bool      `gorm:"default:false" json:"is_admin"`
	IsBlocked  bool      `gorm:"default:false" json:"is_blocked"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
