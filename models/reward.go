package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UnlimitedStock is the sentinel stock value for rewards that are never
// decremented and never run out.
const UnlimitedStock = -1

type Reward struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	CostPoints  int       `gorm:"not null;index" json:"cost_points"`
	Stock       int       `gorm:"default:-1" json:"stock"`
	ImageURL    string    `json:"image_url"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Reward) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r *Reward) HasUnlimitedStock() bool {
	return r.Stock == UnlimitedStock
}

// Available reports whether the reward can currently be claimed.
func (r *Reward) Available() bool {
	return r.IsActive && (r.HasUnlimitedStock() || r.Stock > 0)
}
