package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AdminSessionState string

const (
	AdminStateIdle                 AdminSessionState = "idle"
	AdminStateAwaitingPointsAmount AdminSessionState = "awaiting_points_amount"
	AdminStateAwaitingPointsReason AdminSessionState = "awaiting_points_reason"
	AdminStateAwaitingBroadcast    AdminSessionState = "awaiting_broadcast"
	AdminStateAwaitingRewardTitle  AdminSessionState = "awaiting_reward_title"
	AdminStateAwaitingRewardCost   AdminSessionState = "awaiting_reward_cost"
)

// AdminSession holds the conversation state of an admin working through a
// multi-step flow (points adjustment, broadcast, reward creation). One row
// per admin; the bot layer reads the state to decide what the next free-text
// message means. Context carries the flow's accumulated inputs as JSON.
type AdminSession struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AdminID   uuid.UUID         `gorm:"type:uuid;uniqueIndex;not null" json:"admin_id"`
	State     AdminSessionState `gorm:"default:idle" json:"state"`
	Context   string            `json:"context"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *AdminSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.State == "" {
		s.State = AdminStateIdle
	}
	return nil
}

// AdminSessionTransitions defines the allowed moves between conversation
// states. Every flow can be abandoned back to idle.
var AdminSessionTransitions = map[AdminSessionState][]AdminSessionState{
	AdminStateIdle: {
		AdminStateAwaitingPointsAmount,
		AdminStateAwaitingBroadcast,
		AdminStateAwaitingRewardTitle,
	},
	AdminStateAwaitingPointsAmount: {AdminStateAwaitingPointsReason, AdminStateIdle},
	AdminStateAwaitingPointsReason: {AdminStateIdle},
	AdminStateAwaitingBroadcast:    {AdminStateIdle},
	AdminStateAwaitingRewardTitle:  {AdminStateAwaitingRewardCost, AdminStateIdle},
	AdminStateAwaitingRewardCost:   {AdminStateIdle},
}

// IsValidSessionTransition checks if a conversation state change is allowed.
func IsValidSessionTransition(from, to AdminSessionState) bool {
	allowed, exists := AdminSessionTransitions[from]
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
