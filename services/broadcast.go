package services

import (
	"fmt"
	"log"
	"time"

	"loyaltybot-backend/models"

	"gorm.io/gorm"
)

// Sender delivers one message to one chat. Implemented by the Telegram
// client in production and by fakes in tests.
type Sender interface {
	Send(chatID, text string) error
}

const (
	SegmentAll    = "all"
	SegmentAdmins = "admins"
	SegmentUsers  = "users"
)

// DefaultBroadcastDelay paces consecutive sends so the bot stays under the
// Telegram rate limit.
const DefaultBroadcastDelay = 50 * time.Millisecond

// Broadcaster fans a message out to a segment of the user base. One
// recipient failing never aborts the run.
type Broadcaster struct {
	DB     *gorm.DB
	Sender Sender
	// Delay is the pause after each successful send. Zero means
	// DefaultBroadcastDelay; negative disables pacing.
	Delay time.Duration
}

type BroadcastResult struct {
	SuccessCount int `json:"success_count"`
	FailCount    int `json:"fail_count"`
	Total        int `json:"total"`
}

// Broadcast sends text to every reachable member of the segment. Blocked
// users and users without a Telegram chat are skipped before counting.
func (b *Broadcaster) Broadcast(segment, text string) (*BroadcastResult, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: broadcast text is required", ErrValidation)
	}

	query := b.DB.Where("is_blocked = ?", false).Where("telegram_id <> ''")
	switch segment {
	case SegmentAll:
	case SegmentAdmins:
		query = query.Where("is_admin = ?", true)
	case SegmentUsers:
		query = query.Where("is_admin = ?", false)
	default:
		return nil, fmt.Errorf("%w: unknown segment %q", ErrValidation, segment)
	}

	var recipients []models.User
	if err := query.Find(&recipients).Error; err != nil {
		return nil, err
	}

	delay := b.Delay
	if delay == 0 {
		delay = DefaultBroadcastDelay
	}

	result := BroadcastResult{Total: len(recipients)}
	for _, user := range recipients {
		if err := b.Sender.Send(user.TelegramID, text); err != nil {
			log.Printf("broadcast send failed: userId=%s error=%v", user.ID, err)
			result.FailCount++
			continue
		}
		result.SuccessCount++
		if delay > 0 {
			time.Sleep(delay)
		}
	}

	log.Printf("broadcast finished: segment=%s success=%d failed=%d", segment, result.SuccessCount, result.FailCount)
	return &result, nil
}
