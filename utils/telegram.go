package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"
)

// TelegramSender delivers messages through the Telegram Bot API. It satisfies
// the broadcast Sender interface.
type TelegramSender struct {
	Token   string
	BaseURL string
	Client  *http.Client
}

// NewTelegramSender reads BOT_TOKEN from the environment. A missing token
// yields a sender that fails every send; the server still starts so the HTTP
// API stays usable without a bot.
func NewTelegramSender() *TelegramSender {
	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Println("Warning: BOT_TOKEN not set, Telegram delivery disabled")
	}
	return &TelegramSender{
		Token:   token,
		BaseURL: "https://api.telegram.org",
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// Send posts one message to one chat.
func (t *TelegramSender) Send(chatID, text string) error {
	if t.Token == "" {
		return fmt.Errorf("telegram: BOT_TOKEN not configured")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.Token)
	resp, err := t.Client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram: send to %s failed: %w", chatID, err)
	}
	defer resp.Body.Close()

	var result sendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("telegram: bad response: %w", err)
	}
	if !result.OK {
		return fmt.Errorf("telegram: send to %s rejected: %s", chatID, result.Description)
	}
	return nil
}
