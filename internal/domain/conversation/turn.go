// Package conversation defines the immutable conversation log.
package conversation

import "time"

// Limits applied before persisting a turn; longer text is truncated.
const (
	MaxInputLen  = 1000
	MaxOutputLen = 2000
)

// Turn is one logged exchange between an end user and a bot. Turns are
// append-only and ordered by CreatedAt within a (bot, end user) pair.
type Turn struct {
	ID             int64     `json:"id"`
	BotID          string    `json:"bot_id"`
	PlatformUserID string    `json:"platform_user_id"`
	Input          string    `json:"input"`
	Output         string    `json:"output"`
	Language       string    `json:"language"`
	CreatedAt      time.Time `json:"created_at"`
}
