// Package enduser defines the end-user domain model: a person interacting
// with one tenant bot through the messaging platform.
package enduser

import "time"

// EndUser is one (bot, platform identity) pair. FirstInteraction anchors the
// trial window; the subscription window, when set, overrides it.
type EndUser struct {
	ID                string     `json:"id"`
	BotID             string     `json:"bot_id"`
	PlatformUserID    string     `json:"platform_user_id"`
	Username          string     `json:"username,omitempty"`
	FirstName         string     `json:"first_name,omitempty"`
	Language          string     `json:"language"`
	FirstInteraction  time.Time  `json:"first_interaction"`
	SubscriptionFrom  *time.Time `json:"subscription_from,omitempty"`
	SubscriptionUntil *time.Time `json:"subscription_until,omitempty"`
	MessageCount      int        `json:"message_count"`
	LastInteraction   time.Time  `json:"last_interaction"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SubscriptionActive reports whether the paid subscription window covers now.
func (u *EndUser) SubscriptionActive(now time.Time) bool {
	if u.SubscriptionFrom == nil || u.SubscriptionUntil == nil {
		return false
	}
	return !now.Before(*u.SubscriptionFrom) && !now.After(*u.SubscriptionUntil)
}

// TrialStart returns the anchor of the 14-day trial window: the first
// recorded interaction, falling back to account creation.
func (u *EndUser) TrialStart() time.Time {
	if !u.FirstInteraction.IsZero() {
		return u.FirstInteraction
	}
	return u.CreatedAt
}
