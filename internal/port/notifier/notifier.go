// Package notifier defines the owner-notification port (interface).
package notifier

import (
	"context"
	"errors"
)

// ErrNotConfigured is returned when a notifier has no delivery target.
var ErrNotConfigured = errors.New("notifier: not configured")

// Notification is a tenant-facing event summary delivered best-effort to the
// bot owner's configured channel.
type Notification struct {
	BotName  string `json:"bot_name"`
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
	Response string `json:"response"`
	Source   string `json:"source"` // e.g. "reply.sent", "operator.requested"
}

// Notifier is the port interface for owner notifications. Send failures are
// logged by callers and never block reply delivery.
type Notifier interface {
	// Name returns the unique identifier for this notifier (e.g. "telegram").
	Name() string

	// Send delivers a notification.
	Send(ctx context.Context, n Notification) error
}
