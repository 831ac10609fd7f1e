package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/port/messaging"
	"github.com/botfactory/botfactory/internal/port/notifier"
)

// NotifierFactory builds the notifiers for one bot, bound to the bot's own
// platform credential so owner notices come from the owner's bot.
type NotifierFactory func(client messaging.Client, b *bot.Bot) []notifier.Notifier

// NotificationService dispatches owner notifications to all notifiers the
// factory yields for a bot. Delivery is best-effort: failures are logged and
// never interrupt the reply pipeline.
type NotificationService struct {
	build NotifierFactory
}

// NewNotificationService creates a NotificationService. build may be nil,
// which disables notifications.
func NewNotificationService(build NotifierFactory) *NotificationService {
	return &NotificationService{build: build}
}

// Notify sends a notification through every notifier configured for the bot.
func (s *NotificationService) Notify(ctx context.Context, client messaging.Client, b *bot.Bot, n notifier.Notification) {
	if s == nil || s.build == nil {
		return
	}
	for _, provider := range s.build(client, b) {
		if err := provider.Send(ctx, n); err != nil {
			if errors.Is(err, notifier.ErrNotConfigured) {
				continue
			}
			slog.Warn("owner notification failed",
				"provider", provider.Name(),
				"bot", b.ID,
				"error", err,
			)
			continue
		}
		slog.Debug("owner notification sent", "provider", provider.Name(), "bot", b.ID)
	}
}
