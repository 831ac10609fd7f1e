package telegram

import (
	"context"
	"fmt"
	"strings"

	"github.com/botfactory/botfactory/internal/port/messaging"
	"github.com/botfactory/botfactory/internal/port/notifier"
)

const providerName = "telegram"

// Notifier delivers owner notifications through the bot's own credential to
// the owner's admin chat and/or broadcast channel.
type Notifier struct {
	client  messaging.Client
	targets []string
}

// NewNotifier creates a Notifier sending to the given chat ids or @channel
// names. Empty targets are skipped.
func NewNotifier(client messaging.Client, targets ...string) *Notifier {
	var kept []string
	for _, t := range targets {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return &Notifier{client: client, targets: kept}
}

func (n *Notifier) Name() string { return providerName }

// Send delivers the summary to every configured target. The first failure is
// returned; remaining targets are still attempted.
func (n *Notifier) Send(ctx context.Context, note notifier.Notification) error {
	if len(n.targets) == 0 {
		return notifier.ErrNotConfigured
	}

	text := format(note)

	var firstErr error
	for _, target := range n.targets {
		if err := n.client.SendTextTo(ctx, target, text); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("notify %s: %w", target, err)
		}
	}
	return firstErr
}

func format(n notifier.Notification) string {
	var b strings.Builder
	b.WriteString("💬 ")
	b.WriteString(n.BotName)
	b.WriteString("\n")
	user := n.Username
	if user == "" {
		user = "nomalum"
	}
	fmt.Fprintf(&b, "Foydalanuvchi: @%s (ID: %s)\n", user, n.UserID)
	if n.Message != "" {
		fmt.Fprintf(&b, "Savol: %s\n", n.Message)
	}
	if n.Response != "" {
		fmt.Fprintf(&b, "Javob: %s", n.Response)
	}
	return b.String()
}
