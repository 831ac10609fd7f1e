// Package messaging defines the messaging platform port (interface).
package messaging

import (
	"context"
	"time"

	"github.com/botfactory/botfactory/internal/domain/update"
)

// Chat actions shown to the user while the bot works.
const ActionTyping = "typing"

// Button is one inline-keyboard button. Exactly one of CallbackData or URL
// should be set.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Keyboard is an inline keyboard: rows of buttons.
type Keyboard struct {
	Rows [][]Button
}

// Client talks to the messaging platform on behalf of one bot credential.
// All calls are timeout-bounded; transient transport failures surface as
// errors the caller may retry.
type Client interface {
	// Pull long-polls for raw events with sequence id >= offset, blocking up
	// to the given wait. An empty batch is not an error.
	Pull(ctx context.Context, offset int64, wait time.Duration) ([]update.Raw, error)

	// SendText delivers plain text to a chat. kb may be nil.
	SendText(ctx context.Context, chatID int64, text string, kb *Keyboard) error

	// SendTextTo delivers plain text to a named target such as an
	// "@channel" broadcast channel or a stringified chat id.
	SendTextTo(ctx context.Context, target, text string) error

	// SendMedia delivers a media reference (photo URL or platform file id)
	// with a caption.
	SendMedia(ctx context.Context, chatID int64, mediaRef, caption string) error

	// SendChatAction shows a transient status indicator (best-effort).
	SendChatAction(ctx context.Context, chatID int64, action string) error

	// AnswerCallback acknowledges a button press so the client stops its
	// loading indicator.
	AnswerCallback(ctx context.Context, callbackID string) error

	// MediaURL resolves a platform file id to a downloadable URL.
	MediaURL(ctx context.Context, fileID string) (string, error)

	// Validate checks that the bot credential is accepted by the platform.
	Validate(ctx context.Context) error
}

// Dialer creates a Client bound to a bot credential. One dialer is shared
// process-wide; clients are cheap per-bot handles over a shared transport.
type Dialer interface {
	Dial(token string) Client
}
