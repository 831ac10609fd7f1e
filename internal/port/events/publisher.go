// Package events defines the outbound event stream port. Events are
// best-effort platform telemetry; losing one never fails a user reply.
package events

import (
	"context"
	"time"
)

// ReplyEvent records one delivered reply.
type ReplyEvent struct {
	BotID    string    `json:"bot_id"`
	UserID   string    `json:"user_id"`
	Language string    `json:"language"`
	Source   string    `json:"source"`
	Input    string    `json:"input"`
	Output   string    `json:"output"`
	Fallback bool      `json:"fallback"`
	At       time.Time `json:"at"`
}

// LifecycleEvent records a bot runtime state change.
type LifecycleEvent struct {
	BotID string    `json:"bot_id"`
	Name  string    `json:"name"`
	State string    `json:"state"`
	At    time.Time `json:"at"`
}

// Lifecycle states.
const (
	StateStarted = "started"
	StateStopped = "stopped"
	StateFailed  = "failed"
)

// Publisher emits platform events.
type Publisher interface {
	ReplySent(ctx context.Context, ev ReplyEvent) error
	BotState(ctx context.Context, ev LifecycleEvent) error
}

// Nop is a Publisher that discards everything, used when the event stream is
// not configured.
type Nop struct{}

func (Nop) ReplySent(context.Context, ReplyEvent) error    { return nil }
func (Nop) BotState(context.Context, LifecycleEvent) error { return nil }
