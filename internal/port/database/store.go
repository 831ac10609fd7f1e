// Package database defines the persistent store port (interface).
package database

import (
	"context"

	"github.com/botfactory/botfactory/internal/domain/bot"
	"github.com/botfactory/botfactory/internal/domain/conversation"
	"github.com/botfactory/botfactory/internal/domain/enduser"
	"github.com/botfactory/botfactory/internal/domain/knowledge"
)

// Store is the port interface for persistence. Every operation is one short
// transaction; callers never hold a store operation open across an AI or
// network call.
type Store interface {
	// Bots
	ListBots(ctx context.Context) ([]bot.Bot, error)
	ListActiveBots(ctx context.Context) ([]bot.Bot, error)
	GetBot(ctx context.Context, id string) (*bot.Bot, error)
	CreateBot(ctx context.Context, req bot.CreateRequest) (*bot.Bot, error)
	SetBotActive(ctx context.Context, id string, active bool) error
	DeleteBot(ctx context.Context, id string) error

	// End users
	GetEndUser(ctx context.Context, botID, platformUserID string) (*enduser.EndUser, error)
	// UpsertEndUser creates the record on first contact and bumps the
	// interaction counters on subsequent contacts, preserving
	// first_interaction.
	UpsertEndUser(ctx context.Context, u *enduser.EndUser) (*enduser.EndUser, error)
	SetEndUserLanguage(ctx context.Context, botID, platformUserID, lang string) error

	// Conversation log
	CreateTurn(ctx context.Context, t *conversation.Turn) error
	// RecentTurns returns the last `limit` turns for (bot, end user),
	// newest-last.
	RecentTurns(ctx context.Context, botID, platformUserID string, limit int) ([]conversation.Turn, error)

	// Knowledge base (read-only to this service)
	ListKnowledge(ctx context.Context, botID string) ([]knowledge.Entry, error)
	ListKnowledgeByKind(ctx context.Context, botID string, kind knowledge.Kind) ([]knowledge.Entry, error)
}
