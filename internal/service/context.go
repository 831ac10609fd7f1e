package service

import (
	"context"
	"fmt"
	"time"

	"github.com/botfactory/botfactory/internal/domain/knowledge"
	"github.com/botfactory/botfactory/internal/port/database"
)

// Cache is the in-process cache the context builder keeps composed knowledge
// text in between polls.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ContextService assembles the per-message prompt context: the bot's
// knowledge text and the user's recent conversation turns.
type ContextService struct {
	store           database.Store
	cache           Cache
	knowledgeTTL    time.Duration
	knowledgeBudget int
	historyDepth    int
}

// NewContextService creates a ContextService. cache may be nil, which
// disables caching.
func NewContextService(store database.Store, cache Cache, knowledgeTTL time.Duration, knowledgeBudget, historyDepth int) *ContextService {
	return &ContextService{
		store:           store,
		cache:           cache,
		knowledgeTTL:    knowledgeTTL,
		knowledgeBudget: knowledgeBudget,
		historyDepth:    historyDepth,
	}
}

// Knowledge returns the bot's composed knowledge text, serving from cache
// when fresh.
func (s *ContextService) Knowledge(ctx context.Context, botID string) (string, error) {
	key := "knowledge:" + botID
	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			return string(data), nil
		}
	}

	entries, err := s.store.ListKnowledge(ctx, botID)
	if err != nil {
		return "", fmt.Errorf("load knowledge: %w", err)
	}
	text := knowledge.Compose(entries, s.knowledgeBudget)

	if s.cache != nil && text != "" {
		_ = s.cache.Set(ctx, key, []byte(text), s.knowledgeTTL)
	}
	return text, nil
}

// Products returns the bot's product entries for image matching.
func (s *ContextService) Products(ctx context.Context, botID string) ([]knowledge.Entry, error) {
	entries, err := s.store.ListKnowledgeByKind(ctx, botID, knowledge.KindProduct)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	return entries, nil
}

// History returns the user's recent turns formatted for the prompt.
func (s *ContextService) History(ctx context.Context, botID, platformUserID string) (string, error) {
	turns, err := s.store.RecentTurns(ctx, botID, platformUserID, s.historyDepth)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	return FormatHistory(turns), nil
}

// Invalidate drops the cached knowledge for a bot, used on restart so
// dashboard edits take effect immediately.
func (s *ContextService) Invalidate(ctx context.Context, botID string) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, "knowledge:"+botID)
	}
}
