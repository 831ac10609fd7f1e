package postgres

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/botfactory/botfactory/internal/domain/conversation"
)

// clipUTF8 caps s at max bytes without splitting a rune; Postgres rejects
// text values carrying a partial UTF-8 sequence.
func clipUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// CreateTurn appends a logged exchange. Input and output are truncated to the
// storage caps before the insert.
func (s *Store) CreateTurn(ctx context.Context, t *conversation.Turn) error {
	input := clipUTF8(t.Input, conversation.MaxInputLen)
	output := clipUTF8(t.Output, conversation.MaxOutputLen)

	err := s.pool.QueryRow(ctx,
		`INSERT INTO conversation_turns (bot_id, platform_user_id, input, output, language)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		t.BotID, t.PlatformUserID, input, output, t.Language,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create turn: %w", err)
	}
	t.Input = input
	t.Output = output
	return nil
}

// RecentTurns returns the last `limit` turns for (bot, end user), newest-last.
func (s *Store) RecentTurns(ctx context.Context, botID, platformUserID string, limit int) ([]conversation.Turn, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, bot_id, platform_user_id, input, output, language, created_at
		 FROM conversation_turns
		 WHERE bot_id = $1 AND platform_user_id = $2
		 ORDER BY created_at DESC, id DESC LIMIT $3`,
		botID, platformUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	var turns []conversation.Turn
	for rows.Next() {
		var t conversation.Turn
		if err := rows.Scan(&t.ID, &t.BotID, &t.PlatformUserID, &t.Input, &t.Output, &t.Language, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query is newest-first for the LIMIT; callers want chronological order.
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}
