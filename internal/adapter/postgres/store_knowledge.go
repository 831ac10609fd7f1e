package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/botfactory/botfactory/internal/domain/knowledge"
)

const knowledgeColumns = `id, bot_id, kind, source_name, content, media_ref, created_at`

func (s *Store) ListKnowledge(ctx context.Context, botID string) ([]knowledge.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+knowledgeColumns+`
		 FROM knowledge_entries WHERE bot_id = $1 ORDER BY created_at ASC`, botID)
	if err != nil {
		return nil, fmt.Errorf("list knowledge: %w", err)
	}
	defer rows.Close()

	return collectKnowledge(rows)
}

func (s *Store) ListKnowledgeByKind(ctx context.Context, botID string, kind knowledge.Kind) ([]knowledge.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+knowledgeColumns+`
		 FROM knowledge_entries WHERE bot_id = $1 AND kind = $2 ORDER BY created_at ASC`,
		botID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list knowledge by kind: %w", err)
	}
	defer rows.Close()

	return collectKnowledge(rows)
}

func collectKnowledge(rows pgx.Rows) ([]knowledge.Entry, error) {
	var entries []knowledge.Entry
	for rows.Next() {
		var e knowledge.Entry
		if err := rows.Scan(&e.ID, &e.BotID, &e.Kind, &e.SourceName, &e.Content, &e.MediaRef, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan knowledge entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
