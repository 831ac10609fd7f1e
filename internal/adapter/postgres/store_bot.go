package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/botfactory/botfactory/internal/domain"
	"github.com/botfactory/botfactory/internal/domain/bot"
)

const botColumns = `id, name, token_enc, owner_tier, active, admin_chat_id, notify_channel, created_at, updated_at`

func (s *Store) ListBots(ctx context.Context) ([]bot.Bot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+botColumns+` FROM bots ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list bots: %w", err)
	}
	defer rows.Close()

	return s.collectBots(rows)
}

func (s *Store) ListActiveBots(ctx context.Context) ([]bot.Bot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+botColumns+` FROM bots WHERE active ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list active bots: %w", err)
	}
	defer rows.Close()

	return s.collectBots(rows)
}

func (s *Store) GetBot(ctx context.Context, id string) (*bot.Bot, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+botColumns+` FROM bots WHERE id = $1`, id)

	b, err := s.scanBot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get bot %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get bot %s: %w", id, err)
	}
	return &b, nil
}

func (s *Store) CreateBot(ctx context.Context, req bot.CreateRequest) (*bot.Bot, error) {
	tokenEnc, err := bot.EncryptToken(req.Token, s.tokenKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt token: %w", err)
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO bots (name, token_enc, owner_tier, admin_chat_id, notify_channel)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+botColumns,
		req.Name, tokenEnc, string(req.OwnerTier), req.AdminChatID, req.NotifyChannel)

	b, err := s.scanBot(row)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &b, nil
}

func (s *Store) SetBotActive(ctx context.Context, id string, active bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE bots SET active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("set bot active %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set bot active %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) DeleteBot(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM bots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bot %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete bot %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (s *Store) collectBots(rows pgx.Rows) ([]bot.Bot, error) {
	var bots []bot.Bot
	for rows.Next() {
		b, err := s.scanBot(rows)
		if err != nil {
			return nil, err
		}
		bots = append(bots, b)
	}
	return bots, rows.Err()
}

func (s *Store) scanBot(row scannable) (bot.Bot, error) {
	var b bot.Bot
	var tokenEnc []byte
	err := row.Scan(&b.ID, &b.Name, &tokenEnc, &b.OwnerTier, &b.Active,
		&b.AdminChatID, &b.NotifyChannel, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	token, err := bot.DecryptToken(tokenEnc, s.tokenKey)
	if err != nil {
		return b, fmt.Errorf("decrypt token for bot %s: %w", b.ID, err)
	}
	b.Token = token
	return b, nil
}
