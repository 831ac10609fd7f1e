package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/botfactory/botfactory/internal/domain"
	"github.com/botfactory/botfactory/internal/domain/enduser"
)

const endUserColumns = `id, bot_id, platform_user_id, username, first_name, language,
	first_interaction, subscription_from, subscription_until, message_count, last_interaction, created_at`

func (s *Store) GetEndUser(ctx context.Context, botID, platformUserID string) (*enduser.EndUser, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+endUserColumns+`
		 FROM end_users WHERE bot_id = $1 AND platform_user_id = $2`, botID, platformUserID)

	u, err := scanEndUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get end user %s/%s: %w", botID, platformUserID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get end user %s/%s: %w", botID, platformUserID, err)
	}
	return &u, nil
}

// UpsertEndUser records a contact: the first one creates the row and anchors
// first_interaction, later ones refresh the profile fields and bump the
// message counter.
func (s *Store) UpsertEndUser(ctx context.Context, u *enduser.EndUser) (*enduser.EndUser, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO end_users (bot_id, platform_user_id, username, first_name, language, message_count)
		 VALUES ($1, $2, $3, $4, $5, 1)
		 ON CONFLICT (bot_id, platform_user_id) DO UPDATE SET
		   username = CASE WHEN EXCLUDED.username = '' THEN end_users.username ELSE EXCLUDED.username END,
		   first_name = CASE WHEN EXCLUDED.first_name = '' THEN end_users.first_name ELSE EXCLUDED.first_name END,
		   message_count = end_users.message_count + 1,
		   last_interaction = now()
		 RETURNING `+endUserColumns,
		u.BotID, u.PlatformUserID, u.Username, u.FirstName, u.Language)

	out, err := scanEndUser(row)
	if err != nil {
		return nil, fmt.Errorf("upsert end user %s/%s: %w", u.BotID, u.PlatformUserID, err)
	}
	return &out, nil
}

func (s *Store) SetEndUserLanguage(ctx context.Context, botID, platformUserID, lang string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE end_users SET language = $3 WHERE bot_id = $1 AND platform_user_id = $2`,
		botID, platformUserID, lang)
	if err != nil {
		return fmt.Errorf("set end user language %s/%s: %w", botID, platformUserID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set end user language %s/%s: %w", botID, platformUserID, domain.ErrNotFound)
	}
	return nil
}

func scanEndUser(row scannable) (enduser.EndUser, error) {
	var u enduser.EndUser
	err := row.Scan(&u.ID, &u.BotID, &u.PlatformUserID, &u.Username, &u.FirstName, &u.Language,
		&u.FirstInteraction, &u.SubscriptionFrom, &u.SubscriptionUntil,
		&u.MessageCount, &u.LastInteraction, &u.CreatedAt)
	return u, err
}
