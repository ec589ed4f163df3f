package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
)

type SettingsRepository interface {
	TwitchCredential(ctx context.Context) (*models.TwitchBotCredential, error)
	SaveTwitchCredential(ctx context.Context, cred *models.TwitchBotCredential) error

	ChannelBindings(ctx context.Context, roomID string) ([]*models.ChannelBinding, error)
}

type settingsRepo struct {
	db *sqlx.DB
}

func NewSettingsRepo(db *sqlx.DB) SettingsRepository {
	return &settingsRepo{db: db}
}

func (r *settingsRepo) TwitchCredential(ctx context.Context) (*models.TwitchBotCredential, error) {
	var cred models.TwitchBotCredential

	err := r.db.GetContext(
		ctx,
		&cred,
		"SELECT access_token, refresh_token, bot_username, updated_at FROM twitch_credentials WHERE id = 1",
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNoCredential
	}
	if err != nil {
		return nil, err
	}

	return &cred, nil
}

func (r *settingsRepo) SaveTwitchCredential(ctx context.Context, cred *models.TwitchBotCredential) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO twitch_credentials (id, access_token, refresh_token, bot_username, updated_at)
		 VALUES (1, $1, $2, $3, now())
		 ON CONFLICT (id)
		 DO UPDATE SET access_token = EXCLUDED.access_token, refresh_token = EXCLUDED.refresh_token,
		               bot_username = EXCLUDED.bot_username, updated_at = now()`,
		cred.AccessToken,
		cred.RefreshToken,
		cred.Username,
	)

	return err
}

func (r *settingsRepo) ChannelBindings(ctx context.Context, roomID string) ([]*models.ChannelBinding, error) {
	var bindings []*models.ChannelBinding

	err := r.db.SelectContext(
		ctx,
		&bindings,
		`SELECT room_id, user_id, COALESCE(twitch_channel, '') AS twitch_channel
		 FROM room_user_settings
		 WHERE room_id = $1 AND COALESCE(twitch_channel, '') <> ''`,
		roomID,
	)
	if err != nil {
		return nil, err
	}

	return bindings, nil
}
