package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/auxroom/auxroom/internal/domain/models"
)

type VoiceQueueRepository interface {
	// Upsert inserts the entry or, when the user is already queued,
	// overwrites it in place (including AddedAt).
	Upsert(ctx context.Context, roomID string, entry *models.VoiceQueueEntry) error

	// List returns the room's queue ordered by AddedAt ascending,
	// ties broken by user id.
	List(ctx context.Context, roomID string) ([]*models.VoiceQueueEntry, error)

	// Delete is idempotent, removing an absent entry is not an error.
	Delete(ctx context.Context, roomID, userID string) error
}

type voiceQueueRepo struct {
	db *sqlx.DB
}

func NewVoiceQueueRepo(db *sqlx.DB) VoiceQueueRepository {
	return &voiceQueueRepo{db: db}
}

func (r *voiceQueueRepo) Upsert(ctx context.Context, roomID string, entry *models.VoiceQueueEntry) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO voice_queue (room_id, user_id, username, platform, added_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (room_id, user_id)
		 DO UPDATE SET username = EXCLUDED.username, platform = EXCLUDED.platform, added_at = EXCLUDED.added_at`,
		roomID,
		entry.UserID,
		entry.Username,
		entry.Platform,
		entry.AddedAt,
	)

	return err
}

func (r *voiceQueueRepo) List(ctx context.Context, roomID string) ([]*models.VoiceQueueEntry, error) {
	var entries []*models.VoiceQueueEntry

	err := r.db.SelectContext(
		ctx,
		&entries,
		`SELECT user_id, username, platform, added_at
		 FROM voice_queue
		 WHERE room_id = $1
		 ORDER BY added_at, user_id`,
		roomID,
	)
	if err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *voiceQueueRepo) Delete(ctx context.Context, roomID, userID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM voice_queue WHERE room_id = $1 AND user_id = $2", roomID, userID)

	return err
}
