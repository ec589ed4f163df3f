package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
)

type RoomRepository interface {
	GetByID(ctx context.Context, id string) (*models.Room, error)
	List(ctx context.Context) ([]*models.Room, error)

	// Mutate runs fn against the current room state inside a single
	// row-level transaction. fn must be safe to re-execute wholesale.
	Mutate(ctx context.Context, id string, fn func(room *models.Room) error) error

	SetPlayState(ctx context.Context, id string, playing bool) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

const roomColumns = `
	id,
	name,
	owner_id,
	COALESCE(dj_id, '') AS dj_id,
	COALESCE(dj_name, '') AS dj_name,
	playlist,
	COALESCE(current_track_id, '') AS current_track_id,
	is_playing,
	created_at,
	updated_at
`

func (r *roomRepo) GetByID(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room

	err := r.db.GetContext(ctx, &room, "SELECT "+roomColumns+" FROM rooms WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}

	return &room, nil
}

func (r *roomRepo) List(ctx context.Context) ([]*models.Room, error) {
	var rooms []*models.Room

	err := r.db.SelectContext(ctx, &rooms, "SELECT "+roomColumns+" FROM rooms ORDER BY id")
	if err != nil {
		return nil, err
	}

	return rooms, nil
}

func (r *roomRepo) Mutate(ctx context.Context, id string, fn func(room *models.Room) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var room models.Room

	err = tx.GetContext(ctx, &room, "SELECT "+roomColumns+" FROM rooms WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrRoomNotFound
	}
	if err != nil {
		return err
	}

	if err := fn(&room); err != nil {
		return err
	}

	_, err = tx.ExecContext(
		ctx,
		`UPDATE rooms
		 SET playlist = $1, current_track_id = NULLIF($2, ''), is_playing = $3, updated_at = now()
		 WHERE id = $4`,
		room.Playlist,
		room.CurrentTrackID,
		room.IsPlaying,
		id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *roomRepo) SetPlayState(ctx context.Context, id string, playing bool) error {
	res, err := r.db.ExecContext(ctx, "UPDATE rooms SET is_playing = $1, updated_at = now() WHERE id = $2", playing, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrRoomNotFound
	}

	return nil
}
