package usecase

import (
	"context"
	"errors"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/output"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres/repository"
)

type RoomStateUsecase interface {
	// GetRoomState returns nil (not an error) for a missing room. Callers
	// must treat nil distinctly from a room with no current track.
	GetRoomState(ctx context.Context, roomID string) (*output.RoomState, error)
}

type roomStateUsecase struct {
	rooms repository.RoomRepository
}

func NewRoomStateUsecase(rooms repository.RoomRepository) RoomStateUsecase {
	return &roomStateUsecase{rooms: rooms}
}

func (uc *roomStateUsecase) GetRoomState(ctx context.Context, roomID string) (*output.RoomState, error) {
	room, err := uc.rooms.GetByID(ctx, roomID)
	if errors.Is(err, domain.ErrRoomNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state := &output.RoomState{
		RoomID:         room.ID,
		Name:           room.Name,
		PlaylistLength: len(room.Playlist),
		DJDisplayName:  room.DJName,
	}

	if state.DJDisplayName == "" {
		state.DJDisplayName = output.NoDJ
	}

	// Play state is meaningless without a selected track.
	if track := room.CurrentTrack(); track != nil {
		state.CurrentTrack = track
		state.IsPlaying = room.IsPlaying
	}

	return state, nil
}
