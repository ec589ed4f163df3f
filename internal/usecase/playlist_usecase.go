package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres/repository"
	"github.com/auxroom/auxroom/internal/infra/adapters/youtube"
)

const genericFailure = "Something went wrong. Please try again."

// RoomNotifier is told about successful room mutations so live listeners
// (the web socket hub) can refresh.
type RoomNotifier interface {
	RoomUpdated(roomID string)
}

// SongRequestResult is handed back to chat bots verbatim. AddSong never
// returns an error: every caller must be able to acknowledge in chat.
type SongRequestResult struct {
	Success bool
	Message string
	Added   []models.Track
}

type PlaylistUsecase interface {
	AddSong(ctx context.Context, roomID, query, requestedBy string, source models.Source) SongRequestResult
	SetPlayState(ctx context.Context, roomID string, playing bool) error
	Skip(ctx context.Context, roomID string) (*models.Track, error)
}

type playlistUsecase struct {
	rooms    repository.RoomRepository
	provider youtube.Provider
	notifier RoomNotifier
}

func NewPlaylistUsecase(rooms repository.RoomRepository, provider youtube.Provider, notifier RoomNotifier) PlaylistUsecase {
	return &playlistUsecase{
		rooms:    rooms,
		provider: provider,
		notifier: notifier,
	}
}

func (uc *playlistUsecase) AddSong(ctx context.Context, roomID, query, requestedBy string, source models.Source) SongRequestResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return fail("Please tell me which song you'd like to hear.")
	}

	infos, err := uc.provider.Resolve(ctx, query)
	if errors.Is(err, domain.ErrNoResults) {
		return fail("I couldn't find anything for that request.")
	}
	if err != nil {
		slog.Error("resolve song query", slog.Any(constant.Error, err))
		return fail(genericFailure)
	}

	now := time.Now().UTC()

	tracks := make([]models.Track, 0, len(infos))
	for _, info := range infos {
		tracks = append(tracks, newTrack(info, requestedBy, source, now))
	}

	var added []models.Track

	err = uc.rooms.Mutate(ctx, roomID, func(room *models.Room) error {
		added = added[:0]

		wasEmpty := len(room.Playlist) == 0

		for _, track := range tracks {
			if room.HasTrack(track.ID) {
				continue
			}
			room.Playlist = append(room.Playlist, track)
			added = append(added, track)
		}

		// Auto-select on empty idle room. Evaluated inside the same
		// transaction as the append so two simultaneous first-adds
		// cannot both win.
		if wasEmpty && !room.IsPlaying && len(added) > 0 {
			room.CurrentTrackID = added[0].ID
			room.IsPlaying = true
		}

		return nil
	})
	if errors.Is(err, domain.ErrRoomNotFound) {
		return fail("I couldn't find that room.")
	}
	if err != nil {
		slog.Error("append to playlist", slog.Any(constant.Error, err))
		return fail(genericFailure)
	}

	if len(added) == 0 {
		return fail(fmt.Sprintf("%q is already in the playlist.", tracks[0].Title))
	}

	uc.notify(roomID)

	if len(added) == 1 {
		return ok(fmt.Sprintf("Queued up: %q", added[0].Title), added)
	}

	return ok(fmt.Sprintf("Queued up %d songs from the playlist.", len(added)), added)
}

func (uc *playlistUsecase) SetPlayState(ctx context.Context, roomID string, playing bool) error {
	room, err := uc.rooms.GetByID(ctx, roomID)
	if err != nil {
		return err
	}

	if room.CurrentTrackID == "" {
		return domain.ErrNoTrackSelected
	}

	if err := uc.rooms.SetPlayState(ctx, roomID, playing); err != nil {
		return err
	}

	uc.notify(roomID)

	return nil
}

func (uc *playlistUsecase) Skip(ctx context.Context, roomID string) (*models.Track, error) {
	var next models.Track

	err := uc.rooms.Mutate(ctx, roomID, func(room *models.Room) error {
		if len(room.Playlist) == 0 {
			return domain.ErrEmptyPlaylist
		}

		// A missing current index resolves to -1 so the next index
		// wraps to the first track. Deliberate fallback, not an error.
		idx := room.TrackIndex(room.CurrentTrackID)
		nextIdx := (idx + 1) % len(room.Playlist)

		next = room.Playlist[nextIdx]
		room.CurrentTrackID = next.ID
		room.IsPlaying = true

		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notify(roomID)

	return &next, nil
}

func (uc *playlistUsecase) notify(roomID string) {
	if uc.notifier != nil {
		uc.notifier.RoomUpdated(roomID)
	}
}

func newTrack(info youtube.TrackInfo, requestedBy string, source models.Source, addedAt time.Time) models.Track {
	title := info.Title
	if title == "" {
		title = "Untitled"
	}

	artist := info.Artist
	if artist == "" {
		artist = "Unknown Artist"
	}

	return models.Track{
		ID:        info.ID,
		Title:     title,
		Artist:    artist,
		Duration:  float64(info.DurationMS) / 1000,
		Thumbnail: info.Thumbnail,
		AddedBy:   requestedBy,
		AddedAt:   addedAt,
		Source:    source,
	}
}

func fail(message string) SongRequestResult {
	return SongRequestResult{Success: false, Message: message}
}

func ok(message string, added []models.Track) SongRequestResult {
	return SongRequestResult{Success: true, Message: message, Added: added}
}
