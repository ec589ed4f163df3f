package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/adapters/memory"
	"github.com/auxroom/auxroom/internal/infra/adapters/youtube"
	"github.com/auxroom/auxroom/internal/usecase"
)

type stubProvider struct {
	infos []youtube.TrackInfo
	err   error
}

func (s *stubProvider) Resolve(ctx context.Context, query string) ([]youtube.TrackInfo, error) {
	return s.infos, s.err
}

type recordingNotifier struct {
	mu      sync.Mutex
	roomIDs []string
}

func (n *recordingNotifier) RoomUpdated(roomID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.roomIDs = append(n.roomIDs, roomID)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.roomIDs)
}

func seedRoom(t *testing.T, rooms *memory.RoomRepository, room *models.Room) {
	t.Helper()
	if room.ID == "" {
		room.ID = "room-1"
	}
	rooms.Put(room)
}

func info(id, title string) youtube.TrackInfo {
	return youtube.TrackInfo{ID: id, Title: title, Artist: "Artist", DurationMS: 200000}
}

func TestAddSongAutoSelectsOnEmptyIdleRoom(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{ID: "room-1", Name: "Test"})

	notifier := &recordingNotifier{}
	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{infos: []youtube.TrackInfo{info("vid1", "First Song")}}, notifier)

	res := uc.AddSong(context.Background(), "room-1", "first song", "alice (Twitch)", models.SourceTwitch)
	if !res.Success {
		t.Fatalf("AddSong failed: %s", res.Message)
	}
	if res.Message != `Queued up: "First Song"` {
		t.Fatalf("unexpected message: %s", res.Message)
	}

	room, err := rooms.GetByID(context.Background(), "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if room.CurrentTrackID != "vid1" {
		t.Fatalf("expected current track vid1, got %q", room.CurrentTrackID)
	}
	if !room.IsPlaying {
		t.Fatal("expected playback to start on the first track of an idle room")
	}
	if notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", notifier.count())
	}
}

func TestAddSongLeavesPlaybackAloneWhenPlaylistNotEmpty(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID:             "room-1",
		Playlist:       models.Playlist{{ID: "vid1", Title: "First"}},
		CurrentTrackID: "vid1",
		IsPlaying:      false,
	})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{infos: []youtube.TrackInfo{info("vid2", "Second")}}, nil)

	res := uc.AddSong(context.Background(), "room-1", "second", "bob (Discord)", models.SourceDiscord)
	if !res.Success {
		t.Fatalf("AddSong failed: %s", res.Message)
	}

	room, _ := rooms.GetByID(context.Background(), "room-1")
	if room.CurrentTrackID != "vid1" {
		t.Fatalf("current track changed to %q", room.CurrentTrackID)
	}
	if room.IsPlaying {
		t.Fatal("playback started on a non-empty room")
	}
}

func TestAddSongRejectsDuplicate(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{ID: "room-1"})

	notifier := &recordingNotifier{}
	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{infos: []youtube.TrackInfo{info("vid1", "Song")}}, notifier)

	if res := uc.AddSong(context.Background(), "room-1", "song", "alice", models.SourceWeb); !res.Success {
		t.Fatalf("first add failed: %s", res.Message)
	}

	res := uc.AddSong(context.Background(), "room-1", "song", "bob", models.SourceWeb)
	if res.Success {
		t.Fatal("duplicate add succeeded")
	}
	if !strings.Contains(res.Message, "already in the playlist") {
		t.Fatalf("unexpected duplicate message: %s", res.Message)
	}

	room, _ := rooms.GetByID(context.Background(), "room-1")
	if len(room.Playlist) != 1 {
		t.Fatalf("expected 1 track, got %d", len(room.Playlist))
	}
	if notifier.count() != 1 {
		t.Fatalf("duplicate add notified, count %d", notifier.count())
	}
}

func TestAddSongPlaylistBatchSkipsDuplicates(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID:       "room-1",
		Playlist: models.Playlist{{ID: "vid1", Title: "Already There"}},
	})

	provider := &stubProvider{infos: []youtube.TrackInfo{
		info("vid1", "Already There"),
		info("vid2", "New One"),
		info("vid3", "Another"),
	}}
	uc := usecase.NewPlaylistUsecase(rooms, provider, nil)

	res := uc.AddSong(context.Background(), "room-1", "https://youtube.com/playlist?list=PL1", "alice", models.SourceWeb)
	if !res.Success {
		t.Fatalf("batch add failed: %s", res.Message)
	}
	if len(res.Added) != 2 {
		t.Fatalf("expected 2 added, got %d", len(res.Added))
	}
	if res.Message != "Queued up 2 songs from the playlist." {
		t.Fatalf("unexpected message: %s", res.Message)
	}
}

func TestAddSongEmptyQuery(t *testing.T) {
	uc := usecase.NewPlaylistUsecase(memory.NewRoomRepository(), &stubProvider{}, nil)

	res := uc.AddSong(context.Background(), "room-1", "   ", "alice", models.SourceTwitch)
	if res.Success {
		t.Fatal("empty query succeeded")
	}
	if !strings.Contains(res.Message, "which song") {
		t.Fatalf("unexpected message: %s", res.Message)
	}
}

func TestAddSongNoResults(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{ID: "room-1"})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{err: domain.ErrNoResults}, nil)

	res := uc.AddSong(context.Background(), "room-1", "asdfgh", "alice", models.SourceTwitch)
	if res.Success {
		t.Fatal("no-results query succeeded")
	}
	if res.Message != "I couldn't find anything for that request." {
		t.Fatalf("unexpected message: %s", res.Message)
	}
}

func TestAddSongMissingRoom(t *testing.T) {
	uc := usecase.NewPlaylistUsecase(memory.NewRoomRepository(), &stubProvider{infos: []youtube.TrackInfo{info("vid1", "Song")}}, nil)

	res := uc.AddSong(context.Background(), "nope", "song", "alice", models.SourceTwitch)
	if res.Success {
		t.Fatal("add to missing room succeeded")
	}
	if res.Message != "I couldn't find that room." {
		t.Fatalf("unexpected message: %s", res.Message)
	}
}

func TestSkipAdvancesAndWraps(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID: "room-1",
		Playlist: models.Playlist{
			{ID: "vid1", Title: "First"},
			{ID: "vid2", Title: "Second"},
		},
		CurrentTrackID: "vid2",
		IsPlaying:      false,
	})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{}, nil)

	track, err := uc.Skip(context.Background(), "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if track.ID != "vid1" {
		t.Fatalf("expected wrap to vid1, got %s", track.ID)
	}

	room, _ := rooms.GetByID(context.Background(), "room-1")
	if !room.IsPlaying {
		t.Fatal("skip must resume playback")
	}
}

func TestSkipSingleTrackWrapsToItself(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID:             "room-1",
		Playlist:       models.Playlist{{ID: "vid1", Title: "Only"}},
		CurrentTrackID: "vid1",
	})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{}, nil)

	track, err := uc.Skip(context.Background(), "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if track.ID != "vid1" {
		t.Fatalf("expected vid1, got %s", track.ID)
	}
}

func TestSkipWithoutCurrentSelectsFirst(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID: "room-1",
		Playlist: models.Playlist{
			{ID: "vid1", Title: "First"},
			{ID: "vid2", Title: "Second"},
		},
	})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{}, nil)

	track, err := uc.Skip(context.Background(), "room-1")
	if err != nil {
		t.Fatal(err)
	}
	if track.ID != "vid1" {
		t.Fatalf("expected vid1, got %s", track.ID)
	}
}

func TestSkipEmptyPlaylist(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{ID: "room-1"})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{}, nil)

	if _, err := uc.Skip(context.Background(), "room-1"); !errors.Is(err, domain.ErrEmptyPlaylist) {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}
}

func TestSetPlayStateRequiresSelectedTrack(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID:       "room-1",
		Playlist: models.Playlist{{ID: "vid1"}},
	})

	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{}, nil)

	if err := uc.SetPlayState(context.Background(), "room-1", true); !errors.Is(err, domain.ErrNoTrackSelected) {
		t.Fatalf("expected ErrNoTrackSelected, got %v", err)
	}
}

func TestSetPlayStateMissingRoom(t *testing.T) {
	uc := usecase.NewPlaylistUsecase(memory.NewRoomRepository(), &stubProvider{}, nil)

	if err := uc.SetPlayState(context.Background(), "nope", true); !errors.Is(err, domain.ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSetPlayStatePauses(t *testing.T) {
	rooms := memory.NewRoomRepository()
	seedRoom(t, rooms, &models.Room{
		ID:             "room-1",
		Playlist:       models.Playlist{{ID: "vid1"}},
		CurrentTrackID: "vid1",
		IsPlaying:      true,
	})

	notifier := &recordingNotifier{}
	uc := usecase.NewPlaylistUsecase(rooms, &stubProvider{}, notifier)

	if err := uc.SetPlayState(context.Background(), "room-1", false); err != nil {
		t.Fatal(err)
	}

	room, _ := rooms.GetByID(context.Background(), "room-1")
	if room.IsPlaying {
		t.Fatal("room still playing")
	}
	if notifier.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", notifier.count())
	}
}
