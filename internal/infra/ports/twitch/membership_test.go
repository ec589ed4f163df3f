package twitch_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/adapters/memory"
	twitchport "github.com/auxroom/auxroom/internal/infra/ports/twitch"
)

type fakeChat struct {
	mu      sync.Mutex
	joins   []string
	departs []string
}

func (f *fakeChat) Join(channels ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = append(f.joins, channels...)
}

func (f *fakeChat) Depart(channel string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.departs = append(f.departs, channel)
}

func (f *fakeChat) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joins = nil
	f.departs = nil
}

func (f *fakeChat) joined() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.joins...)
	sort.Strings(out)
	return out
}

func (f *fakeChat) departed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.departs...)
}

// mutableSettings is a bindings store the test can edit between cycles.
type mutableSettings struct {
	mu       sync.Mutex
	bindings map[string][]*models.ChannelBinding
	err      error
}

func newMutableSettings() *mutableSettings {
	return &mutableSettings{bindings: make(map[string][]*models.ChannelBinding)}
}

func (s *mutableSettings) TwitchCredential(ctx context.Context) (*models.TwitchBotCredential, error) {
	return nil, domain.ErrNoCredential
}

func (s *mutableSettings) SaveTwitchCredential(ctx context.Context, cred *models.TwitchBotCredential) error {
	return nil
}

func (s *mutableSettings) ChannelBindings(ctx context.Context, roomID string) ([]*models.ChannelBinding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	return append([]*models.ChannelBinding(nil), s.bindings[roomID]...), nil
}

func (s *mutableSettings) set(roomID string, channels ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bindings[roomID] = nil
	for _, ch := range channels {
		s.bindings[roomID] = append(s.bindings[roomID], &models.ChannelBinding{
			RoomID:        roomID,
			TwitchChannel: ch,
		})
	}
}

func (s *mutableSettings) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func seedRooms(ids ...string) *memory.RoomRepository {
	rooms := memory.NewRoomRepository()
	for _, id := range ids {
		rooms.Put(&models.Room{ID: id})
	}
	return rooms
}

func TestSyncJoinsBoundChannels(t *testing.T) {
	rooms := seedRooms("room-a")
	settings := newMutableSettings()
	settings.set("room-a", " StreamerOne ", "STREAMERTWO")

	s := twitchport.NewSynchronizer(rooms, settings)
	chat := &fakeChat{}

	s.Sync(context.Background(), chat)

	want := []string{"streamerone", "streamertwo"}
	got := chat.joined()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected joins %v, got %v", want, got)
	}

	if roomID, ok := s.RoomFor("StreamerOne"); !ok || roomID != "room-a" {
		t.Fatalf("RoomFor lookup failed: %q %v", roomID, ok)
	}
}

func TestSyncIsNoopWhenUnchanged(t *testing.T) {
	rooms := seedRooms("room-a")
	settings := newMutableSettings()
	settings.set("room-a", "streamerone")

	s := twitchport.NewSynchronizer(rooms, settings)
	chat := &fakeChat{}

	s.Sync(context.Background(), chat)
	chat.reset()

	s.Sync(context.Background(), chat)
	if len(chat.joined()) != 0 || len(chat.departed()) != 0 {
		t.Fatalf("unchanged cycle produced joins %v departs %v", chat.joined(), chat.departed())
	}
}

func TestSyncLeavesUnboundChannels(t *testing.T) {
	rooms := seedRooms("room-a")
	settings := newMutableSettings()
	settings.set("room-a", "streamerone", "streamertwo")

	s := twitchport.NewSynchronizer(rooms, settings)
	chat := &fakeChat{}

	s.Sync(context.Background(), chat)
	chat.reset()

	settings.set("room-a", "streamerone")
	s.Sync(context.Background(), chat)

	departs := chat.departed()
	if len(departs) != 1 || departs[0] != "streamertwo" {
		t.Fatalf("expected depart of streamertwo, got %v", departs)
	}

	if _, ok := s.RoomFor("streamertwo"); ok {
		t.Fatal("departed channel still resolves to a room")
	}
}

func TestSyncKeepsMembershipOnStoreError(t *testing.T) {
	rooms := seedRooms("room-a")
	settings := newMutableSettings()
	settings.set("room-a", "streamerone")

	s := twitchport.NewSynchronizer(rooms, settings)
	chat := &fakeChat{}

	s.Sync(context.Background(), chat)
	chat.reset()

	settings.fail(errors.New("store down"))
	s.Sync(context.Background(), chat)

	if len(chat.departed()) != 0 {
		t.Fatalf("store error caused departs: %v", chat.departed())
	}
	if _, ok := s.RoomFor("streamerone"); !ok {
		t.Fatal("store error dropped the current membership")
	}
}

func TestSyncCollisionLastWriterWins(t *testing.T) {
	rooms := seedRooms("room-a", "room-b")
	settings := newMutableSettings()
	settings.set("room-a", "shared")
	settings.set("room-b", "shared")

	s := twitchport.NewSynchronizer(rooms, settings)
	chat := &fakeChat{}

	s.Sync(context.Background(), chat)

	// Rooms enumerate in id order, so room-b claims the channel.
	if roomID, ok := s.RoomFor("shared"); !ok || roomID != "room-b" {
		t.Fatalf("expected room-b to own the channel, got %q %v", roomID, ok)
	}

	if joins := chat.joined(); len(joins) != 1 {
		t.Fatalf("collided channel joined more than once: %v", joins)
	}
}

func TestResetForcesRejoin(t *testing.T) {
	rooms := seedRooms("room-a")
	settings := newMutableSettings()
	settings.set("room-a", "streamerone")

	s := twitchport.NewSynchronizer(rooms, settings)
	chat := &fakeChat{}

	s.Sync(context.Background(), chat)
	chat.reset()

	s.Reset()
	s.Sync(context.Background(), chat)

	if joins := chat.joined(); len(joins) != 1 || joins[0] != "streamerone" {
		t.Fatalf("expected rejoin after reset, got %v", joins)
	}
}
