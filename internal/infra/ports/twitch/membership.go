package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/application/metric"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres/repository"
)

// ChannelChat is the slice of the chat transport the synchronizer drives.
type ChannelChat interface {
	Join(channels ...string)
	Depart(channel string)
}

// Synchronizer reconciles the desired joined-channel set (derived from room
// member settings) against the channels the bot currently sits in. It owns
// the current-set state, there are no package-level maps.
type Synchronizer struct {
	rooms    repository.RoomRepository
	settings repository.SettingsRepository

	// cycleMu serializes sync cycles so a slow cycle can't overlap the next.
	cycleMu sync.Mutex

	// setMu guards current, which command handling reads concurrently.
	setMu   sync.RWMutex
	current map[string]string // lowercase channel name -> room id
}

func NewSynchronizer(rooms repository.RoomRepository, settings repository.SettingsRepository) *Synchronizer {
	return &Synchronizer{
		rooms:    rooms,
		settings: settings,
		current:  make(map[string]string),
	}
}

// RoomFor resolves a joined channel back to its owning room.
func (s *Synchronizer) RoomFor(channel string) (string, bool) {
	s.setMu.RLock()
	defer s.setMu.RUnlock()

	roomID, ok := s.current[strings.ToLower(channel)]
	return roomID, ok
}

// Reset forgets the current membership. After a fresh transport connection
// the bot sits in no channels, so the next cycle must rejoin everything.
func (s *Synchronizer) Reset() {
	s.setMu.Lock()
	s.current = make(map[string]string)
	s.setMu.Unlock()
}

// Sync runs one reconciliation cycle. A failed join or leave is logged and
// never aborts the rest of the cycle.
func (s *Synchronizer) Sync(ctx context.Context, chat ChannelChat) {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	start := time.Now()
	defer func() { metric.ObserveMembershipSync(time.Since(start)) }()

	desired, err := s.desired(ctx)
	if err != nil {
		// Keep the current membership rather than leaving everything
		// on a transient store error.
		slog.Error("compute desired channel set", slog.Any(constant.Error, err))
		return
	}

	s.setMu.RLock()
	current := make(map[string]string, len(s.current))
	for ch, roomID := range s.current {
		current[ch] = roomID
	}
	s.setMu.RUnlock()

	for ch := range current {
		if _, ok := desired[ch]; !ok {
			slog.Info("leaving twitch channel", slog.String("channel", ch))
			chat.Depart(ch)
		}
	}

	var joins []string
	for ch := range desired {
		if _, ok := current[ch]; !ok {
			slog.Info("joining twitch channel", slog.String("channel", ch))
			joins = append(joins, ch)
		}
	}
	if len(joins) > 0 {
		chat.Join(joins...)
	}

	s.setMu.Lock()
	s.current = desired
	s.setMu.Unlock()
}

func (s *Synchronizer) desired(ctx context.Context) (map[string]string, error) {
	rooms, err := s.rooms.List(ctx)
	if err != nil {
		return nil, err
	}

	desired := make(map[string]string)

	for _, room := range rooms {
		bindings, err := s.settings.ChannelBindings(ctx, room.ID)
		if err != nil {
			// Abort the whole cycle. A partial desired set would make
			// the diff leave channels that are still bound.
			return nil, fmt.Errorf("list channel bindings for room %s: %w", room.ID, err)
		}

		for _, binding := range bindings {
			ch := strings.ToLower(strings.TrimSpace(binding.TwitchChannel))
			if ch == "" {
				continue
			}

			// Last writer wins on collision. Room enumeration is
			// ordered by id, so the outcome is at least stable.
			if prev, ok := desired[ch]; ok && prev != room.ID {
				slog.Warn(
					"twitch channel claimed by multiple rooms",
					slog.String("channel", ch),
					slog.String("kept_room", room.ID),
					slog.String("dropped_room", prev),
				)
			}

			desired[ch] = room.ID
		}
	}

	return desired, nil
}
