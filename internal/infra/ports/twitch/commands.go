package twitch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/application/metric"
	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/usecase"
)

const helpText = "Commands: !sr <song or link> to request a song, !np for the current track, " +
	"!status for the room summary, !queue to join the voice queue, !help for this text."

const fetchFailure = "❌ I couldn't fetch the room right now."

// RoomResolver maps a chat channel to its owning room.
type RoomResolver interface {
	RoomFor(channel string) (roomID string, ok bool)
}

// Relay translates Twitch chat lines into core operations. The returned
// reply is sent back to the channel, an empty reply means stay silent.
type Relay struct {
	playlist   usecase.PlaylistUsecase
	roomState  usecase.RoomStateUsecase
	voiceQueue usecase.VoiceQueueUsecase
	rooms      RoomResolver
}

func NewRelay(
	playlist usecase.PlaylistUsecase,
	roomState usecase.RoomStateUsecase,
	voiceQueue usecase.VoiceQueueUsecase,
	rooms RoomResolver,
) *Relay {
	return &Relay{
		playlist:   playlist,
		roomState:  roomState,
		voiceQueue: voiceQueue,
		rooms:      rooms,
	}
}

// Handle parses one chat line. Unrecognized text is silently ignored, chat
// is a shared space and the bot must not react to unrelated conversation.
func (r *Relay) Handle(ctx context.Context, channel, userID, username, text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "!") {
		return ""
	}

	command, arg, _ := strings.Cut(text, " ")
	command = strings.ToLower(command)
	arg = strings.TrimSpace(arg)

	switch command {
	case "!sr", "!np", "!status", "!queue", "!play", "!help", "!commands":
	default:
		return ""
	}

	metric.RecordChatCommand("twitch", command)

	roomID, ok := r.rooms.RoomFor(channel)
	if !ok {
		if command == "!help" || command == "!commands" {
			return helpText
		}
		return "❌ This channel isn't linked to a listening room."
	}

	switch command {
	case "!sr":
		res := r.playlist.AddSong(ctx, roomID, arg, fmt.Sprintf("%s (Twitch)", username), models.SourceTwitch)
		if !res.Success {
			return "❌ " + res.Message
		}
		return "✅ " + res.Message

	case "!np":
		return r.nowPlaying(ctx, roomID)

	case "!status":
		return r.status(ctx, roomID)

	case "!queue", "!play":
		pos, err := r.voiceQueue.Join(ctx, roomID, userID, username, models.PlatformTwitch)
		if err != nil {
			slog.Error("voice queue join", slog.Any(constant.Error, err))
			return "❌ I couldn't add you to the voice queue right now."
		}
		return fmt.Sprintf("✅ @%s you're #%d in the voice queue.", username, pos)

	case "!help", "!commands":
		return helpText
	}

	return ""
}

func (r *Relay) nowPlaying(ctx context.Context, roomID string) string {
	state, err := r.roomState.GetRoomState(ctx, roomID)
	if err != nil {
		slog.Error("get room state", slog.Any(constant.Error, err))
		return fetchFailure
	}
	if state == nil {
		return fetchFailure
	}

	if state.CurrentTrack == nil {
		return "Nothing is playing right now. Request something with !sr"
	}

	if !state.IsPlaying {
		return fmt.Sprintf("⏸️ Paused on: %q by %s", state.CurrentTrack.Title, state.CurrentTrack.Artist)
	}

	return fmt.Sprintf("🎵 Now playing: %q by %s", state.CurrentTrack.Title, state.CurrentTrack.Artist)
}

func (r *Relay) status(ctx context.Context, roomID string) string {
	state, err := r.roomState.GetRoomState(ctx, roomID)
	if err != nil {
		slog.Error("get room state", slog.Any(constant.Error, err))
		return fetchFailure
	}
	if state == nil {
		return fetchFailure
	}

	playback := "paused"
	if state.IsPlaying {
		playback = "playing"
	}

	return fmt.Sprintf(
		"🎧 DJ: %s | Playback: %s | %d track(s) in the playlist",
		state.DJDisplayName,
		playback,
		state.PlaylistLength,
	)
}
