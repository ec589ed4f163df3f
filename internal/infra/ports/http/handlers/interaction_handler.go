package handlers

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/application/metric"
	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/adapters/discord"
	"github.com/auxroom/auxroom/internal/infra/ports/http/dto"
	"github.com/auxroom/auxroom/internal/usecase"
)

const (
	signatureHeader = "X-Signature-Ed25519"
	timestampHeader = "X-Signature-Timestamp"

	songQueryInputID = "song_query"

	followupTimeout = 15 * time.Second

	genericFailure = "Something went wrong. Please try again."
)

// InteractionHandler terminates Discord interaction webhooks: verifies the
// request signature, dispatches on interaction type and custom id, and runs
// slow work after a deferred acknowledgment.
type InteractionHandler struct {
	publicKey     ed25519.PublicKey
	followup      discord.FollowupSender
	playlist      usecase.PlaylistUsecase
	voiceQueue    usecase.VoiceQueueUsecase
	roomState     usecase.RoomStateUsecase
	defaultRoomID string
}

func NewInteractionHandler(
	publicKeyHex string,
	followup discord.FollowupSender,
	playlist usecase.PlaylistUsecase,
	voiceQueue usecase.VoiceQueueUsecase,
	roomState usecase.RoomStateUsecase,
	defaultRoomID string,
) (*InteractionHandler, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid discord public key")
	}

	return &InteractionHandler{
		publicKey:     ed25519.PublicKey(key),
		followup:      followup,
		playlist:      playlist,
		voiceQueue:    voiceQueue,
		roomState:     roomState,
		defaultRoomID: defaultRoomID,
	}, nil
}

func (h *InteractionHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// Fail closed: no detail about why verification failed.
	if !h.verify(c.Request().Header, body) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid request signature"})
	}

	var interaction dto.Interaction
	if err := json.Unmarshal(body, &interaction); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	switch interaction.Type {
	case dto.InteractionTypePing:
		return c.JSON(http.StatusOK, dto.InteractionResponse{Type: dto.ResponseTypePong})

	case dto.InteractionTypeMessageComponent:
		return h.handleComponent(c, &interaction)

	case dto.InteractionTypeModalSubmit:
		return h.handleModalSubmit(c, &interaction)

	default:
		// The platform must see a clear failure, not a hung interaction.
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unhandled interaction type"})
	}
}

func (h *InteractionHandler) verify(header http.Header, body []byte) bool {
	sig, err := hex.DecodeString(header.Get(signatureHeader))
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}

	timestamp := header.Get(timestampHeader)
	if timestamp == "" {
		return false
	}

	return ed25519.Verify(h.publicKey, append([]byte(timestamp), body...), sig)
}

func (h *InteractionHandler) handleComponent(c echo.Context, interaction *dto.Interaction) error {
	if interaction.Data == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing component data"})
	}

	verb, roomID := h.splitCustomID(interaction.Data.CustomID)
	metric.RecordChatCommand("discord", verb)

	switch verb {
	case "controls":
		return c.JSON(http.StatusOK, h.controlsMessage(roomID))

	case "voicequeue":
		h.deferredFollowup(interaction, func(ctx context.Context) (string, error) {
			sender := interaction.Sender()
			if sender == nil {
				return "", fmt.Errorf("component interaction without a sender")
			}

			pos, err := h.voiceQueue.Join(ctx, roomID, sender.ID.String(), sender.DisplayName(), models.PlatformDiscord)
			if err != nil {
				return "", err
			}

			return fmt.Sprintf("🎙️ You're #%d in the voice queue.", pos), nil
		})
		return c.JSON(http.StatusOK, deferredEphemeral())

	case "songrequest":
		return c.JSON(http.StatusOK, h.songRequestModal(roomID))

	case "close":
		return c.JSON(http.StatusOK, dto.InteractionResponse{
			Type: dto.ResponseTypeUpdateMessage,
			Data: &dto.ResponseData{Content: "Dismissed.", Components: []dto.Component{}},
		})

	case "mute":
		// UI-only hint, no backend effect.
		return c.JSON(http.StatusOK, dto.InteractionResponse{
			Type: dto.ResponseTypeChannelMessageWithSource,
			Data: &dto.ResponseData{
				Content: "Use your room's audio controls to mute or unmute yourself.",
				Flags:   dto.MessageFlagEphemeral,
			},
		})

	// Legacy button ids kept for messages posted by older bot versions.
	case "playpause":
		h.deferredFollowup(interaction, func(ctx context.Context) (string, error) {
			return h.togglePlayback(ctx, roomID)
		})
		return c.JSON(http.StatusOK, deferredEphemeral())

	case "skip":
		h.deferredFollowup(interaction, func(ctx context.Context) (string, error) {
			track, err := h.playlist.Skip(ctx, roomID)
			if err != nil {
				if errors.Is(err, domain.ErrEmptyPlaylist) || errors.Is(err, domain.ErrRoomNotFound) {
					return "❌ There's nothing to skip right now.", nil
				}
				return "", err
			}
			return fmt.Sprintf("⏭️ Skipped to: %q", track.Title), nil
		})
		return c.JSON(http.StatusOK, deferredEphemeral())

	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unhandled component"})
	}
}

func (h *InteractionHandler) handleModalSubmit(c echo.Context, interaction *dto.Interaction) error {
	if interaction.Data == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "missing modal data"})
	}

	verb, roomID := h.splitCustomID(interaction.Data.CustomID)
	if verb != "songmodal" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unhandled modal"})
	}

	query := interaction.Data.TextValue(songQueryInputID)
	metric.RecordChatCommand("discord", "songrequest_submit")

	h.deferredFollowup(interaction, func(ctx context.Context) (string, error) {
		requestedBy := "Someone (Discord)"
		if sender := interaction.Sender(); sender != nil {
			requestedBy = fmt.Sprintf("%s (Discord)", sender.DisplayName())
		}

		res := h.playlist.AddSong(ctx, roomID, query, requestedBy, models.SourceDiscord)
		if !res.Success {
			return "❌ " + res.Message, nil
		}
		return "✅ " + res.Message, nil
	})

	return c.JSON(http.StatusOK, deferredEphemeral())
}

// deferredFollowup runs fn after the deferred acknowledgment and always
// delivers some followup message, an operation that fails must not leave
// the user's ephemeral UI stuck on "thinking".
func (h *InteractionHandler) deferredFollowup(interaction *dto.Interaction, fn func(ctx context.Context) (string, error)) {
	token := interaction.Token
	appID := interaction.ApplicationID

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), followupTimeout)
		defer cancel()

		content, err := fn(ctx)
		if err != nil {
			slog.Error("deferred interaction work", slog.Any(constant.Error, err))
			content = "❌ " + genericFailure
		}

		if err := h.followup.Send(ctx, appID, token, content); err != nil {
			slog.Error("send interaction followup", slog.Any(constant.Error, err))
		}
	}()
}

func (h *InteractionHandler) togglePlayback(ctx context.Context, roomID string) (string, error) {
	state, err := h.roomState.GetRoomState(ctx, roomID)
	if err != nil {
		return "", err
	}
	if state == nil {
		return "❌ I couldn't find that room.", nil
	}

	playing := !state.IsPlaying

	if err := h.playlist.SetPlayState(ctx, roomID, playing); err != nil {
		if errors.Is(err, domain.ErrNoTrackSelected) {
			return "❌ Nothing is selected to play.", nil
		}
		return "", err
	}

	if playing {
		return "▶️ Resumed playback.", nil
	}
	return "⏸️ Paused playback.", nil
}

// splitCustomID parses the `verb:roomID` convention, falling back to the
// configured single-room binding for legacy ids without a room part.
func (h *InteractionHandler) splitCustomID(customID string) (verb, roomID string) {
	verb, roomID, found := strings.Cut(customID, ":")
	if !found || roomID == "" {
		roomID = h.defaultRoomID
	}
	return verb, roomID
}

func (h *InteractionHandler) controlsMessage(roomID string) dto.InteractionResponse {
	return dto.InteractionResponse{
		Type: dto.ResponseTypeChannelMessageWithSource,
		Data: &dto.ResponseData{
			Content: "Your room controls:",
			Flags:   dto.MessageFlagEphemeral,
			Components: []dto.Component{
				{
					Type: dto.ComponentTypeActionRow,
					Components: []dto.Component{
						{Type: dto.ComponentTypeButton, Style: dto.ButtonStylePrimary, Label: "Join voice queue", CustomID: "voicequeue:" + roomID},
						{Type: dto.ComponentTypeButton, Style: dto.ButtonStyleSecondary, Label: "Request a song", CustomID: "songrequest:" + roomID},
						{Type: dto.ComponentTypeButton, Style: dto.ButtonStyleSecondary, Label: "Mute", CustomID: "mute:" + roomID},
						{Type: dto.ComponentTypeButton, Style: dto.ButtonStyleDanger, Label: "Close", CustomID: "close:" + roomID},
					},
				},
			},
		},
	}
}

func (h *InteractionHandler) songRequestModal(roomID string) dto.InteractionResponse {
	return dto.InteractionResponse{
		Type: dto.ResponseTypeModal,
		Data: &dto.ResponseData{
			CustomID: "songmodal:" + roomID,
			Title:    "Request a song",
			Components: []dto.Component{
				{
					Type: dto.ComponentTypeActionRow,
					Components: []dto.Component{
						{
							Type:     dto.ComponentTypeTextInput,
							CustomID: songQueryInputID,
							Style:    1,
							Label:    "Song name or link",
							Required: true,
						},
					},
				},
			},
		},
	}
}

func deferredEphemeral() dto.InteractionResponse {
	return dto.InteractionResponse{
		Type: dto.ResponseTypeDeferredChannelMessage,
		Data: &dto.ResponseData{Flags: dto.MessageFlagEphemeral},
	}
}
