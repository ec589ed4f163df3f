package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/appctx"
	"github.com/auxroom/auxroom/internal/infra/ports/http/dto"
	"github.com/auxroom/auxroom/internal/usecase"
)

// RoomHandler is the thin REST surface the web client drives playback with.
type RoomHandler struct {
	roomState usecase.RoomStateUsecase
	playlist  usecase.PlaylistUsecase
}

func NewRoomHandler(roomState usecase.RoomStateUsecase, playlist usecase.PlaylistUsecase) *RoomHandler {
	return &RoomHandler{
		roomState: roomState,
		playlist:  playlist,
	}
}

func (h *RoomHandler) GetStateHandler(c echo.Context) error {
	state, err := h.roomState.GetRoomState(c.Request().Context(), c.Param("id"))
	if err != nil {
		slog.Error("get room state", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get room state"})
	}

	if state == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	}

	return c.JSON(http.StatusOK, state)
}

func (h *RoomHandler) SetPlayStateHandler(c echo.Context) error {
	var req dto.SetPlayStateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	err := h.playlist.SetPlayState(c.Request().Context(), c.Param("id"), req.Playing)
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	case errors.Is(err, domain.ErrNoTrackSelected):
		return c.JSON(http.StatusConflict, map[string]string{"error": "no track selected"})
	case err != nil:
		slog.Error("set play state", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update play state"})
	}

	return c.NoContent(http.StatusOK)
}

func (h *RoomHandler) SkipHandler(c echo.Context) error {
	track, err := h.playlist.Skip(c.Request().Context(), c.Param("id"))
	switch {
	case errors.Is(err, domain.ErrRoomNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	case errors.Is(err, domain.ErrEmptyPlaylist):
		return c.JSON(http.StatusConflict, map[string]string{"error": "playlist is empty"})
	case err != nil:
		slog.Error("skip track", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to skip"})
	}

	return c.JSON(http.StatusOK, track)
}

func (h *RoomHandler) AddSongHandler(c echo.Context) error {
	var req dto.AddSongRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	userID, ok := appctx.UserID(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid user"})
	}

	res := h.playlist.AddSong(c.Request().Context(), c.Param("id"), req.Query, userID.String(), models.SourceWeb)

	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}

	return c.JSON(status, dto.AddSongResponse{
		Success: res.Success,
		Message: res.Message,
		Added:   len(res.Added),
	})
}
