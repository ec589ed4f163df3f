package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/infra/ports/ws"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub *ws.Hub
}

func NewWebSocketHandler(hub *ws.Hub) *WebSocketHandler {
	return &WebSocketHandler{hub: hub}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	roomID := c.QueryParam("room")
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room is required"})
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error("websocket upgrade", slog.Any(constant.Error, err))
		return nil
	}

	h.hub.Register(roomID, conn)

	defer func() {
		h.hub.Unregister(roomID, conn)
		conn.Close()
	}()

	// Listeners only receive, inbound frames are drained until close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
