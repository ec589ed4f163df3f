// Package ws pushes room-updated events to web listeners so they can
// re-read room state after a chat command mutates the playlist.
package ws

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/application/metric"
)

const sendBuffer = 8

type event struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
}

// client owns all writes to its connection. gorilla/websocket allows only
// one concurrent writer, so events are funneled through the send channel
// and drained by a single goroutine.
type client struct {
	conn *websocket.Conn
	send chan event
}

func (cl *client) writeLoop() {
	for ev := range cl.send {
		if err := cl.conn.WriteJSON(ev); err != nil {
			slog.Warn("room update push", slog.Any(constant.Error, err))
			return
		}
	}
}

type Hub struct {
	rooms map[string]map[*websocket.Conn]*client
	mu    sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]map[*websocket.Conn]*client),
	}
}

func (h *Hub) Register(roomID string, conn *websocket.Conn) {
	cl := &client{
		conn: conn,
		send: make(chan event, sendBuffer),
	}

	h.mu.Lock()
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*websocket.Conn]*client)
	}
	h.rooms[roomID][conn] = cl
	h.mu.Unlock()

	metric.IncrementWSActiveConnections()

	go cl.writeLoop()
}

func (h *Hub) Unregister(roomID string, conn *websocket.Conn) {
	h.mu.Lock()

	cl, ok := h.rooms[roomID][conn]
	if !ok {
		h.mu.Unlock()
		return
	}

	delete(h.rooms[roomID], conn)
	if len(h.rooms[roomID]) == 0 {
		delete(h.rooms, roomID)
	}

	// Closed under the write lock, after removal: RoomUpdated only sends
	// to clients it finds in the map, so no send can hit a closed channel.
	close(cl.send)

	h.mu.Unlock()

	metric.DecrementWSActiveConnections()
}

// RoomUpdated implements usecase.RoomNotifier. Events for a listener whose
// buffer is full are dropped, a stalled client must not block mutations.
func (h *Hub) RoomUpdated(roomID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ev := event{Type: "room_updated", RoomID: roomID}

	for _, cl := range h.rooms[roomID] {
		select {
		case cl.send <- ev:
		default:
			slog.Warn("room update dropped, listener not keeping up", slog.String("room_id", roomID))
		}
	}
}
