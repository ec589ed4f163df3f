package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
)

// RoomRepository is the in-memory twin of the postgres room adapter,
// used by tests and local runs without a database.
type RoomRepository struct {
	rooms map[string]*models.Room
	mu    sync.RWMutex
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		rooms: make(map[string]*models.Room),
	}
}

// Put seeds or replaces a room.
func (r *RoomRepository) Put(room *models.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rooms[room.ID] = room
}

func (r *RoomRepository) GetByID(ctx context.Context, id string) (*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	clone := cloneRoom(room)
	return &clone, nil
}

func (r *RoomRepository) List(ctx context.Context) ([]*models.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*models.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		clone := cloneRoom(room)
		rooms = append(rooms, &clone)
	}

	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })

	return rooms, nil
}

func (r *RoomRepository) Mutate(ctx context.Context, id string, fn func(room *models.Room) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}

	clone := cloneRoom(room)
	if err := fn(&clone); err != nil {
		return err
	}

	r.rooms[id] = &clone

	return nil
}

func (r *RoomRepository) SetPlayState(ctx context.Context, id string, playing bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[id]
	if !ok {
		return domain.ErrRoomNotFound
	}

	room.IsPlaying = playing

	return nil
}

func cloneRoom(room *models.Room) models.Room {
	clone := *room
	clone.Playlist = append(models.Playlist(nil), room.Playlist...)
	return clone
}
