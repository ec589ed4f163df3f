package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/auxroom/auxroom/internal/domain/models"
)

type VoiceQueueRepository struct {
	queues map[string]map[string]*models.VoiceQueueEntry
	mu     sync.RWMutex
}

func NewVoiceQueueRepository() *VoiceQueueRepository {
	return &VoiceQueueRepository{
		queues: make(map[string]map[string]*models.VoiceQueueEntry),
	}
}

func (r *VoiceQueueRepository) Upsert(ctx context.Context, roomID string, entry *models.VoiceQueueEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.queues[roomID]; !ok {
		r.queues[roomID] = make(map[string]*models.VoiceQueueEntry)
	}

	clone := *entry
	r.queues[roomID][entry.UserID] = &clone

	return nil
}

func (r *VoiceQueueRepository) List(ctx context.Context, roomID string) ([]*models.VoiceQueueEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := make([]*models.VoiceQueueEntry, 0, len(r.queues[roomID]))
	for _, entry := range r.queues[roomID] {
		clone := *entry
		entries = append(entries, &clone)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].AddedAt.Equal(entries[j].AddedAt) {
			return entries[i].UserID < entries[j].UserID
		}
		return entries[i].AddedAt.Before(entries[j].AddedAt)
	})

	return entries, nil
}

func (r *VoiceQueueRepository) Delete(ctx context.Context, roomID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.queues[roomID]; !ok {
		return nil
	}

	delete(r.queues[roomID], userID)

	return nil
}
