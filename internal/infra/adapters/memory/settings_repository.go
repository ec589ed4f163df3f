package memory

import (
	"context"
	"sync"

	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/domain/models"
)

type SettingsRepository struct {
	cred     *models.TwitchBotCredential
	bindings map[string][]*models.ChannelBinding
	mu       sync.RWMutex
}

func NewSettingsRepository() *SettingsRepository {
	return &SettingsRepository{
		bindings: make(map[string][]*models.ChannelBinding),
	}
}

func (r *SettingsRepository) TwitchCredential(ctx context.Context) (*models.TwitchBotCredential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cred == nil {
		return nil, domain.ErrNoCredential
	}

	clone := *r.cred
	return &clone, nil
}

func (r *SettingsRepository) SaveTwitchCredential(ctx context.Context, cred *models.TwitchBotCredential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *cred
	r.cred = &clone

	return nil
}

// PutBinding seeds a channel binding for tests.
func (r *SettingsRepository) PutBinding(binding *models.ChannelBinding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[binding.RoomID] = append(r.bindings[binding.RoomID], binding)
}

func (r *SettingsRepository) ChannelBindings(ctx context.Context, roomID string) ([]*models.ChannelBinding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bindings := make([]*models.ChannelBinding, 0, len(r.bindings[roomID]))
	for _, b := range r.bindings[roomID] {
		if b.TwitchChannel == "" {
			continue
		}
		clone := *b
		bindings = append(bindings, &clone)
	}

	return bindings, nil
}
