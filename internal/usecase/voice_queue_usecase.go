package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres/repository"
)

type VoiceQueueUsecase interface {
	// Join admits the user, or refreshes their entry if already queued,
	// which moves them to the back. The returned position is 1-based and
	// read back from the ordered queue after the write.
	Join(ctx context.Context, roomID, userID, username string, platform models.Platform) (int, error)

	// Next returns the queue head without removing it, or nil when the
	// queue is empty. Removal is a separate call so the consumer can
	// retry delivery before committing.
	Next(ctx context.Context, roomID string) (*models.VoiceQueueEntry, error)

	Remove(ctx context.Context, roomID, userID string) error

	// Position returns the user's 1-based position, or 0 when absent.
	Position(ctx context.Context, roomID, userID string) (int, error)

	List(ctx context.Context, roomID string) ([]*models.VoiceQueueEntry, error)
}

type voiceQueueUsecase struct {
	queue repository.VoiceQueueRepository
}

func NewVoiceQueueUsecase(queue repository.VoiceQueueRepository) VoiceQueueUsecase {
	return &voiceQueueUsecase{queue: queue}
}

func (uc *voiceQueueUsecase) Join(ctx context.Context, roomID, userID, username string, platform models.Platform) (int, error) {
	entry := &models.VoiceQueueEntry{
		UserID:   userID,
		Username: username,
		Platform: platform,
		AddedAt:  time.Now().UTC(),
	}

	if err := uc.queue.Upsert(ctx, roomID, entry); err != nil {
		return 0, fmt.Errorf("enqueue %s: %w", userID, err)
	}

	pos, err := uc.Position(ctx, roomID, userID)
	if err != nil {
		return 0, err
	}
	if pos == 0 {
		return 0, fmt.Errorf("entry for %s vanished after enqueue", userID)
	}

	return pos, nil
}

func (uc *voiceQueueUsecase) Next(ctx context.Context, roomID string) (*models.VoiceQueueEntry, error) {
	entries, err := uc.queue.List(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		return nil, nil
	}

	return entries[0], nil
}

func (uc *voiceQueueUsecase) Remove(ctx context.Context, roomID, userID string) error {
	return uc.queue.Delete(ctx, roomID, userID)
}

func (uc *voiceQueueUsecase) Position(ctx context.Context, roomID, userID string) (int, error) {
	entries, err := uc.queue.List(ctx, roomID)
	if err != nil {
		return 0, err
	}

	for i, entry := range entries {
		if entry.UserID == userID {
			return i + 1, nil
		}
	}

	return 0, nil
}

func (uc *voiceQueueUsecase) List(ctx context.Context, roomID string) ([]*models.VoiceQueueEntry, error) {
	return uc.queue.List(ctx, roomID)
}
