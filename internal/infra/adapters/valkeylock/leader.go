// Package valkeylock implements a lease-based leader lock. A Twitch channel
// must have exactly one active chat listener, so the connector only starts
// in the process currently holding the lease.
package valkeylock

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/valkey-io/valkey-go"

	"github.com/auxroom/auxroom/internal/application/constant"
)

type LeaderLock struct {
	client valkey.Client
	key    string
	id     string
	ttl    time.Duration
}

func New(client valkey.Client, key string, ttl time.Duration) *LeaderLock {
	return &LeaderLock{
		client: client,
		key:    key,
		id:     uuid.NewString(),
		ttl:    ttl,
	}
}

// TryAcquire attempts to take the lease. Returns false without error when
// another process holds it. The TTL rides on the SET itself, a crash right
// after acquisition can never leave the key without an expiry.
func (l *LeaderLock) TryAcquire(ctx context.Context) (bool, error) {
	resp := l.client.Do(ctx, l.client.B().Set().Key(l.key).Value(l.id).Nx().Px(l.ttl).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// Run blocks until the lease is acquired, invokes onAcquired once, then
// keeps renewing until ctx is cancelled.
func (l *LeaderLock) Run(ctx context.Context, onAcquired func(ctx context.Context)) {
	acquireTicker := time.NewTicker(l.ttl / 2)
	defer acquireTicker.Stop()

	for {
		ok, err := l.TryAcquire(ctx)
		if err != nil {
			slog.Error("leader lock acquire", slog.Any(constant.Error, err))
		}
		if ok {
			break
		}

		select {
		case <-ctx.Done():
			return
		case <-acquireTicker.C:
		}
	}

	slog.Info("acquired twitch listener lease", slog.String("key", l.key))

	go onAcquired(ctx)

	renewTicker := time.NewTicker(l.ttl / 3)
	defer renewTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.release()
			return
		case <-renewTicker.C:
			if err := l.renew(ctx); err != nil {
				slog.Error("leader lock renew", slog.Any(constant.Error, err))
			}
		}
	}
}

func (l *LeaderLock) renew(ctx context.Context) error {
	resp := l.client.Do(ctx, l.client.B().Get().Key(l.key).Build())

	holder, err := resp.ToString()
	if err != nil {
		return err
	}
	if holder != l.id {
		// Lease moved while we were running. Operator intervention
		// territory, keep logging rather than double-connecting.
		slog.Warn("twitch listener lease held elsewhere", slog.String("holder", holder))
		return nil
	}

	return l.expire(ctx)
}

func (l *LeaderLock) expire(ctx context.Context) error {
	resp := l.client.Do(ctx, l.client.B().Pexpire().Key(l.key).Milliseconds(l.ttl.Milliseconds()).Build())
	return resp.Error()
}

// releaseScript deletes the key only while we still hold it, in one
// server-side step. A plain GET-then-DEL could delete a lease the key
// expired onto another holder in between.
var releaseScript = valkey.NewLuaScript(
	`if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`,
)

func (l *LeaderLock) release() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Exec(ctx, l.client, []string{l.key}, []string{l.id}).Error(); err != nil {
		slog.Error("leader lock release", slog.Any(constant.Error, err))
	}
}
