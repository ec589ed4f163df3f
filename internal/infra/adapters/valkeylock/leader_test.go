package valkeylock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valkey-io/valkey-go/mock"
	"go.uber.org/mock/gomock"
)

func TestTryAcquireCarriesExpiryOnSet(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)

	l := New(client, "auxroom:twitch:listener", 30*time.Second)

	client.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			// The TTL must ride on the SET itself: a separate expiry
			// call leaves a non-expiring key if the process dies in
			// between.
			if len(cmd) != 6 || cmd[0] != "SET" || cmd[1] != "auxroom:twitch:listener" {
				return false
			}
			return cmd[2] == l.id && cmd[3] == "NX" && cmd[4] == "PX" && cmd[5] == "30000"
		})).
		Return(mock.Result(mock.ValkeyString("OK")))

	ok, err := l.TryAcquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected to acquire the lease")
	}
}

func TestTryAcquireHeldElsewhere(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)

	l := New(client, "lease", time.Second)

	client.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.Result(mock.ValkeyNil()))

	ok, err := l.TryAcquire(context.Background())
	if err != nil {
		t.Fatalf("a held lease is not an error: %v", err)
	}
	if ok {
		t.Fatal("acquired a lease another process holds")
	}
}

func TestTryAcquireSurfacesTransportError(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock.NewClient(ctrl)

	l := New(client, "lease", time.Second)

	client.EXPECT().
		Do(gomock.Any(), gomock.Any()).
		Return(mock.ErrorResult(errors.New("connection refused")))

	if _, err := l.TryAcquire(context.Background()); err == nil {
		t.Fatal("expected the transport error to surface")
	}
}
