package twitch

import (
	"context"
	"errors"
	"testing"
	"time"

	irc "github.com/gempir/go-twitch-irc/v4"

	"github.com/auxroom/auxroom/internal/domain/models"
	"github.com/auxroom/auxroom/internal/infra/adapters/memory"
	"github.com/auxroom/auxroom/internal/infra/adapters/twitchauth"
)

type stubRefresher struct {
	pair *twitchauth.TokenPair
	err  error
}

func (s *stubRefresher) Refresh(ctx context.Context, refreshToken string) (*twitchauth.TokenPair, error) {
	return s.pair, s.err
}

func newReauthConnector(t *testing.T, refresher twitchauth.Refresher) (*Connector, *memory.SettingsRepository) {
	t.Helper()

	settings := memory.NewSettingsRepository()
	if err := settings.SaveTwitchCredential(context.Background(), &models.TwitchBotCredential{
		Username:     "botuser",
		AccessToken:  "expired-access",
		RefreshToken: "old-refresh",
	}); err != nil {
		t.Fatal(err)
	}

	c := NewConnector(settings, refresher, nil, nil)
	c.client = irc.NewClient("botuser", "oauth:expired-access")
	c.setState(StateReauthPending)

	return c, settings
}

func waitReauthResult(t *testing.T, c *Connector) bool {
	t.Helper()
	select {
	case refreshed := <-c.reauthResult:
		return refreshed
	case <-time.After(2 * time.Second):
		t.Fatal("no reauth outcome signaled, the connection loop would never redial")
		return false
	}
}

func TestReauthSuccessSignalsReconnect(t *testing.T) {
	c, settings := newReauthConnector(t, &stubRefresher{
		pair: &twitchauth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"},
	})

	go c.reauth(context.Background())

	if !waitReauthResult(t, c) {
		t.Fatal("successful refresh signaled no-reconnect")
	}
	if st := c.State(); st != StateConnecting {
		t.Fatalf("expected Connecting after refresh, got %d", st)
	}

	cred, err := settings.TwitchCredential(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cred.AccessToken != "new-access" || cred.RefreshToken != "new-refresh" {
		t.Fatalf("rotated tokens not persisted: %+v", cred)
	}
}

func TestReauthFailureStaysOffline(t *testing.T) {
	c, settings := newReauthConnector(t, &stubRefresher{err: errors.New("invalid refresh token")})

	go c.reauth(context.Background())

	if waitReauthResult(t, c) {
		t.Fatal("failed refresh signaled a reconnect")
	}
	if st := c.State(); st != StateUninitialized {
		t.Fatalf("expected Uninitialized after failed refresh, got %d", st)
	}

	cred, err := settings.TwitchCredential(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if cred.AccessToken != "expired-access" {
		t.Fatalf("failed refresh rewrote the credential: %+v", cred)
	}
}

func TestOnNoticeStartsSingleReauth(t *testing.T) {
	c, _ := newReauthConnector(t, &stubRefresher{
		pair: &twitchauth.TokenPair{AccessToken: "new-access", RefreshToken: "new-refresh"},
	})
	c.setState(StateConnecting)

	notice := irc.NoticeMessage{Message: "Login authentication failed"}
	c.onNotice(context.Background(), notice)
	// A duplicate notice while the refresh is pending must not spawn a
	// second refresh.
	c.onNotice(context.Background(), notice)

	if !waitReauthResult(t, c) {
		t.Fatal("refresh did not complete")
	}

	select {
	case <-c.reauthResult:
		t.Fatal("duplicate notice produced a second reauth outcome")
	case <-time.After(100 * time.Millisecond):
	}
}
