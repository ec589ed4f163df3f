package twitch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	irc "github.com/gempir/go-twitch-irc/v4"
	"github.com/sethvargo/go-retry"

	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/application/metric"
	"github.com/auxroom/auxroom/internal/domain"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres/repository"
	"github.com/auxroom/auxroom/internal/infra/adapters/twitchauth"
)

// State of the chat connection.
type State int

const (
	StateUninitialized State = iota
	StateConnecting
	StateConnected
	StateReauthPending
)

const syncInterval = 30 * time.Second

// Connector owns the single long-lived Twitch chat connection: it loads the
// bot credential, keeps channel membership in sync, refreshes the token on
// auth failure and relays chat commands into the core usecases.
type Connector struct {
	settings repository.SettingsRepository
	oauth    twitchauth.Refresher
	relay    *Relay
	sync     *Synchronizer

	mu          sync.Mutex
	state       State
	started     bool
	client      *irc.Client
	botUsername string

	syncLoopOnce sync.Once

	// reauthResult carries the outcome of a token refresh to the run
	// loop, which holds the only right to call Connect again.
	reauthResult chan bool
}

func NewConnector(
	settings repository.SettingsRepository,
	oauth twitchauth.Refresher,
	relay *Relay,
	synchronizer *Synchronizer,
) *Connector {
	return &Connector{
		settings:     settings,
		oauth:        oauth,
		relay:        relay,
		sync:         synchronizer,
		reauthResult: make(chan bool, 1),
	}
}

// Start brings the connection up. Repeat calls are no-ops. A missing bot
// credential is fatal for the connector but must not crash the host
// process, so it only logs and leaves the connector Uninitialized.
func (c *Connector) Start(ctx context.Context) {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.mu.Unlock()

	cred, err := c.settings.TwitchCredential(ctx)
	if errors.Is(err, domain.ErrNoCredential) {
		slog.Error("twitch bot credential missing, chat connector stays offline")
		return
	}
	if err != nil {
		slog.Error("load twitch bot credential", slog.Any(constant.Error, err))
		return
	}

	c.mu.Lock()
	c.botUsername = strings.ToLower(cred.Username)
	c.client = irc.NewClient(cred.Username, "oauth:"+cred.AccessToken)
	c.client.OnConnect(func() { c.onConnect(ctx) })
	c.client.OnPrivateMessage(func(msg irc.PrivateMessage) { c.onMessage(ctx, msg) })
	c.client.OnNoticeMessage(func(msg irc.NoticeMessage) { c.onNotice(ctx, msg) })
	c.state = StateConnecting
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		c.client.Disconnect() //nolint:errcheck
	}()

	go c.run(ctx)
}

func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Connector) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Connector) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		// Discard a stale outcome from a refresh that resolved while
		// the transport was already reconnecting.
		select {
		case <-c.reauthResult:
		default:
		}

		err := c.connect(ctx)

		if errors.Is(err, irc.ErrClientDisconnected) {
			// Deliberate disconnect: either shutdown, or the reauth
			// path rotated the token and wants a fresh connection.
			if ctx.Err() == nil && c.State() == StateConnecting {
				continue
			}
			return
		}

		// The auth-failure notice arrives synchronously before Connect
		// returns its error, so the refresh is still in flight here.
		// Only its outcome decides whether to dial again.
		if c.State() == StateReauthPending {
			select {
			case <-ctx.Done():
				return
			case refreshed := <-c.reauthResult:
				if refreshed {
					continue
				}
				return
			}
		}

		// The refresh may have resolved between Connect returning and
		// the state check above.
		select {
		case refreshed := <-c.reauthResult:
			if refreshed {
				continue
			}
			return
		default:
		}

		slog.Error("twitch transport closed", slog.Any(constant.Error, err))
		return
	}
}

// connect dials with exponential backoff on transient transport errors.
// It blocks for the lifetime of the connection.
func (c *Connector) connect(ctx context.Context) error {
	backoff := retry.WithMaxDuration(5*time.Minute, retry.NewExponential(2*time.Second))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		c.setState(StateConnecting)

		err := c.client.Connect()
		if errors.Is(err, irc.ErrClientDisconnected) {
			return err
		}

		if c.State() == StateReauthPending {
			// Reauth owns the connection now, don't fight it.
			return err
		}

		return retry.RetryableError(err)
	})
}

func (c *Connector) onConnect(ctx context.Context) {
	slog.Info("connected to twitch chat", slog.String("bot", c.botUsername))
	c.setState(StateConnected)

	// A fresh connection joins nothing, force the next cycle to rejoin.
	c.sync.Reset()
	c.sync.Sync(ctx, c.client)

	c.syncLoopOnce.Do(func() {
		go c.syncLoop(ctx)
	})
}

func (c *Connector) syncLoop(ctx context.Context) {
	ticker := time.NewTicker(syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.State() == StateConnected {
				c.sync.Sync(ctx, c.client)
			}
		}
	}
}

func (c *Connector) onMessage(ctx context.Context, msg irc.PrivateMessage) {
	if c.State() != StateConnected {
		return
	}

	// Never react to our own lines, that way lies an echo loop.
	if strings.EqualFold(msg.User.Name, c.botUsername) {
		return
	}

	username := msg.User.DisplayName
	if username == "" {
		username = msg.User.Name
	}

	reply := c.relay.Handle(ctx, msg.Channel, msg.User.ID, username, msg.Message)
	if reply != "" {
		c.client.Say(msg.Channel, reply)
	}
}

func (c *Connector) onNotice(ctx context.Context, msg irc.NoticeMessage) {
	if !isAuthFailure(msg) {
		return
	}

	c.mu.Lock()
	if c.state == StateReauthPending {
		c.mu.Unlock()
		return
	}
	c.state = StateReauthPending
	c.mu.Unlock()

	slog.Warn("twitch auth failure, refreshing token")

	go c.reauth(ctx)
}

func isAuthFailure(msg irc.NoticeMessage) bool {
	text := strings.ToLower(msg.Message)
	return strings.Contains(text, "login authentication failed") ||
		strings.Contains(text, "improperly formatted auth")
}

// reauth rotates the token and hands the outcome to the run loop, which
// redials on success. If the refresh itself fails the connector stays down,
// recovery needs a redeploy or manual re-auth.
func (c *Connector) reauth(ctx context.Context) {
	cred, err := c.settings.TwitchCredential(ctx)
	if err != nil {
		slog.Error("reload twitch credential for refresh", slog.Any(constant.Error, err))
		c.abandonReauth()
		return
	}

	pair, err := c.oauth.Refresh(ctx, cred.RefreshToken)
	if err != nil {
		slog.Error("twitch token refresh failed, connector staying offline", slog.Any(constant.Error, err))
		c.abandonReauth()
		return
	}

	cred.AccessToken = pair.AccessToken
	cred.RefreshToken = pair.RefreshToken

	if err := c.settings.SaveTwitchCredential(ctx, cred); err != nil {
		slog.Error("persist refreshed twitch credential", slog.Any(constant.Error, err))
		c.abandonReauth()
		return
	}

	metric.IncTwitchReconnects()

	c.mu.Lock()
	c.client.SetIRCToken("oauth:" + pair.AccessToken)
	c.state = StateConnecting
	c.mu.Unlock()

	// Tear down whatever transport is left. The run loop dials again
	// with the new token once it sees the result.
	c.client.Disconnect() //nolint:errcheck

	c.reauthResult <- true
}

func (c *Connector) abandonReauth() {
	c.setState(StateUninitialized)
	c.reauthResult <- false
}
