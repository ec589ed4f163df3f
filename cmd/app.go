package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/auxroom/auxroom/internal/application/config"
	"github.com/auxroom/auxroom/internal/application/constant"
	"github.com/auxroom/auxroom/internal/application/metric"
	"github.com/auxroom/auxroom/internal/infra/adapters/discord"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres"
	"github.com/auxroom/auxroom/internal/infra/adapters/postgres/repository"
	"github.com/auxroom/auxroom/internal/infra/adapters/twitchauth"
	"github.com/auxroom/auxroom/internal/infra/adapters/valkeylock"
	"github.com/auxroom/auxroom/internal/infra/adapters/youtube"
	"github.com/auxroom/auxroom/internal/infra/ports/http/handlers"
	"github.com/auxroom/auxroom/internal/infra/ports/http/server"
	twitchport "github.com/auxroom/auxroom/internal/infra/ports/twitch"
	"github.com/auxroom/auxroom/internal/infra/ports/ws"
	"github.com/auxroom/auxroom/internal/usecase"
)

const twitchLeaseKey = "auxroom:twitch:listener"

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	valkeyClient, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{cfg.Valkey.Addr},
	})
	if err != nil {
		slog.Error("connect to valkey", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer valkeyClient.Close()

	roomRepo := repository.NewRoomRepo(dbConn)
	voiceQueueRepo := repository.NewVoiceQueueRepo(dbConn)
	settingsRepo := repository.NewSettingsRepo(dbConn)

	hub := ws.NewHub()

	playlistUsecase := usecase.NewPlaylistUsecase(roomRepo, youtube.NewClient(cfg.YouTube.APIKey), hub)
	roomStateUsecase := usecase.NewRoomStateUsecase(roomRepo)
	voiceQueueUsecase := usecase.NewVoiceQueueUsecase(voiceQueueRepo)

	roomHandler := handlers.NewRoomHandler(roomStateUsecase, playlistUsecase)
	wsHandler := handlers.NewWebSocketHandler(hub)

	interactionHandler, err := handlers.NewInteractionHandler(
		cfg.Discord.PublicKey,
		discord.NewWebhookClient(),
		playlistUsecase,
		voiceQueueUsecase,
		roomStateUsecase,
		cfg.Discord.DefaultRoomID,
	)
	if err != nil {
		slog.Error("build discord interaction handler", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	echoSrv := server.New(cfg, roomHandler, interactionHandler, wsHandler)

	metricsSrv := metric.NewServer()
	go func() {
		if err := metricsSrv.Start(":" + cfg.MetricsPort); err != nil {
			slog.Error("metrics server stopped", slog.Any(constant.Error, err))
		}
	}()

	// Only one process may hold the Twitch chat connection, membership
	// joins and command replies double up otherwise.
	synchronizer := twitchport.NewSynchronizer(roomRepo, settingsRepo)
	relay := twitchport.NewRelay(playlistUsecase, roomStateUsecase, voiceQueueUsecase, synchronizer)
	connector := twitchport.NewConnector(
		settingsRepo,
		twitchauth.NewClient(cfg.Twitch.ClientID, cfg.Twitch.ClientSecret),
		relay,
		synchronizer,
	)

	lease := valkeylock.New(valkeyClient, twitchLeaseKey, 30*time.Second)
	go lease.Run(ctx, connector.Start)

	srvCh := make(chan (error), 1)
	go func() {
		srvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down server due to context cancel")
	case err := <-srvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)

		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metrics server", slog.Any(constant.Error, err))
	}
}
