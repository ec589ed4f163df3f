package server

import (
	"github.com/labstack/echo/v4"

	"github.com/auxroom/auxroom/internal/application/config"
	"github.com/auxroom/auxroom/internal/infra/ports/http/handlers"
	"github.com/auxroom/auxroom/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	interactionHandler *handlers.InteractionHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	api := e.Group("/api")
	{
		// Signature-verified by the handler itself, never behind JWT.
		api.POST("/interactions/discord", interactionHandler.Handle)

		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/ws", wsHandler.Handle)

			v1.GET("/rooms/:id/state", roomHandler.GetStateHandler)
			v1.POST("/rooms/:id/play", roomHandler.SetPlayStateHandler)
			v1.POST("/rooms/:id/skip", roomHandler.SkipHandler)
			v1.POST("/rooms/:id/songs", roomHandler.AddSongHandler)
		}
	}

	e.Static("/", "web")

	return e
}
