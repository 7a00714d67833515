// @title           ManageMe API
// @version         1.0
// @description     Task and reminder API: scheduling, recurrence, soft delete, calendar queries.
// @host            localhost:8080
// @BasePath        /api/v1

// @securityDefinitions.apikey  CookieAuth
// @in                          header
// @name                        Cookie
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/karimahmed315/task-manager/internal/app"
	"github.com/karimahmed315/task-manager/internal/config"

	_ "github.com/karimahmed315/task-manager/docs"
)

func main() {
	level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := log.With().Str("service", "manageme").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	logger.Info().Msg("config loaded, connecting to DB and Redis")

	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("app init")
	}

	pollCtx, stopPoller := context.WithCancel(context.Background())
	go application.RunPoller(pollCtx)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      application.Router(),
		ReadTimeout:  cfg.HTTP.ReadTimeout.Duration(),
		WriteTimeout: cfg.HTTP.WriteTimeout.Duration(),
		IdleTimeout:  cfg.HTTP.IdleTimeout.Duration(),
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	stopPoller()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown")
	}

	if err := application.Close(ctx); err != nil {
		logger.Fatal().Err(err).Msg("app close")
	}
}
