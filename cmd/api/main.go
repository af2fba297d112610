package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/wonny/stockpulse/internal/app"
	"github.com/wonny/stockpulse/internal/pkg/config"
	"github.com/wonny/stockpulse/internal/pkg/logger"
)

const (
	serviceName    = "stockpulse-api"
	serviceVersion = "2.0.0"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	if err := logger.Init(logger.Config{
		Level:          cfg.Logging.Level,
		Format:         cfg.Logging.Format,
		FileEnabled:    cfg.Logging.FileEnabled,
		FilePath:       cfg.Logging.FilePath,
		RotationSize:   cfg.Logging.RotationSize,
		RetentionDays:  cfg.Logging.RetentionDays,
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	log.Info().
		Str("version", serviceVersion).
		Strs("watchlist", cfg.Dashboard.Watchlist).
		Msg("🚀 Starting StockPulse API Server...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg, app.NewGateway(cfg), serviceVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if err := a.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}
