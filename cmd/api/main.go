package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"launchpad-backend/internal/app"
	"launchpad-backend/internal/config"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config load failed")
	}

	fiberApp, db, rdb, ticker, err := app.CreateApp(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("App create failed")
	}

	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			log.Fatal().Err(err).Msg("DB handle unavailable")
		}
		if err := sqlDB.Ping(); err != nil {
			log.Fatal().Err(err).Msg("Postgres connection failed")
		}
		log.Info().Msg("Postgres connected")
	}
	if rdb != nil {
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Msg("Redis connection failed")
		}
		log.Info().Msg("Redis connected")
	}

	if ticker != nil {
		scheduler, err := ticker.Start()
		if err != nil {
			log.Fatal().Err(err).Msg("Block ticker failed to start")
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server running")
		if err := fiberApp.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down")
	_ = fiberApp.Shutdown()
}
