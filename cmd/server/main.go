package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/thereayou/wordspy/internal/config"
	"github.com/thereayou/wordspy/pkg/logger"
)

func main() {
	found := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	l := logger.Setup(cfg.LogLevel, cfg.LogPretty)
	if !found {
		l.Info().Msg(".env not found, using environment variables")
	}

	srv, err := NewServer(cfg, l)
	if err != nil {
		l.Fatal().Err(err).Msg("server setup failed")
	}
	defer srv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("server stopped")
		srv.Close()
		os.Exit(1)
	}
	l.Info().Msg("server exited")
}
