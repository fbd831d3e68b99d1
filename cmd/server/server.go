package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/thereayou/wordspy/internal/config"
	"github.com/thereayou/wordspy/internal/database"
	"github.com/thereayou/wordspy/internal/handlers"
	"github.com/thereayou/wordspy/internal/lock"
	"github.com/thereayou/wordspy/internal/random"
	"github.com/thereayou/wordspy/internal/services"
	"github.com/thereayou/wordspy/internal/themes"
)

type Server struct {
	Router *gin.Engine
	DB     *database.Database
	Redis  *redis.Client
	Rooms  *services.RoomService

	cfg    *config.Config
	logger zerolog.Logger
	http   *http.Server
}

func NewServer(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	dbConn, err := database.Connect(database.Options{
		Driver:  cfg.DatabaseDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.DBVerbose,
		Logger:  logger,
	})
	if err != nil {
		return nil, fmt.Errorf("database connect: %w", err)
	}

	catalog := themes.Builtin()
	if cfg.ThemesFile != "" {
		if catalog, err = themes.LoadFile(cfg.ThemesFile); err != nil {
			dbConn.Close()
			return nil, err
		}
	}
	logger.Info().Strs("themes", catalog.Names()).Msg("theme catalog loaded")

	rng, err := random.NewSeeded()
	if err != nil {
		dbConn.Close()
		return nil, err
	}

	s := &Server{DB: dbConn, cfg: cfg, logger: logger}

	var locker lock.Locker = lock.NewLocal()
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			dbConn.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			dbConn.Close()
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		s.Redis = rdb
		locker = lock.NewRedis(rdb, cfg.LockTTL, rng, logger.With().Str("component", "lock").Logger())
		logger.Info().Msg("using redis room lock")
	}

	assigner := services.NewRoleAssigner(catalog, rng, logger.With().Str("component", "roles").Logger())
	s.Rooms = services.NewRoomService(dbConn, locker, assigner, rng, cfg.StoreTimeout,
		logger.With().Str("component", "rooms").Logger())

	gin.SetMode(cfg.GinMode)
	s.Router = newRouter(cfg, logger, dbConn, handlers.NewRoomHandler(s.Rooms, logger))

	return s, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.http = &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("port", s.cfg.Port).Msg("server starting")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *Server) Close() {
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			s.logger.Warn().Err(err).Msg("redis close")
		}
	}
	if err := s.DB.Close(); err != nil {
		s.logger.Warn().Err(err).Msg("database close")
	}
}
