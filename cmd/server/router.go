package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/thereayou/wordspy/internal/config"
	"github.com/thereayou/wordspy/internal/handlers"
	"github.com/thereayou/wordspy/internal/middleware"
)

func newRouter(cfg *config.Config, logger zerolog.Logger, db handlers.Pinger, roomH *handlers.RoomHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))

	corsCfg := cors.Config{
		AllowMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 1 && cfg.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORSOrigins
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", handlers.Health(db))

	api := r.Group("/api")
	api.Use(middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	handlers.RegisterRoomRoutes(api, roomH)

	return r
}
