package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultSQLitePath = "wordspy.db"

type Config struct {
	Port    string
	GinMode string

	DatabaseDriver string
	DatabaseURL    string
	DBVerbose      bool

	// RedisURL enables the shared room lock. Empty means an in-process lock.
	RedisURL string

	StoreTimeout time.Duration
	LockTTL      time.Duration

	LogLevel  string
	LogPretty bool

	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int

	// ThemesFile overrides the embedded theme catalog.
	ThemesFile string
}

// LoadDotEnv loads .env.local, falling back to .env. Missing files are not an error.
func LoadDotEnv() bool {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil {
			return false
		}
	}
	return true
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "release"),
		DatabaseDriver: getEnv("DATABASE_DRIVER", "postgres"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ThemesFile:     os.Getenv("THEMES_FILE"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.DBVerbose, err = getBool("DB_VERBOSE", false); err != nil {
		return nil, err
	}
	if cfg.LogPretty, err = getBool("LOG_PRETTY", false); err != nil {
		return nil, err
	}
	if cfg.StoreTimeout, err = getDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.LockTTL, err = getDuration("LOCK_TTL", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.RateLimitRPS, err = getFloat("RATE_LIMIT_RPS", 20); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = getInt("RATE_LIMIT_BURST", 40); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		if cfg.DatabaseDriver != "sqlite" {
			return nil, fmt.Errorf("DATABASE_URL is required for driver %q", cfg.DatabaseDriver)
		}
		cfg.DatabaseURL = defaultSQLitePath
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		return nil, fmt.Errorf("invalid GIN_MODE %q", cfg.GinMode)
	}
	if cfg.StoreTimeout <= 0 {
		return nil, fmt.Errorf("STORE_TIMEOUT must be positive, got %s", cfg.StoreTimeout)
	}
	if cfg.LockTTL <= 0 {
		return nil, fmt.Errorf("LOCK_TTL must be positive, got %s", cfg.LockTTL)
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return b, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return d, nil
}

func getFloat(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return f, nil
}

func getInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
	return n, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
