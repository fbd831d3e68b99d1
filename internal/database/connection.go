package database

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thereayou/wordspy/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Options struct {
	Driver  string
	DSN     string
	Verbose bool
	Logger  zerolog.Logger
}

// Connect opens the database and migrates the schema.
func Connect(opts Options) (*Database, error) {
	if opts.DSN == "" {
		return nil, errors.New("database DSN is not set")
	}

	gormConfig := &gorm.Config{Logger: logger.Discard}
	if opts.Verbose {
		gormConfig.Logger = logger.New(&opts.Logger, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
		})
	}

	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres, "":
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if opts.Driver == DriverSQLite {
		// One connection keeps in-memory databases alive and serializes writers.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	if err := db.AutoMigrate(&models.Room{}, &models.Player{}); err != nil {
		return nil, fmt.Errorf("auto migration failed: %w", err)
	}

	store := NewDatabase(db)
	store.readOpts = snapshotReadOptions(opts.Driver)
	return store, nil
}
