package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/thereayou/wordspy/internal/models"
	"gorm.io/gorm"
)

// ErrNotFound is returned when a room or player id does not resolve.
var ErrNotFound = gorm.ErrRecordNotFound

// Store is the persistence contract the room lifecycle is written against.
// Every method honours the deadline carried by ctx.
type Store interface {
	CreateRoom(ctx context.Context, room *models.Room) error
	CreatePlayer(ctx context.Context, player *models.Player) error
	GetRoomWithPlayers(ctx context.Context, roomID string) (*models.Room, error)
	ListPublicRooms(ctx context.Context) ([]models.RoomSummary, error)
	UpdateRoom(ctx context.Context, roomID string, fields map[string]interface{}) error
	UpdatePlayer(ctx context.Context, playerID string, fields map[string]interface{}) error
	SetPlayerReady(ctx context.Context, roomID, playerID string, ready bool) (bool, error)
	ResetPlayers(ctx context.Context, roomID string) error
	DeleteRoom(ctx context.Context, roomID string) error
	DeletePlayer(ctx context.Context, playerID string) error
	// Transaction runs fn against a Store bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type Database struct {
	db *gorm.DB
	// readOpts are the options of the transaction a snapshot read runs in.
	readOpts []*sql.TxOptions
}

var _ Store = (*Database)(nil)

func NewDatabase(db *gorm.DB) *Database {
	return &Database{db: db}
}

func (d *Database) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{db: tx, readOpts: d.readOpts})
	})
}

// snapshotReadOptions returns the transaction options that make the room row
// and its players one consistent read for the given driver. sqlite
// transactions are already serializable and take no options.
func snapshotReadOptions(driver string) []*sql.TxOptions {
	if driver == DriverSQLite {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead, ReadOnly: true}}
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
