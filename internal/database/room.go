package database

import (
	"context"

	"github.com/thereayou/wordspy/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) CreateRoom(ctx context.Context, room *models.Room) error {
	return d.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error
}

// GetRoomWithPlayers loads a room and its players, oldest player first.
// Both queries run in one read-only transaction so a concurrent commit is
// seen entirely or not at all.
func (d *Database) GetRoomWithPlayers(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	err := d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.
			Preload("Players", func(db *gorm.DB) *gorm.DB {
				return db.Order("created_at ASC, id ASC")
			}).
			First(&room, "id = ?", roomID).Error
	}, d.readOpts...)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) ListPublicRooms(ctx context.Context) ([]models.RoomSummary, error) {
	var rooms []models.RoomSummary
	err := d.db.WithContext(ctx).
		Model(&models.Room{}).
		Select("rooms.id, rooms.name, rooms.max_players, rooms.is_private, rooms.game_phase, COUNT(players.id) AS player_count").
		Joins("LEFT JOIN players ON players.room_id = rooms.id").
		Where("rooms.is_private = ?", false).
		Group("rooms.id, rooms.name, rooms.max_players, rooms.is_private, rooms.game_phase, rooms.created_at").
		Order("rooms.created_at ASC").
		Scan(&rooms).Error
	if err != nil {
		return nil, err
	}
	return rooms, nil
}

func (d *Database) UpdateRoom(ctx context.Context, roomID string, fields map[string]interface{}) error {
	res := d.db.WithContext(ctx).Model(&models.Room{}).Where("id = ?", roomID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteRoom removes the room and every player in it.
func (d *Database) DeleteRoom(ctx context.Context, roomID string) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Player{}, "room_id = ?", roomID).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Room{}, "id = ?", roomID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
