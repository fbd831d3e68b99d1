package database

import (
	"context"

	"github.com/thereayou/wordspy/internal/models"
	"gorm.io/gorm"
)

func (d *Database) CreatePlayer(ctx context.Context, player *models.Player) error {
	return d.db.WithContext(ctx).Create(player).Error
}

func (d *Database) UpdatePlayer(ctx context.Context, playerID string, fields map[string]interface{}) error {
	res := d.db.WithContext(ctx).Model(&models.Player{}).Where("id = ?", playerID).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPlayerReady reports whether a player with that id exists in that room.
func (d *Database) SetPlayerReady(ctx context.Context, roomID, playerID string, ready bool) (bool, error) {
	res := d.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("id = ? AND room_id = ?", playerID, roomID).
		Update("is_ready", ready)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// ResetPlayers clears roles and words in a room; only the host stays ready.
func (d *Database) ResetPlayers(ctx context.Context, roomID string) error {
	return d.db.WithContext(ctx).
		Model(&models.Player{}).
		Where("room_id = ?", roomID).
		Updates(map[string]interface{}{
			"role":     nil,
			"word":     nil,
			"is_ready": gorm.Expr("is_host"),
		}).Error
}

func (d *Database) DeletePlayer(ctx context.Context, playerID string) error {
	res := d.db.WithContext(ctx).Delete(&models.Player{}, "id = ?", playerID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
