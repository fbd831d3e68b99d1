package models

import "time"

type Role string

const (
	RoleCrewmate  Role = "CREWMATE"
	RoleImpostor  Role = "IMPOSTOR"
	RoleSpectator Role = "SPECTATOR"
)

type Player struct {
	ID        string `gorm:"primaryKey;size:64"`
	RoomID    string `gorm:"not null;size:64;index"`
	Name      string `gorm:"not null"`
	IsHost    bool   `gorm:"not null;default:false"`
	IsReady   bool   `gorm:"not null;default:false"`
	Role      *Role
	Word      *string
	CreatedAt time.Time
}

// Assignment is the role and word computed for one player by a single
// assignment pass. Word is nil for impostors.
type Assignment struct {
	PlayerID string
	Role     Role
	Word     *string
}
