package models

import (
	"time"
)

type GamePhase string

const (
	PhaseLobby  GamePhase = "LOBBY"
	PhaseInGame GamePhase = "IN_GAME"
	// PhaseFinished is the phase a room enters once roles are revealed.
	PhaseFinished GamePhase = "FINISHED"
)

type Room struct {
	ID            string    `gorm:"primaryKey;size:64"`
	Name          string    `gorm:"not null"`
	GamePhase     GamePhase `gorm:"not null;default:'LOBBY'"`
	MaxPlayers    int       `gorm:"not null"`
	ImpostorCount int       `gorm:"not null"`
	IsPrivate     bool      `gorm:"not null;default:false;index"`
	PasswordHash  string
	ThemeType     ThemeKind `gorm:"not null"`
	ThemeValue    string    `gorm:"not null"`
	CreatedAt     time.Time

	Players []Player `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE"`
}

// Theme rebuilds the sum type from its two persisted columns.
func (r *Room) Theme() (Theme, error) {
	return ParseTheme(r.ThemeType, r.ThemeValue)
}

func (r *Room) SetTheme(t Theme) {
	r.ThemeType = t.Kind()
	r.ThemeValue = t.Value()
}

func (r *Room) HasPassword() bool {
	return r.IsPrivate && r.PasswordHash != ""
}

func (r *Room) Host() *Player {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return &r.Players[i]
		}
	}
	return nil
}

func (r *Room) Player(id string) *Player {
	for i := range r.Players {
		if r.Players[i].ID == id {
			return &r.Players[i]
		}
	}
	return nil
}

// RoomSummary is a row of the public room listing.
type RoomSummary struct {
	ID          string
	Name        string
	MaxPlayers  int
	IsPrivate   bool
	GamePhase   GamePhase
	PlayerCount int
}
