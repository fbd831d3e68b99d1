package dto

import (
	"errors"

	"github.com/thereayou/wordspy/internal/models"
)

type ThemePayload struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ToTheme converts the payload to a theme. A nil payload yields a nil theme,
// which the room service rejects.
func (p *ThemePayload) ToTheme() (models.Theme, error) {
	if p == nil {
		return nil, nil
	}
	return models.ParseTheme(models.ThemeKind(p.Type), p.Value)
}

type RoomSettingsPayload struct {
	MaxPlayers    int           `json:"maxPlayers" binding:"min=1"`
	ImpostorCount int           `json:"impostorCount" binding:"min=0"`
	IsPrivate     bool          `json:"isPrivate"`
	Password      string        `json:"password"`
	Theme         *ThemePayload `json:"theme"`
}

type CreateRoomRequest struct {
	Name       string              `json:"name" binding:"required"`
	PlayerName string              `json:"playerName" binding:"required"`
	Settings   RoomSettingsPayload `json:"settings"`
}

type JoinRoomRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password"`
}

type UpdatePlayerRequest struct {
	IsReady *bool `json:"isReady" binding:"required"`
}

type UpdateSettingsRequest struct {
	Theme *ThemePayload `json:"theme"`
}

var ErrMissingTheme = errors.New("invalid settings provided")

func (r UpdateSettingsRequest) ToTheme() (models.Theme, error) {
	if r.Theme == nil {
		return nil, ErrMissingTheme
	}
	return r.Theme.ToTheme()
}

type PlayerResponse struct {
	ID      string  `json:"id"`
	RoomID  string  `json:"roomId"`
	Name    string  `json:"name"`
	IsHost  bool    `json:"isHost"`
	IsReady bool    `json:"isReady"`
	Role    *string `json:"role"`
	Word    *string `json:"word"`
}

type SettingsResponse struct {
	MaxPlayers    int          `json:"maxPlayers"`
	ImpostorCount int          `json:"impostorCount"`
	IsPrivate     bool         `json:"isPrivate"`
	HasPassword   bool         `json:"hasPassword"`
	Theme         ThemePayload `json:"theme"`
}

type RoomResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	GamePhase string           `json:"gamePhase"`
	Players   []PlayerResponse `json:"players"`
	Settings  SettingsResponse `json:"settings"`
}

// PlayerRoomResponse is returned to the player who just created or joined
// a room, so the client learns its own id.
type PlayerRoomResponse struct {
	RoomResponse
	PlayerID string `json:"playerId"`
}

type LeaveRoomResponse struct {
	RoomClosed bool          `json:"roomClosed"`
	Room       *RoomResponse `json:"room,omitempty"`
}

type RoomSummaryResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsPrivate   bool   `json:"isPrivate"`
	GamePhase   string `json:"gamePhase"`
	PlayerCount int    `json:"playerCount"`
}

func NewRoomResponse(room *models.Room) RoomResponse {
	players := make([]PlayerResponse, len(room.Players))
	for i, p := range room.Players {
		var role *string
		if p.Role != nil {
			r := string(*p.Role)
			role = &r
		}
		players[i] = PlayerResponse{
			ID:      p.ID,
			RoomID:  p.RoomID,
			Name:    p.Name,
			IsHost:  p.IsHost,
			IsReady: p.IsReady,
			Role:    role,
			Word:    p.Word,
		}
	}

	return RoomResponse{
		ID:        room.ID,
		Name:      room.Name,
		GamePhase: string(room.GamePhase),
		Players:   players,
		Settings: SettingsResponse{
			MaxPlayers:    room.MaxPlayers,
			ImpostorCount: room.ImpostorCount,
			IsPrivate:     room.IsPrivate,
			HasPassword:   room.HasPassword(),
			Theme: ThemePayload{
				Type:  string(room.ThemeType),
				Value: room.ThemeValue,
			},
		},
	}
}

func NewRoomSummaries(rooms []models.RoomSummary) []RoomSummaryResponse {
	out := make([]RoomSummaryResponse, len(rooms))
	for i, r := range rooms {
		out[i] = RoomSummaryResponse{
			ID:          r.ID,
			Name:        r.Name,
			MaxPlayers:  r.MaxPlayers,
			IsPrivate:   r.IsPrivate,
			GamePhase:   string(r.GamePhase),
			PlayerCount: r.PlayerCount,
		}
	}
	return out
}
