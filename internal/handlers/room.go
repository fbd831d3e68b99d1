package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/thereayou/wordspy/internal/handlers/dto"
	"github.com/thereayou/wordspy/internal/models"
	"github.com/thereayou/wordspy/internal/services"
)

// RoomService is the room lifecycle as seen by the HTTP layer.
type RoomService interface {
	CreateRoom(ctx context.Context, in services.CreateRoomInput) (*models.Room, error)
	GetRoom(ctx context.Context, roomID string) (*models.Room, error)
	ListPublicRooms(ctx context.Context) ([]models.RoomSummary, error)
	JoinRoom(ctx context.Context, roomID string, in services.JoinRoomInput) (*models.Room, string, error)
	LeaveRoom(ctx context.Context, roomID, playerID string) (*models.Room, error)
	SetReady(ctx context.Context, roomID, playerID string, ready bool) (*models.Room, error)
	UpdateSettings(ctx context.Context, roomID string, theme models.Theme) (*models.Room, error)
	StartGame(ctx context.Context, roomID string) (*models.Room, error)
	RestartGame(ctx context.Context, roomID string) (*models.Room, error)
	PlayAgain(ctx context.Context, roomID string) (*models.Room, error)
}

type RoomHandler struct {
	rooms  RoomService
	logger zerolog.Logger
}

func NewRoomHandler(rooms RoomService, logger zerolog.Logger) *RoomHandler {
	return &RoomHandler{rooms: rooms, logger: logger}
}

// ListRooms lists public rooms with their player counts.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.rooms.ListPublicRooms(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoomSummaries(rooms))
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	theme, err := req.Settings.Theme.ToTheme()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), services.CreateRoomInput{
		Name:          req.Name,
		PlayerName:    req.PlayerName,
		MaxPlayers:    req.Settings.MaxPlayers,
		ImpostorCount: req.Settings.ImpostorCount,
		IsPrivate:     req.Settings.IsPrivate,
		Password:      req.Settings.Password,
		Theme:         theme,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := dto.PlayerRoomResponse{RoomResponse: dto.NewRoomResponse(room)}
	if host := room.Host(); host != nil {
		resp.PlayerID = host.ID
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

// UpdateSettings replaces the room theme.
func (h *RoomHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	theme, err := req.ToTheme()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.UpdateSettings(c.Request.Context(), c.Param("id"), theme)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}

func (h *RoomHandler) StartGame(c *gin.Context) {
	h.transition(c, h.rooms.StartGame)
}

func (h *RoomHandler) RestartGame(c *gin.Context) {
	h.transition(c, h.rooms.RestartGame)
}

func (h *RoomHandler) PlayAgain(c *gin.Context) {
	h.transition(c, h.rooms.PlayAgain)
}

func (h *RoomHandler) transition(c *gin.Context, op func(ctx context.Context, roomID string) (*models.Room, error)) {
	room, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}
