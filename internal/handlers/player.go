package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/wordspy/internal/handlers/dto"
	"github.com/thereayou/wordspy/internal/services"
)

// JoinRoom adds a player to the room.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req dto.JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, playerID, err := h.rooms.JoinRoom(c.Request.Context(), c.Param("id"), services.JoinRoomInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.PlayerRoomResponse{
		RoomResponse: dto.NewRoomResponse(room),
		PlayerID:     playerID,
	})
}

// LeaveRoom removes a player; the host leaving closes the room.
func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	room, err := h.rooms.LeaveRoom(c.Request.Context(), c.Param("id"), c.Param("playerId"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	if room == nil {
		c.JSON(http.StatusOK, dto.LeaveRoomResponse{RoomClosed: true})
		return
	}
	resp := dto.NewRoomResponse(room)
	c.JSON(http.StatusOK, dto.LeaveRoomResponse{Room: &resp})
}

func (h *RoomHandler) UpdatePlayer(c *gin.Context) {
	var req dto.UpdatePlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.SetReady(c.Request.Context(), c.Param("id"), c.Param("playerId"), *req.IsReady)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRoomResponse(room))
}
