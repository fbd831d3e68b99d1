package handlers

import "github.com/gin-gonic/gin"

func RegisterRoomRoutes(api *gin.RouterGroup, h *RoomHandler) {
	rooms := api.Group("/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.POST("", h.CreateRoom)
		rooms.GET("/:id", h.GetRoom)
		rooms.PATCH("/:id/settings", h.UpdateSettings)

		rooms.POST("/:id/players", h.JoinRoom)
		rooms.PATCH("/:id/players/:playerId", h.UpdatePlayer)
		rooms.DELETE("/:id/players/:playerId", h.LeaveRoom)

		rooms.POST("/:id/start", h.StartGame)
		rooms.POST("/:id/restart", h.RestartGame)
		rooms.POST("/:id/play-again", h.PlayAgain)
	}
}
