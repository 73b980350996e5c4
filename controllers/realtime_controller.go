package controllers

import (
	"log"
	"net/http"

	"hotel-reservation/realtime"
	"hotel-reservation/services"
	"hotel-reservation/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Cross-origin policy is enforced by the CORS layer; the socket itself
	// is gated by the access token below.
	CheckOrigin: func(*http.Request) bool { return true },
}

type RealtimeController struct {
	Hub *realtime.Hub
}

func NewRealtimeController(hub *realtime.Hub) *RealtimeController {
	return &RealtimeController{Hub: hub}
}

// Connect upgrades the request and subscribes the client to its private
// channel; admins also join the shared admin-room channel.
func (ctrl *RealtimeController) Connect(c *gin.Context) {
	claims, err := utils.ParseAccessToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": gin.H{"code": "error.unauthorized", "message": "invalid or expired access token"},
		})
		return
	}

	channels := []string{services.UserChannel(claims.UserID)}
	if claims.IsAdmin {
		channels = append(channels, services.AdminChannel)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	ctrl.Hub.Attach(conn, channels...)
}
