package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	ws "github.com/ikkim/replydesk-backend/internal/websocket"
	"github.com/ikkim/replydesk-backend/internal/middleware"
)

type RealtimeController struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts websocket upgrades from allowedOrigins only.
func NewRealtimeController(hub *ws.Hub, allowedOrigins []string) *RealtimeController {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &RealtimeController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			},
		},
	}
}

// Connect upgrades to a websocket that receives the caller's events.
// The token may come as ?token= since browsers cannot set headers on upgrades.
// GET /ws
func (ctrl *RealtimeController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, userID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id": userID,
	})
}
