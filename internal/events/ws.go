package events

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced by the HTTP middleware
	},
}

// WSHandler upgrades the request and keeps the client registered until it
// disconnects. Incoming messages are ignored.
func WSHandler(hub *Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.logger.Debug("websocket upgrade failed", zap.Error(err))
			return
		}

		// Written before Add so it never races a broadcast.
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"type":"welcome","transport":"websocket"}`))

		hub.Add(ws)
		hub.logger.Info("websocket client connected", zap.String("remote", ws.RemoteAddr().String()))

		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		hub.Remove(ws)
		hub.logger.Info("websocket client disconnected", zap.String("remote", ws.RemoteAddr().String()))
	}
}
