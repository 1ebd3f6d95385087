package handler

import (
	"net/http"

	"github.com/gorilla/websocket"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/service/pipeline"
)

// Upgrader upgrades HTTP connections to WebSocket; CheckOrigin allows all origins.
var Upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ViewWebsocketHandler registers viewers with the hub so they receive replayed frame results.
func ViewWebsocketHandler(manager *pipeline.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		connection, err := Upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("WebSocket upgrade error: %v", err)
			return
		}

		hub := manager.GetWebsocketService()
		hub.Register(connection)
		defer hub.Unregister(connection)

		for {
			if _, _, err := connection.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Warning("Viewer disconnected with error: %v", err)
				}
				return
			}
		}
	}
}
