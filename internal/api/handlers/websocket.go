package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/ws"
)

// HandleTableWebSocket handles real-time table communication
func HandleTableWebSocket(manager *game.TableManager, hub *ws.Hub, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleWebSocket(manager, hub, cfg)
}
