package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/srrathi/cyberplace-be/internal/realtime"
	"github.com/srrathi/cyberplace-be/pkg/response"
)

type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(hub *realtime.Hub, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the CORS middleware.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleWebSocket upgrades the request and hands the socket to the hub. The
// connection starts anonymous; clients authenticate over the socket itself.
// GET /api/v1/ws
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remoteAddr", c.ClientIP(), "error", err)
		return
	}

	client := h.hub.Connect(conn)
	h.logger.Info("websocket connected", "connectionId", client.ID(), "remoteAddr", c.ClientIP())
	h.hub.Serve(client)
}

// Stats exposes connection counters and the online roster.
// GET /api/v1/realtime/stats
func (h *WSHandler) Stats(c *gin.Context) {
	response.OK(c, gin.H{
		"metrics": h.hub.Registry().Metrics(),
		"online":  h.hub.Registry().OnlineIdentities(),
	})
}
