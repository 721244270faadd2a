package endpoints

import (
	"net/http"

	"blueprint"
	"blueprint/internal/api/service"
	ws "blueprint/internal/api/websocket"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origins are filtered by the CORS middleware
		return true
	},
}

type websocketHandler struct {
	hub              *ws.Hub
	processor        *ws.MessageProcessor
	flowchartService *service.FlowchartService
	logger           zerolog.Logger
}

func newWebSocketHandler(hub *ws.Hub, processor *ws.MessageProcessor, flowcharts *service.FlowchartService) *websocketHandler {
	return &websocketHandler{
		hub:              hub,
		processor:        processor,
		flowchartService: flowcharts,
		logger:           blueprint.Logger,
	}
}

// WebSocketHandler sets up the editing session routes
func WebSocketHandler(router *graceful.Graceful, hub *ws.Hub, processor *ws.MessageProcessor, flowcharts *service.FlowchartService) {
	h := newWebSocketHandler(hub, processor, flowcharts)

	wsRoutes := router.Group("/api/v1/ws")
	{
		wsRoutes.GET("/flowcharts/:id", h.handleWebSocket)
		wsRoutes.GET("/flowcharts/:id/users", h.getActiveUsers)
		wsRoutes.GET("/stats", h.getRoomStats)
	}
}

// handleWebSocket opens an editing session on one flowchart. The optional
// session query parameter restores the camera of a previous connection.
func (slf *websocketHandler) handleWebSocket(c *gin.Context) {
	flowchartID, ok := parseID(c)
	if !ok {
		return
	}

	flowchart, err := slf.flowchartService.FindByID(flowchartID)
	if err != nil {
		slf.logger.Error().Err(err).Uint("flowchartId", flowchartID).Msg("Failed to load flowchart for WebSocket")
		respondFlowchartError(c, err, "Failed to load flowchart")
		return
	}

	opts := ws.ClientOptions{
		Session:  c.Query("session"),
		Username: c.Query("name"),
		Graph:    &flowchart.Graph,
	}
	if opts.Session != "" {
		if vp, found := slf.flowchartService.LoadViewport(flowchartID, opts.Session); found {
			opts.Viewport = &vp
		}
	}
	if opts.Viewport == nil {
		opts.Viewport = flowchart.Graph.Viewport
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slf.logger.Error().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	clientID := uuid.New().String()
	client := ws.NewClient(clientID, flowchartID, slf.hub, conn, slf.processor, opts, slf.logger)

	select {
	case slf.hub.Register <- client:
	case <-c.Request.Context().Done():
		_ = conn.Close()
		return
	}

	slf.logger.Info().
		Str("clientId", clientID).
		Str("username", client.Username).
		Uint("flowchartId", flowchartID).
		Msg("WebSocket connection established")

	go client.WritePump()
	go client.ReadPump()
}

// getActiveUsers returns the list of active users in a room
func (slf *websocketHandler) getActiveUsers(c *gin.Context) {
	flowchartID, ok := parseID(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flowchartId": flowchartID,
		"users":       slf.hub.GetActiveUsersInRoom(flowchartID),
	})
}

// getRoomStats returns statistics about all active rooms
func (slf *websocketHandler) getRoomStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms": slf.hub.GetRoomStats(),
	})
}
