package websocket

import (
	"context"
	"sync"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/canvas"
	"blueprint/internal/catalog"

	"github.com/rs/zerolog"
)

// Hub maintains the set of active rooms and routes messages to them
type Hub struct {
	// Rooms indexed by flowchart ID
	Rooms map[uint]*Room

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Broadcast messages to clients in a specific room
	Broadcast chan Message

	mu sync.RWMutex

	catalog  catalog.Catalog
	settings canvas.Settings
	Logger   zerolog.Logger
}

func NewHub(cat catalog.Catalog, settings canvas.Settings, logger zerolog.Logger) *Hub {
	return &Hub{
		Rooms:      make(map[uint]*Room),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Broadcast:  make(chan Message, 256),
		catalog:    cat,
		settings:   settings,
		Logger:     logger,
	}
}

// Run starts the hub's main event loop and returns when ctx is done
func (h *Hub) Run(ctx context.Context) error {
	// Cleanup ticker for removing empty rooms
	cleanupTicker := time.NewTicker(5 * time.Minute)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case message := <-h.Broadcast:
			h.broadcastMessage(message)

		case <-cleanupTicker.C:
			h.cleanupEmptyRooms()
		}
	}
}

// registerClient opens the room on first join, using the graph the client
// loaded, and attaches a controller over the shared graph to the client.
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	room, exists := h.Rooms[client.FlowchartID]
	if !exists {
		graph := client.initialGraph
		if graph == nil {
			graph = models.NewGraph()
		}
		room = NewRoom(client.FlowchartID, graph, h.Logger)
		h.Rooms[client.FlowchartID] = room
		h.Logger.Info().Uint("flowchartId", client.FlowchartID).Msg("Created new room")
	}
	h.mu.Unlock()

	room.Edit(func(g *models.Graph) {
		opts := []canvas.Option{
			canvas.WithSettings(h.settings),
			canvas.WithLogger(client.Logger),
		}
		if client.initialViewport != nil {
			opts = append(opts, canvas.WithViewport(*client.initialViewport))
		}
		client.Controller = canvas.NewController(g, h.catalog, client.canvasSize, opts...)
	})
	client.initialGraph = nil

	room.AddClient(client)

	// Start the sequential processor worker
	go client.processWorker()
}

// unregisterClient unregisters a client from a room. It is called by the
// client's process worker after its queue is drained, so nothing writes to
// Send once it is closed.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, exists := h.Rooms[client.FlowchartID]
	if !exists {
		return
	}

	room.RemoveClient(client)
	close(client.Send)

	if room.IsEmpty() {
		delete(h.Rooms, client.FlowchartID)
		h.Logger.Info().Uint("flowchartId", client.FlowchartID).Msg("Removed empty room")
	}
}

// broadcastMessage broadcasts a message to the appropriate room
// Note: Messages are already processed by clients before reaching here
func (h *Hub) broadcastMessage(message Message) {
	room, exists := h.room(message.FlowchartID)
	if !exists {
		h.Logger.Warn().
			Uint("flowchartId", message.FlowchartID).
			Str("type", string(message.Type)).
			Msg("Room not found for broadcast")
		return
	}

	room.Broadcast(message)

	h.Logger.Debug().
		Str("type", string(message.Type)).
		Uint("flowchartId", message.FlowchartID).
		Str("clientId", message.ClientID).
		Msg("Broadcasted message")
}

func (h *Hub) room(flowchartID uint) (*Room, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	room, ok := h.Rooms[flowchartID]
	return room, ok
}

// ApplyRemote forwards graph changes made through another server to the
// local room of that flowchart, if one is open.
func (h *Hub) ApplyRemote(flowchartID uint, changes []canvas.Change) {
	if room, ok := h.room(flowchartID); ok {
		room.ApplyRemote(changes)
	}
}

// Reload replaces the graph of an open room
func (h *Hub) Reload(flowchartID uint, graph *models.Graph) {
	if room, ok := h.room(flowchartID); ok {
		room.Reload(graph)
	}
}

// Close notifies the open room of a deleted flowchart
func (h *Hub) Close(flowchartID uint) {
	if room, ok := h.room(flowchartID); ok {
		room.Broadcast(NewErrorMessage(flowchartID, "Flowchart was deleted", nil))
	}
}

// cleanupEmptyRooms removes empty rooms
func (h *Hub) cleanupEmptyRooms() {
	h.mu.Lock()
	defer h.mu.Unlock()

	emptyRooms := make([]uint, 0)
	for flowchartID, room := range h.Rooms {
		if room.IsEmpty() {
			emptyRooms = append(emptyRooms, flowchartID)
		}
	}

	for _, flowchartID := range emptyRooms {
		delete(h.Rooms, flowchartID)
		h.Logger.Info().Uint("flowchartId", flowchartID).Msg("Cleaned up empty room")
	}

	if len(emptyRooms) > 0 {
		h.Logger.Info().
			Int("cleanedRooms", len(emptyRooms)).
			Int("activeRooms", len(h.Rooms)).
			Msg("Room cleanup completed")
	}
}

// GetRoomStats returns the number of clients per open flowchart
func (h *Hub) GetRoomStats() map[uint]int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make(map[uint]int)
	for flowchartID, room := range h.Rooms {
		stats[flowchartID] = room.ClientCount()
	}
	return stats
}

// GetActiveUsersInRoom returns active users in a specific room
func (h *Hub) GetActiveUsersInRoom(flowchartID uint) []UserInfo {
	room, exists := h.room(flowchartID)
	if !exists {
		return []UserInfo{}
	}
	return room.GetActiveUsers()
}
