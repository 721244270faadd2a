package websocket

import (
	"sync"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/canvas"

	"github.com/rs/zerolog"
)

// Room is the editing session of one flowchart. All clients edit the same
// graph through their own canvas controller.
type Room struct {
	FlowchartID uint
	Clients     map[string]*Client
	Graph       *models.Graph
	mu          sync.RWMutex
	// edit serializes every event that reads or mutates Graph, so events
	// from all clients of the room are processed one at a time.
	edit   sync.Mutex
	Logger zerolog.Logger
}

func NewRoom(flowchartID uint, graph *models.Graph, logger zerolog.Logger) *Room {
	return &Room{
		FlowchartID: flowchartID,
		Clients:     make(map[string]*Client),
		Graph:       graph,
		Logger:      logger,
	}
}

// Edit runs fn with exclusive access to the room graph
func (r *Room) Edit(fn func(g *models.Graph)) {
	r.edit.Lock()
	defer r.edit.Unlock()
	fn(r.Graph)
}

// AddClient adds a client to the room
func (r *Room) AddClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Clients[client.ID] = client
	client.Room = r
	r.Logger.Info().
		Uint("flowchartId", r.FlowchartID).
		Str("clientId", client.ID).
		Int("totalClients", len(r.Clients)).
		Msg("Client joined room")

	r.broadcastUserJoin(client)
}

// RemoveClient removes a client from the room
func (r *Room) RemoveClient(client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.Clients[client.ID]; exists {
		delete(r.Clients, client.ID)
		r.Logger.Info().
			Uint("flowchartId", r.FlowchartID).
			Str("clientId", client.ID).
			Int("remainingClients", len(r.Clients)).
			Msg("Client left room")

		r.broadcastUserLeave(client)
	}
}

// Broadcast sends a message to all clients in the room
func (r *Room) Broadcast(message Message) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.Clients {
		r.deliver(client, message)
	}
}

// BroadcastExcept sends a message to all clients in the room except the sender
func (r *Room) BroadcastExcept(message Message, senderID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, client := range r.Clients {
		if client.ID == senderID {
			continue
		}
		r.deliver(client, message)
	}
}

func (r *Room) deliver(client *Client, message Message) {
	select {
	case client.Send <- message:
	default:
		r.Logger.Warn().
			Str("clientId", client.ID).
			Str("type", string(message.Type)).
			Msg("Client send buffer full, message dropped")
	}
}

// ApplyRemote replays changes made on another server and forwards them to
// every local client.
func (r *Room) ApplyRemote(changes []canvas.Change) {
	applied := make([]canvas.Change, 0, len(changes))
	r.Edit(func(g *models.Graph) {
		for _, ch := range changes {
			if err := canvas.ApplyChange(g, ch); err != nil {
				r.Logger.Warn().Err(err).
					Uint("flowchartId", r.FlowchartID).
					Str("kind", string(ch.Kind)).
					Msg("Skipping remote change")
				continue
			}
			applied = append(applied, ch)
		}
	})
	if len(applied) == 0 {
		return
	}
	r.Broadcast(NewGraphUpdateMessage(r.FlowchartID, "", "", GraphUpdate{Changes: applied, Remote: true}))
}

// Reload swaps the whole graph, e.g. after a save through the REST API.
// Every controller is reset since its interaction may point at nodes that
// are gone.
func (r *Room) Reload(graph *models.Graph) {
	r.Edit(func(g *models.Graph) {
		*g = *graph.Clone()
		r.mu.RLock()
		for _, c := range r.Clients {
			if c.Controller != nil {
				c.Controller.Reset()
			}
		}
		r.mu.RUnlock()
	})
	r.Broadcast(Message{
		Type:        MessageTypeGraphReload,
		FlowchartID: r.FlowchartID,
		Timestamp:   time.Now(),
		Data:        graph,
	})
}

// GetActiveUsers returns a list of active users in the room
func (r *Room) GetActiveUsers() []UserInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeUsers()
}

func (r *Room) activeUsers() []UserInfo {
	users := make([]UserInfo, 0, len(r.Clients))
	for _, client := range r.Clients {
		users = append(users, client.Info())
	}
	return users
}

// IsEmpty returns true if the room has no clients
func (r *Room) IsEmpty() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients) == 0
}

// ClientCount returns the number of clients in the room
func (r *Room) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.Clients)
}

// broadcastUserJoin notifies all clients that a user joined. Callers hold mu.
func (r *Room) broadcastUserJoin(client *Client) {
	message := NewUserJoinMessage(r.FlowchartID, client.Info())
	for _, c := range r.Clients {
		r.deliver(c, message)
	}

	// The newcomer also gets everyone already present
	r.deliver(client, Message{
		Type:        MessageTypeUserJoin,
		FlowchartID: r.FlowchartID,
		Username:    "system",
		Timestamp:   time.Now(),
		Data: map[string]any{
			"activeUsers": r.activeUsers(),
		},
	})
}

// broadcastUserLeave notifies all clients that a user left. Callers hold mu.
func (r *Room) broadcastUserLeave(client *Client) {
	message := NewUserLeaveMessage(r.FlowchartID, client.Info())
	for _, c := range r.Clients {
		r.deliver(c, message)
	}
}
