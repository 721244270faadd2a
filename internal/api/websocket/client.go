package websocket

import (
	"encoding/json"
	"hash/fnv"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/canvas"
	"blueprint/internal/geometry"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512 * 1024 // 512KB

	// Canvas size assumed until the client reports its own
	defaultCanvasWidth  = 1280
	defaultCanvasHeight = 720
)

type Client struct {
	ID string
	// Session identifies the browser tab across reconnects
	Session      string
	Username     string
	FlowchartID  uint
	Color        string
	Hub          *Hub
	Room         *Room
	Conn         *websocket.Conn
	Send         chan Message
	Processor    *MessageProcessor
	ProcessQueue chan Message
	Controller   *canvas.Controller
	Logger       zerolog.Logger

	initialGraph    *models.Graph
	initialViewport *geometry.Viewport
	canvasSize      geometry.Size
}

type ClientOptions struct {
	Session  string
	Username string
	// Graph seeds the room when this client is the first to join
	Graph *models.Graph
	// Viewport restores the camera of a previous session
	Viewport *geometry.Viewport
}

func NewClient(id string, flowchartID uint, hub *Hub, conn *websocket.Conn, processor *MessageProcessor, opts ClientOptions, logger zerolog.Logger) *Client {
	username := opts.Username
	if username == "" {
		username = "guest-" + id[:min(len(id), 8)]
	}
	client := &Client{
		ID:              id,
		Session:         opts.Session,
		Username:        username,
		FlowchartID:     flowchartID,
		Color:           generateUserColor(id),
		Hub:             hub,
		Conn:            conn,
		Send:            make(chan Message, 256),
		Processor:       processor,
		ProcessQueue:    make(chan Message, 100),
		Logger:          logger.With().Str("clientId", id).Uint("flowchartId", flowchartID).Logger(),
		initialGraph:    opts.Graph,
		initialViewport: opts.Viewport,
		canvasSize:      geometry.Size{Width: defaultCanvasWidth, Height: defaultCanvasHeight},
	}
	return client
}

func (c *Client) Info() UserInfo {
	return UserInfo{ClientID: c.ID, Username: c.Username, Color: c.Color}
}

func (c *Client) ReadPump() {
	defer func() {
		// The worker unregisters once the queue is drained
		close(c.ProcessQueue)
		c.Conn.Close()
	}()

	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Logger.Error().Err(err).Msg("WebSocket read error")
			}
			break
		}

		var msg Message
		if err = json.Unmarshal(messageBytes, &msg); err != nil {
			c.Logger.Error().Err(err).Msg("Failed to unmarshal message")
			c.sendError("Invalid message format", err)
			continue
		}

		if !c.validateMessage(&msg) {
			continue
		}
		c.stamp(&msg)

		// Fast path: presence messages skip the room's edit queue
		switch msg.Type {
		case MessageTypePing:
			c.reply(Message{Type: MessageTypePong, FlowchartID: c.FlowchartID, Timestamp: time.Now()})
			continue
		case MessageTypeCursorMove:
			c.Hub.Broadcast <- msg
			continue
		}

		// Slow path: queue editor events for sequential processing
		select {
		case c.ProcessQueue <- msg:
		default:
			c.Logger.Warn().
				Str("type", string(msg.Type)).
				Msg("Process queue full, dropping message")
			c.sendError("Server is busy, please try again", nil)
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			messageBytes, err := json.Marshal(message)
			if err != nil {
				c.Logger.Error().Err(err).Msg("Failed to marshal message")
				continue
			}
			w.Write(messageBytes)

			// Add queued messages to the current websocket message
			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				msgBytes, _ := json.Marshal(<-c.Send)
				w.Write(msgBytes)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// validateMessage rejects frames addressed to another flowchart
func (c *Client) validateMessage(msg *Message) bool {
	if msg.FlowchartID != 0 && msg.FlowchartID != c.FlowchartID {
		c.sendError("Message flowchart ID does not match connection flowchart ID", nil)
		return false
	}
	return true
}

func (c *Client) stamp(msg *Message) {
	msg.ClientID = c.ID
	msg.Username = c.Username
	msg.FlowchartID = c.FlowchartID
	msg.Timestamp = time.Now()
}

func (c *Client) reply(msg Message) {
	select {
	case c.Send <- msg:
	default:
		c.Logger.Warn().Str("type", string(msg.Type)).Msg("Client send buffer full, reply dropped")
	}
}

// sendError sends an error message to this client only
func (c *Client) sendError(errorMsg string, err error) {
	c.reply(NewErrorMessage(c.FlowchartID, errorMsg, err))
}

// processWorker processes messages from the queue sequentially. The hub
// starts it once the client has joined its room. It owns the lifetime of
// Send: the client is unregistered, and Send closed, only after the queue
// is drained.
func (c *Client) processWorker() {
	c.Logger.Debug().Msg("Process worker started")

	for msg := range c.ProcessQueue {
		if c.Processor == nil {
			continue
		}
		result, err := c.Processor.ProcessMessage(c, &msg)
		if err != nil {
			c.Logger.Error().
				Err(err).
				Str("type", string(msg.Type)).
				Msg("Failed to process message")
			c.sendError(err.Error(), err)
			continue
		}
		if result.Reply != nil {
			c.reply(*result.Reply)
		}
		if result.Broadcast != nil {
			c.Hub.Broadcast <- *result.Broadcast
		}
	}

	if c.Processor != nil {
		c.Processor.Leave(c)
	}
	c.Hub.Unregister <- c
	c.Logger.Debug().Msg("Process worker stopped")
}

// generateUserColor picks a stable color for a client id
func generateUserColor(id string) string {
	colors := []string{
		"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
		"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
		"#F8B739", "#52B788", "#E76F51", "#2A9D8F",
	}
	h := fnv.New32a()
	h.Write([]byte(id))
	return colors[h.Sum32()%uint32(len(colors))]
}
