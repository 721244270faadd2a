package realtime

import (
	"encoding/json"
	"fmt"
	"time"

	"blueprint/pkg"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBufSize    = 256

	// Flowcharts a single watcher may follow at once
	maxSubscriptions = 32
)

const (
	actionSubscribe   = "subscribe"
	actionUnsubscribe = "unsubscribe"
)

// Client is a read-only watcher connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// incomingMsg represents a command from the client.
type incomingMsg struct {
	Action      string `json:"action" validate:"required,oneof=subscribe unsubscribe"`
	FlowchartID uint   `json:"flowchartId" validate:"required,gt=0"`
}

// outgoingMsg is the envelope sent to the client.
type outgoingMsg struct {
	Type        string          `json:"type"`
	FlowchartID uint            `json:"flowchartId"`
	Payload     json.RawMessage `json:"payload"`
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
}

// ReadPump reads messages from the WebSocket connection.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn().Err(err).Msg("ws read error")
			}
			break
		}

		// Replies go through the hub, which owns the send channel
		c.hub.commands <- parseCommand(c, message)
	}
}

// parseCommand decodes a watcher frame. Malformed frames become a command
// carrying the problem so the hub can answer with an error envelope.
func parseCommand(c *Client, raw []byte) command {
	var msg incomingMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.hub.logger.Debug().Err(err).Msg("ws unmarshal error")
		return command{client: c, problem: "invalid message format"}
	}
	if err := pkg.Validate(&msg); err != nil {
		c.hub.logger.Debug().Err(err).Str("action", msg.Action).Msg("ws invalid command")
		return command{client: c, flowchartID: msg.FlowchartID, problem: fmt.Sprintf("invalid %q command: %v", msg.Action, err)}
	}
	return command{client: c, action: msg.Action, flowchartID: msg.FlowchartID}
}

// notice builds the envelope acknowledging or rejecting a command.
func notice(kind string, flowchartID uint, detail string) []byte {
	payload, _ := json.Marshal(map[string]string{"message": detail})
	data, _ := json.Marshal(outgoingMsg{Type: kind, FlowchartID: flowchartID, Payload: payload})
	return data
}

// WritePump writes messages to the WebSocket connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
