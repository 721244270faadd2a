package websocket

import (
	"time"
)

// Message is the envelope of every websocket frame in both directions.
// Data uses 'any' so typed payloads travel through channels unchanged.
type Message struct {
	Type        MessageType `json:"type"`
	FlowchartID uint        `json:"flowchartId,omitempty"`
	ClientID    string      `json:"clientId,omitempty"`
	Username    string      `json:"username,omitempty"`
	Timestamp   time.Time   `json:"timestamp"`
	Data        any         `json:"data,omitempty"`
}

// MessageType represents the type of WebSocket message
type MessageType string

const (
	// Editor input, processed in order by the room
	MessageTypePointerDown MessageType = "pointer_down"
	MessageTypePointerMove MessageType = "pointer_move"
	MessageTypePointerUp   MessageType = "pointer_up"
	MessageTypeWheel       MessageType = "wheel"
	MessageTypeKeyDown     MessageType = "key_down"
	MessageTypeResize      MessageType = "resize"
	MessageTypeSuggestion  MessageType = "suggestion"
	MessageTypeAddNode     MessageType = "add_node"
	MessageTypeSave        MessageType = "save"
	MessageTypeGetState    MessageType = "get_state"

	// Editor output
	MessageTypeState       MessageType = "state"
	MessageTypeGraphUpdate MessageType = "graph_update"
	MessageTypeGraphReload MessageType = "graph_reload"
	MessageTypeSaved       MessageType = "saved"

	// Presence
	MessageTypeCursorMove MessageType = "cursor_move"
	MessageTypeUserJoin   MessageType = "user_join"
	MessageTypeUserLeave  MessageType = "user_leave"

	// System messages
	MessageTypeError MessageType = "error"
	MessageTypePing  MessageType = "ping"
	MessageTypePong  MessageType = "pong"
)
