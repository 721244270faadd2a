package websocket

import (
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/canvas"
	"blueprint/internal/catalog"
	"blueprint/internal/geometry"
)

// PointerPayload carries a pointer event in canvas screen coordinates.
type PointerPayload struct {
	Button string  `json:"button" validate:"omitempty,oneof=left middle right"`
	Shift  bool    `json:"shift"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

func (p PointerPayload) point() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

func (p PointerPayload) button() canvas.Button {
	switch p.Button {
	case "middle":
		return canvas.ButtonMiddle
	case "right":
		return canvas.ButtonRight
	default:
		return canvas.ButtonLeft
	}
}

type WheelPayload struct {
	DeltaY float64 `json:"deltaY"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

type KeyPayload struct {
	Key              string `json:"key" validate:"required"`
	TextInputFocused bool   `json:"textInputFocused"`
}

type ResizePayload struct {
	Width  float64 `json:"width" validate:"gt=0"`
	Height float64 `json:"height" validate:"gt=0"`
}

// AddNodePayload places a catalog node at a world position.
type AddNodePayload struct {
	NodeType string  `json:"nodeType" validate:"required"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
}

type GraphUpdate struct {
	Changes []canvas.Change `json:"changes"`
	// Remote is set when the changes were made through another server.
	Remote bool `json:"remote,omitempty"`
}

type Saved struct {
	Graph     *models.Graph  `json:"graph"`
	Diagnosis catalog.Report `json:"diagnosis"`
}

// UserInfo represents an editor present in the room
type UserInfo struct {
	ClientID string `json:"clientId"`
	Username string `json:"username"`
	Color    string `json:"color"`
}

// ErrorMessage represents an error message
type ErrorMessage struct {
	Error         string `json:"error,omitempty"`
	CustomMessage string `json:"customMessage"`
}

// NewErrorMessage creates a new error message
func NewErrorMessage(flowchartID uint, errorText string, err error) Message {
	data := ErrorMessage{CustomMessage: errorText}
	if err != nil {
		data.Error = err.Error()
	}
	return Message{
		Type:        MessageTypeError,
		FlowchartID: flowchartID,
		Timestamp:   time.Now(),
		Data:        data,
	}
}

func NewStateMessage(flowchartID uint, clientID string, scene canvas.Scene) Message {
	return Message{
		Type:        MessageTypeState,
		FlowchartID: flowchartID,
		ClientID:    clientID,
		Timestamp:   time.Now(),
		Data:        scene,
	}
}

// NewGraphUpdateMessage carries the graph changes one editor made
func NewGraphUpdateMessage(flowchartID uint, clientID, username string, update GraphUpdate) Message {
	return Message{
		Type:        MessageTypeGraphUpdate,
		FlowchartID: flowchartID,
		ClientID:    clientID,
		Username:    username,
		Timestamp:   time.Now(),
		Data:        update,
	}
}

func NewUserJoinMessage(flowchartID uint, userInfo UserInfo) Message {
	return Message{
		Type:        MessageTypeUserJoin,
		FlowchartID: flowchartID,
		ClientID:    userInfo.ClientID,
		Username:    userInfo.Username,
		Timestamp:   time.Now(),
		Data:        userInfo,
	}
}

func NewUserLeaveMessage(flowchartID uint, userInfo UserInfo) Message {
	return Message{
		Type:        MessageTypeUserLeave,
		FlowchartID: flowchartID,
		ClientID:    userInfo.ClientID,
		Username:    userInfo.Username,
		Timestamp:   time.Now(),
		Data:        userInfo,
	}
}
