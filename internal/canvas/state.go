package canvas

import (
	"blueprint/internal/api/models"
	"blueprint/internal/geometry"
	"blueprint/internal/pintype"
)

type Mode string

const (
	ModeIdle         Mode = "idle"
	ModePanning      Mode = "panning"
	ModeConnecting   Mode = "connecting"
	ModeDraggingNode Mode = "dragging-node"
)

// State is the single interaction state owned by a Controller. Exactly one
// of the concrete types below is active at any time.
type State interface {
	Mode() Mode
}

type Idle struct{}

// Panning follows the pointer; Button is the button that started it.
type Panning struct {
	Button Button
	Last   geometry.Point
}

// Connecting holds a pending connection from Source until a second pin is
// clicked or the attempt is cancelled.
type Connecting struct {
	Source     models.PinRef
	SourceType pintype.Type
	// Anchor is the source pin in screen space at the time of the click.
	Anchor geometry.Point
	// Preview is the world point the in-progress curve is drawn to.
	Preview geometry.Point
	// Hover is the live verdict against the pin under the pointer, if any.
	Hover *HoverVerdict
}

// DraggingNode tracks a pressed node or comment. Moved stays false until
// the pointer leaves the drag threshold, so a plain click only selects.
type DraggingNode struct {
	NodeID    string
	CommentID string
	Origin    geometry.Point
	Start     models.Position
	Moved     bool
}

func (Idle) Mode() Mode         { return ModeIdle }
func (Panning) Mode() Mode      { return ModePanning }
func (Connecting) Mode() Mode   { return ModeConnecting }
func (DraggingNode) Mode() Mode { return ModeDraggingNode }

// HoverVerdict is the validation shown while a pending connection hovers a pin.
type HoverVerdict struct {
	Target models.PinRef  `json:"target"`
	Result pintype.Result `json:"result"`
	Color  TooltipColor   `json:"color"`
}

// Selection holds at most one node or comment.
type Selection struct {
	NodeID    string `json:"nodeId,omitempty"`
	CommentID string `json:"commentId,omitempty"`
}

func (s Selection) Empty() bool {
	return s.NodeID == "" && s.CommentID == ""
}
