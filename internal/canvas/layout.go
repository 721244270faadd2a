package canvas

import (
	"blueprint/internal/api/models"
	"blueprint/internal/geometry"
)

// Layout describes how nodes are drawn, in world units. Hit testing uses the
// same numbers so what is clicked is what is drawn.
type Layout struct {
	HeaderHeight  float64 `toml:"header_height"`
	PinSpacing    float64 `toml:"pin_spacing"`
	FooterPadding float64 `toml:"footer_padding"`
	// PinHitRadius is measured in screen pixels so pins stay clickable when
	// zoomed out.
	PinHitRadius  float64 `toml:"pin_hit_radius"`
	CommentWidth  float64 `toml:"comment_width"`
	CommentHeight float64 `toml:"comment_height"`
}

func DefaultLayout() Layout {
	return Layout{
		HeaderHeight:  32,
		PinSpacing:    24,
		FooterPadding: 8,
		PinHitRadius:  8,
		CommentWidth:  200,
		CommentHeight: 100,
	}
}

func (l Layout) normalized() Layout {
	d := DefaultLayout()
	if l.HeaderHeight <= 0 {
		l.HeaderHeight = d.HeaderHeight
	}
	if l.PinSpacing <= 0 {
		l.PinSpacing = d.PinSpacing
	}
	if l.PinHitRadius <= 0 {
		l.PinHitRadius = d.PinHitRadius
	}
	if l.CommentWidth <= 0 {
		l.CommentWidth = d.CommentWidth
	}
	if l.CommentHeight <= 0 {
		l.CommentHeight = d.CommentHeight
	}
	return l
}

// NodeRect is the world-space box of a node.
func (l Layout) NodeRect(n models.Node) geometry.Rect {
	rows := max(len(n.InputPins), len(n.OutputPins))
	return geometry.Rect{
		X:      n.Position.X,
		Y:      n.Position.Y,
		Width:  n.DisplayWidth(),
		Height: l.HeaderHeight + float64(rows)*l.PinSpacing + l.FooterPadding,
	}
}

// PinAnchor is the world point where connections attach. Inputs sit on the
// left edge, outputs on the right.
func (l Layout) PinAnchor(n models.Node, dir models.PinDirection, index int) geometry.Point {
	x := n.Position.X
	if dir == models.PinOutput {
		x += n.DisplayWidth()
	}
	return geometry.Point{
		X: x,
		Y: n.Position.Y + l.HeaderHeight + l.PinSpacing*float64(index) + l.PinSpacing/2,
	}
}

// PinAnchorByID finds the anchor of a pin by id.
func (l Layout) PinAnchorByID(n models.Node, dir models.PinDirection, pinID string) (geometry.Point, bool) {
	for i, p := range n.Pins(dir) {
		if p.ID == pinID {
			return l.PinAnchor(n, dir, i), true
		}
	}
	return geometry.Point{}, false
}

func (l Layout) CommentRect(c models.Comment) geometry.Rect {
	w, h := c.Width, c.Height
	if w <= 0 {
		w = l.CommentWidth
	}
	if h <= 0 {
		h = l.CommentHeight
	}
	return geometry.Rect{X: c.Position.X, Y: c.Position.Y, Width: w, Height: h}
}

type TargetKind string

const (
	TargetEmpty   TargetKind = "empty"
	TargetPin     TargetKind = "pin"
	TargetNode    TargetKind = "node"
	TargetComment TargetKind = "comment"
)

// Target is what lies under the pointer.
type Target struct {
	Kind      TargetKind          `json:"kind"`
	NodeID    string              `json:"nodeId,omitempty"`
	PinID     string              `json:"pinId,omitempty"`
	Direction models.PinDirection `json:"direction,omitempty"`
	CommentID string              `json:"commentId,omitempty"`
}

func (t Target) PinRef() models.PinRef {
	return models.PinRef{NodeID: t.NodeID, PinID: t.PinID, Direction: t.Direction}
}

// HitTest resolves a screen point. Pins win over node bodies, nodes drawn
// later (on top) win over earlier ones, and comments sit underneath nodes.
// Nodes the skip function rejects are not hittable.
func (l Layout) HitTest(g *models.Graph, vp geometry.Viewport, cs geometry.Size, screen geometry.Point, skip func(models.Node) bool) Target {
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		n := g.Nodes[i]
		if skip != nil && skip(n) {
			continue
		}
		for _, dir := range []models.PinDirection{models.PinInput, models.PinOutput} {
			for idx, p := range n.Pins(dir) {
				anchor := geometry.WorldToScreen(l.PinAnchor(n, dir, idx), vp, cs)
				if anchor.Near(screen, l.PinHitRadius) {
					return Target{Kind: TargetPin, NodeID: n.ID, PinID: p.ID, Direction: dir}
				}
			}
		}
	}

	world := geometry.ScreenToWorld(screen, vp, cs)
	for i := len(g.Nodes) - 1; i >= 0; i-- {
		n := g.Nodes[i]
		if skip != nil && skip(n) {
			continue
		}
		if l.NodeRect(n).Contains(world) {
			return Target{Kind: TargetNode, NodeID: n.ID}
		}
	}
	for i := len(g.Comments) - 1; i >= 0; i-- {
		c := g.Comments[i]
		if l.CommentRect(c).Contains(world) {
			return Target{Kind: TargetComment, CommentID: c.ID}
		}
	}
	return Target{Kind: TargetEmpty}
}
