package canvas

import (
	"blueprint/internal/api/models"
	"blueprint/internal/geometry"
	"blueprint/internal/pintype"
)

// SceneNode is a node as drawn, with its box in screen space.
type SceneNode struct {
	Node     models.Node   `json:"node"`
	Rect     geometry.Rect `json:"rect"`
	Color    string        `json:"color,omitempty"`
	Icon     string        `json:"icon,omitempty"`
	Selected bool          `json:"selected"`
}

type SceneComment struct {
	Comment  models.Comment `json:"comment"`
	Rect     geometry.Rect  `json:"rect"`
	Selected bool           `json:"selected"`
}

// SceneConnection is a routed connection. Execution connections are solid,
// data connections dashed.
type SceneConnection struct {
	Connection models.Connection `json:"connection"`
	Path       string            `json:"path"`
	Dashed     bool              `json:"dashed"`
	// Midpoint anchors the type label drawn on the curve
	Midpoint   geometry.Point    `json:"midpoint"`
}

// ScenePreview is the curve drawn while a connection is pending.
type ScenePreview struct {
	Source     models.PinRef `json:"source"`
	SourceType pintype.Type  `json:"sourceType"`
	Path       string        `json:"path"`
	Hover      *HoverVerdict `json:"hover,omitempty"`
}

// Scene is a render-ready snapshot of the editor.
type Scene struct {
	Mode        Mode              `json:"mode"`
	Viewport    geometry.Viewport `json:"viewport"`
	Size        geometry.Size     `json:"size"`
	Selection   Selection         `json:"selection"`
	Nodes       []SceneNode       `json:"nodes"`
	Comments    []SceneComment    `json:"comments"`
	Connections []SceneConnection `json:"connections"`
	Preview     *ScenePreview     `json:"preview,omitempty"`
	Tooltip     *Tooltip          `json:"tooltip,omitempty"`
}

// Scene renders the current graph. Nodes of unknown type are left out, and
// so is every connection touching them or referencing missing pins.
func (c *Controller) Scene() Scene {
	layout := c.settings.Layout
	scene := Scene{
		Mode:        c.state.Mode(),
		Viewport:    c.viewport,
		Size:        c.size,
		Selection:   c.selection,
		Nodes:       make([]SceneNode, 0, len(c.graph.Nodes)),
		Comments:    make([]SceneComment, 0, len(c.graph.Comments)),
		Connections: []SceneConnection{},
		Tooltip:     c.Tooltip(),
	}

	drawn := make(map[string]models.Node, len(c.graph.Nodes))
	for _, n := range c.graph.Nodes {
		if !c.rendered(n) {
			continue
		}
		drawn[n.ID] = n
		sn := SceneNode{
			Node:     n,
			Rect:     c.screenRect(layout.NodeRect(n)),
			Selected: c.selection.NodeID == n.ID,
		}
		if c.catalog != nil {
			t, _ := c.catalog.Get(n.Type)
			sn.Color, sn.Icon = t.Color, t.Icon
		}
		scene.Nodes = append(scene.Nodes, sn)
	}

	for _, cm := range c.graph.Comments {
		scene.Comments = append(scene.Comments, SceneComment{
			Comment:  cm,
			Rect:     c.screenRect(layout.CommentRect(cm)),
			Selected: c.selection.CommentID == cm.ID,
		})
	}

	for _, conn := range c.graph.ValidConnections() {
		from, okFrom := drawn[conn.FromNodeID]
		to, okTo := drawn[conn.ToNodeID]
		if !okFrom || !okTo {
			continue
		}
		start, ok1 := layout.PinAnchorByID(from, models.PinOutput, conn.FromPinID)
		end, ok2 := layout.PinAnchorByID(to, models.PinInput, conn.ToPinID)
		if !ok1 || !ok2 {
			continue
		}
		path := geometry.BezierPath(c.toScreen(start), c.toScreen(end), c.settings.CurveStrength)
		scene.Connections = append(scene.Connections, SceneConnection{
			Connection: conn,
			Path:       path.SVG(),
			Dashed:     !conn.IsExecution(),
			Midpoint:   path.At(0.5),
		})
	}

	if st, ok := c.state.(Connecting); ok {
		scene.Preview = c.preview(st, drawn)
	}
	return scene
}

func (c *Controller) preview(st Connecting, drawn map[string]models.Node) *ScenePreview {
	start := st.Anchor
	if n, ok := drawn[st.Source.NodeID]; ok {
		if anchor, ok := c.settings.Layout.PinAnchorByID(n, st.Source.Direction, st.Source.PinID); ok {
			start = c.toScreen(anchor)
		}
	}
	end := c.toScreen(st.Preview)
	if st.Source.Direction == models.PinInput {
		start, end = end, start
	}
	return &ScenePreview{
		Source:     st.Source,
		SourceType: st.SourceType,
		Path:       geometry.BezierPath(start, end, c.settings.CurveStrength).SVG(),
		Hover:      st.Hover,
	}
}

func (c *Controller) screenRect(r geometry.Rect) geometry.Rect {
	tl := c.toScreen(geometry.Point{X: r.X, Y: r.Y})
	z := c.viewport.Zoom
	return geometry.Rect{X: tl.X, Y: tl.Y, Width: r.Width * z, Height: r.Height * z}
}
