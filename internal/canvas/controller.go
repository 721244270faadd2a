// Package canvas implements the flowchart editor interaction model: the
// viewport, hit testing and the pointer/keyboard state machine that turns
// user input into graph edits. A Controller is not safe for concurrent use;
// callers feed it events one at a time.
package canvas

import (
	"fmt"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/catalog"
	"blueprint/internal/geometry"
	"blueprint/internal/pintype"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Controller struct {
	graph     *models.Graph
	catalog   catalog.Catalog
	settings  Settings
	viewport  geometry.Viewport
	size      geometry.Size
	state     State
	selection Selection
	tooltip   *Tooltip
	// hoverTip marks the tooltip as the live hover verdict, cleared as soon
	// as the pointer leaves the pin.
	hoverTip bool

	now    func() time.Time
	newID  func() string
	logger zerolog.Logger
}

type Option func(*Controller)

func WithSettings(s Settings) Option {
	return func(c *Controller) { c.settings = s.normalized() }
}

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithViewport(vp geometry.Viewport) Option {
	return func(c *Controller) { c.viewport = vp }
}

// NewController edits g in place. The viewport stored in the graph, if any,
// is the starting camera.
func NewController(g *models.Graph, cat catalog.Catalog, size geometry.Size, opts ...Option) *Controller {
	c := &Controller{
		graph:    g,
		catalog:  cat,
		settings: DefaultSettings(),
		viewport: geometry.DefaultViewport(),
		size:     size,
		state:    Idle{},
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   zerolog.Nop(),
	}
	if g.Viewport != nil {
		c.viewport = *g.Viewport
	}
	for _, opt := range opts {
		opt(c)
	}
	c.viewport.Zoom = geometry.ClampZoom(c.viewport.Zoom)
	return c
}

func (c *Controller) Graph() *models.Graph        { return c.graph }
func (c *Controller) State() State                { return c.state }
func (c *Controller) Viewport() geometry.Viewport { return c.viewport }
func (c *Controller) Size() geometry.Size         { return c.size }
func (c *Controller) Selection() Selection        { return c.selection }
func (c *Controller) Settings() Settings          { return c.settings }

// Tooltip returns the current tooltip, or nil once it has expired.
func (c *Controller) Tooltip() *Tooltip {
	if !c.tooltip.Visible(c.now()) {
		return nil
	}
	t := *c.tooltip
	return &t
}

// Handle runs one event to completion and reports what changed.
func (c *Controller) Handle(ev Event) []Change {
	switch e := ev.(type) {
	case PointerDown:
		return c.pointerDown(e)
	case PointerMove:
		return c.pointerMove(e)
	case PointerUp:
		return c.pointerUp(e)
	case Wheel:
		return c.wheel(e)
	case KeyDown:
		return c.keyDown(e)
	case Resize:
		c.size = e.Size
		return nil
	default:
		c.logger.Warn().Str("event", fmt.Sprintf("%T", ev)).Msg("Unhandled canvas event")
		return nil
	}
}

func (c *Controller) rendered(n models.Node) bool {
	if c.catalog == nil {
		return true
	}
	_, ok := c.catalog.Get(n.Type)
	return ok
}

func (c *Controller) hitTest(screen geometry.Point) Target {
	return c.settings.Layout.HitTest(c.graph, c.viewport, c.size, screen, func(n models.Node) bool {
		return !c.rendered(n)
	})
}

func (c *Controller) toScreen(p geometry.Point) geometry.Point {
	return geometry.WorldToScreen(p, c.viewport, c.size)
}

func (c *Controller) toWorld(p geometry.Point) geometry.Point {
	return geometry.ScreenToWorld(p, c.viewport, c.size)
}

func (c *Controller) pointerDown(e PointerDown) []Change {
	switch st := c.state.(type) {
	case Connecting:
		return c.clickWhileConnecting(st, e)
	case Idle:
	default:
		// A second button while panning or dragging is ignored.
		return nil
	}

	if e.Button == ButtonMiddle {
		c.state = Panning{Button: ButtonMiddle, Last: e.Screen}
		return nil
	}
	if e.Button != ButtonLeft {
		return nil
	}

	target := c.hitTest(e.Screen)
	if e.Shift && target.Kind == TargetEmpty {
		c.state = Panning{Button: ButtonLeft, Last: e.Screen}
		return nil
	}

	switch target.Kind {
	case TargetPin:
		c.startConnecting(target)
		return nil
	case TargetNode:
		changes := c.selectNode(target.NodeID)
		n, _ := c.graph.FindNode(target.NodeID)
		c.state = DraggingNode{NodeID: n.ID, Origin: e.Screen, Start: n.Position}
		return changes
	case TargetComment:
		changes := c.selectComment(target.CommentID)
		cm, _ := c.graph.FindComment(target.CommentID)
		c.state = DraggingNode{CommentID: cm.ID, Origin: e.Screen, Start: cm.Position}
		return changes
	default:
		return c.setSelection(Selection{})
	}
}

func (c *Controller) startConnecting(target Target) {
	n, _ := c.graph.FindNode(target.NodeID)
	pin, err := c.graph.FindPin(target.NodeID, target.PinID, target.Direction)
	if err != nil {
		return
	}
	anchor, _ := c.settings.Layout.PinAnchorByID(*n, target.Direction, target.PinID)
	c.clearTooltip()
	c.state = Connecting{
		Source:     target.PinRef(),
		SourceType: pin.Type,
		Anchor:     c.toScreen(anchor),
		Preview:    anchor,
	}
}

// evaluate orients a candidate pair output -> input and asks the type engine.
func (c *Controller) evaluate(st Connecting, target Target) (pintype.Result, models.Connection) {
	if target.Direction == st.Source.Direction {
		return pintype.Result{ErrorMessage: fmt.Sprintf("Cannot connect two %s pins", target.Direction)}, models.Connection{}
	}
	if target.NodeID == st.Source.NodeID {
		return pintype.Result{ErrorMessage: models.ErrSelfConnection.Error()}, models.Connection{}
	}
	pin, err := c.graph.FindPin(target.NodeID, target.PinID, target.Direction)
	if err != nil {
		return pintype.Result{ErrorMessage: err.Error()}, models.Connection{}
	}

	from, to := st.Source, target.PinRef()
	fromType, toType := st.SourceType, pin.Type
	if st.Source.Direction == models.PinInput {
		from, to = to, from
		fromType, toType = toType, fromType
	}

	res := pintype.ValidateConnection(fromType, toType, pintype.KindFor(fromType, toType))
	return res, models.Connection{
		FromNodeID: from.NodeID,
		FromPinID:  from.PinID,
		ToNodeID:   to.NodeID,
		ToPinID:    to.PinID,
		Type:       fromType,
	}
}

func (c *Controller) clickWhileConnecting(st Connecting, e PointerDown) []Change {
	if e.Button != ButtonLeft {
		return nil
	}
	target := c.hitTest(e.Screen)
	if target.Kind != TargetPin || target.PinRef() == st.Source {
		c.cancelConnecting()
		return nil
	}

	c.state = Idle{}
	res, conn := c.evaluate(st, target)
	if !res.Valid {
		c.logger.Debug().
			Str("from", st.Source.NodeID+"."+st.Source.PinID).
			Str("to", target.NodeID+"."+target.PinID).
			Str("reason", res.ErrorMessage).
			Msg("Connection rejected")
		c.showTooltip(res, st.Anchor)
		return nil
	}

	conn.ID = c.newID()
	replaced, err := c.graph.AddConnection(conn)
	if err != nil {
		c.showTooltip(pintype.Result{ErrorMessage: err.Error()}, st.Anchor)
		return nil
	}
	c.clearTooltip()

	changes := make([]Change, 0, len(replaced)+1)
	for i := range replaced {
		changes = append(changes, Change{Kind: ConnectionRemoved, Connection: &replaced[i]})
	}
	stored := c.graph.Connections[len(c.graph.Connections)-1]
	changes = append(changes, Change{Kind: ConnectionAdded, Connection: &stored})

	c.logger.Debug().Str("connectionId", stored.ID).Str("type", string(stored.Type)).Msg("Connection created")
	return changes
}

func (c *Controller) cancelConnecting() {
	c.state = Idle{}
	c.clearTooltip()
}

func (c *Controller) pointerMove(e PointerMove) []Change {
	switch st := c.state.(type) {
	case Panning:
		c.viewport = c.viewport.PanBy(e.Screen.Sub(st.Last))
		st.Last = e.Screen
		c.state = st
		return []Change{c.viewportChange()}

	case DraggingNode:
		delta := e.Screen.Sub(st.Origin)
		if !st.Moved && delta.Distance(geometry.Point{}) <= c.settings.DragThreshold {
			return nil
		}
		st.Moved = true
		c.state = st
		d := geometry.ScreenDeltaToWorld(delta, c.viewport)
		pos := st.Start
		pos.X += d.X
		pos.Y += d.Y
		return c.moveDragged(st, pos)

	case Connecting:
		st.Preview = c.toWorld(e.Screen)
		target := c.hitTest(e.Screen)
		if target.Kind == TargetPin && target.PinRef() != st.Source {
			res, _ := c.evaluate(st, target)
			st.Hover = &HoverVerdict{Target: target.PinRef(), Result: res, Color: ColorFor(res)}
			c.showTooltip(res, e.Screen)
			c.hoverTip = true
		} else {
			st.Hover = nil
			if c.hoverTip {
				c.clearTooltip()
			}
		}
		c.state = st
		return nil
	}
	return nil
}

func (c *Controller) moveDragged(st DraggingNode, pos models.Position) []Change {
	if st.CommentID != "" {
		cm, ok := c.graph.FindComment(st.CommentID)
		if !ok {
			c.state = Idle{}
			return nil
		}
		cm.Position = pos
		return []Change{{Kind: CommentMoved, CommentID: cm.ID, Position: &pos}}
	}
	if err := c.graph.MoveNode(st.NodeID, pos); err != nil {
		c.state = Idle{}
		return nil
	}
	return []Change{{Kind: NodeMoved, NodeID: st.NodeID, Position: &pos}}
}

func (c *Controller) pointerUp(e PointerUp) []Change {
	switch st := c.state.(type) {
	case Panning:
		if e.Button == st.Button {
			c.state = Idle{}
		}
	case DraggingNode:
		c.state = Idle{}
		if st.Moved && c.settings.SnapToGrid {
			return c.snapDragged(st)
		}
	}
	return nil
}

func (c *Controller) snapDragged(st DraggingNode) []Change {
	var pos models.Position
	if st.CommentID != "" {
		cm, ok := c.graph.FindComment(st.CommentID)
		if !ok {
			return nil
		}
		pos = cm.Position
	} else {
		n, ok := c.graph.FindNode(st.NodeID)
		if !ok {
			return nil
		}
		pos = n.Position
	}
	snapped := geometry.SnapPoint(pos.Point(), c.settings.GridSize)
	pos.X, pos.Y = snapped.X, snapped.Y
	return c.moveDragged(st, pos)
}

func (c *Controller) wheel(e Wheel) []Change {
	factor := c.settings.ZoomInFactor
	if e.DeltaY > 0 {
		factor = c.settings.ZoomOutFactor
	} else if e.DeltaY == 0 {
		return nil
	}
	before := c.viewport.Zoom
	c.viewport = c.viewport.ZoomBy(factor)
	if c.viewport.Zoom == before {
		return nil
	}
	return []Change{c.viewportChange()}
}

func (c *Controller) keyDown(e KeyDown) []Change {
	if e.TextInputFocused {
		return nil
	}
	switch e.Key {
	case KeyEscape:
		return c.Cancel()
	case KeyDelete, KeyBackspace:
		switch c.state.(type) {
		case Idle, Connecting:
		default:
			return nil
		}
		return c.DeleteSelection()
	}
	return nil
}

// Cancel abandons whatever interaction is in progress. A node dragged so far
// returns to where it started, so a cancelled gesture leaves no trace.
func (c *Controller) Cancel() []Change {
	var changes []Change
	switch st := c.state.(type) {
	case Connecting:
		c.clearTooltip()
	case DraggingNode:
		if st.Moved {
			changes = c.moveDragged(st, st.Start)
		}
	}
	c.state = Idle{}
	return changes
}

// DeleteSelection removes the selected node, with its connections, or the
// selected comment.
func (c *Controller) DeleteSelection() []Change {
	switch {
	case c.selection.NodeID != "":
		return c.DeleteNode(c.selection.NodeID)
	case c.selection.CommentID != "":
		id := c.selection.CommentID
		if err := c.graph.DeleteComment(id); err != nil {
			return c.setSelection(Selection{})
		}
		return append([]Change{{Kind: CommentDeleted, CommentID: id}}, c.setSelection(Selection{})...)
	}
	return nil
}

// DeleteNode removes a node and every connection touching it.
func (c *Controller) DeleteNode(id string) []Change {
	removed, err := c.graph.DeleteNode(id)
	if err != nil {
		c.logger.Debug().Err(err).Str("nodeId", id).Msg("Delete ignored")
		return nil
	}
	if st, ok := c.state.(Connecting); ok && st.Source.NodeID == id {
		c.cancelConnecting()
	}

	changes := make([]Change, 0, len(removed)+2)
	for i := range removed {
		changes = append(changes, Change{Kind: ConnectionRemoved, Connection: &removed[i]})
	}
	changes = append(changes, Change{Kind: NodeDeleted, NodeID: id})
	if c.selection.NodeID == id {
		changes = append(changes, c.setSelection(Selection{})...)
	}
	return changes
}

// AddNode instantiates a catalog node at a world position and selects it.
func (c *Controller) AddNode(typeID string, at geometry.Point) (models.Node, []Change, error) {
	if c.catalog == nil {
		return models.Node{}, nil, fmt.Errorf("%w: %s", catalog.ErrUnknownNodeType, typeID)
	}
	if c.settings.SnapToGrid {
		at = geometry.SnapPoint(at, c.settings.GridSize)
	}
	node, err := catalog.Instantiate(c.catalog, typeID, c.newID(), models.PositionAt(at))
	if err != nil {
		return models.Node{}, nil, err
	}
	if err := c.graph.AddNode(node); err != nil {
		return models.Node{}, nil, err
	}
	changes := []Change{{Kind: NodeAdded, Node: &node, NodeID: node.ID}}
	return node, append(changes, c.selectNode(node.ID)...), nil
}

// Reset drops the interaction state and the selection, for when the graph
// under the controller was replaced wholesale.
func (c *Controller) Reset() {
	c.state = Idle{}
	c.selection = Selection{}
	c.clearTooltip()
}

// SetViewport replaces the camera, clamping the zoom.
func (c *Controller) SetViewport(vp geometry.Viewport) []Change {
	vp.Zoom = geometry.ClampZoom(vp.Zoom)
	c.viewport = vp
	return []Change{c.viewportChange()}
}

func (c *Controller) selectNode(id string) []Change {
	return c.setSelection(Selection{NodeID: id})
}

func (c *Controller) selectComment(id string) []Change {
	return c.setSelection(Selection{CommentID: id})
}

func (c *Controller) setSelection(s Selection) []Change {
	if c.selection == s {
		return nil
	}
	c.selection = s
	return []Change{{Kind: SelectionChanged, Selection: &s}}
}

func (c *Controller) viewportChange() Change {
	vp := c.viewport
	return Change{Kind: ViewportChanged, Viewport: &vp}
}

func (c *Controller) showTooltip(res pintype.Result, anchor geometry.Point) {
	c.hoverTip = false
	c.tooltip = &Tooltip{
		Text:      verdictText(res),
		Color:     ColorFor(res),
		Anchor:    anchor,
		Adapter:   res.SuggestedAdapter,
		ExpiresAt: c.now().Add(c.settings.TooltipDuration),
	}
}

func (c *Controller) clearTooltip() {
	c.tooltip = nil
	c.hoverTip = false
}
