package canvas

import (
	"fmt"
	"testing"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/catalog"
	"blueprint/internal/geometry"
	"blueprint/internal/pintype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var canvasSize = geometry.Size{Width: 800, Height: 600}

func testCatalog() *catalog.Registry {
	return catalog.NewRegistry([]catalog.NodeType{
		{
			ID:   "source",
			Name: "Source",
			OutputPins: []models.Pin{
				{ID: "then", Name: "Then", Type: pintype.Execution},
				{ID: "text", Name: "Text", Type: pintype.String},
				{ID: "image", Name: "Image", Type: pintype.Image},
			},
		},
		{
			ID:   "sink",
			Name: "Sink",
			InputPins: []models.Pin{
				{ID: "run", Name: "Run", Type: pintype.Execution},
				{ID: "text", Name: "Text", Type: pintype.String},
				{ID: "count", Name: "Count", Type: pintype.Number},
				{ID: "audio", Name: "Audio", Type: pintype.Audio},
			},
		},
	})
}

type fixture struct {
	t     *testing.T
	ctl   *Controller
	graph *models.Graph
	cat   *catalog.Registry
	now   time.Time
	ids   int
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	f := &fixture{t: t, cat: testCatalog(), now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	f.graph = models.NewGraph()
	for _, n := range []struct {
		id, typ string
		x, y    float64
	}{
		{"a", "source", 0, 0},
		{"b", "sink", 400, 0},
		{"c", "source", 0, 300},
	} {
		node, err := catalog.Instantiate(f.cat, n.typ, n.id, models.Position{X: n.x, Y: n.y})
		require.NoError(t, err)
		require.NoError(t, f.graph.AddNode(node))
	}

	base := []Option{
		WithClock(func() time.Time { return f.now }),
		WithIDGenerator(func() string {
			f.ids++
			return fmt.Sprintf("id-%d", f.ids)
		}),
	}
	f.ctl = NewController(f.graph, f.cat, canvasSize, append(base, opts...)...)
	return f
}

func (f *fixture) pin(nodeID string, dir models.PinDirection, pinID string) geometry.Point {
	n, ok := f.graph.FindNode(nodeID)
	require.True(f.t, ok)
	anchor, ok := f.ctl.Settings().Layout.PinAnchorByID(*n, dir, pinID)
	require.True(f.t, ok)
	return geometry.WorldToScreen(anchor, f.ctl.Viewport(), canvasSize)
}

func (f *fixture) body(nodeID string) geometry.Point {
	n, ok := f.graph.FindNode(nodeID)
	require.True(f.t, ok)
	return geometry.WorldToScreen(geometry.Point{X: n.Position.X + 90, Y: n.Position.Y + 10}, f.ctl.Viewport(), canvasSize)
}

func (f *fixture) click(p geometry.Point) []Change {
	changes := f.ctl.Handle(PointerDown{Button: ButtonLeft, Screen: p})
	return append(changes, f.ctl.Handle(PointerUp{Button: ButtonLeft, Screen: p})...)
}

func kinds(changes []Change) []ChangeKind {
	out := make([]ChangeKind, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Kind)
	}
	return out
}

func TestConnectOutputToInput(t *testing.T) {
	f := newFixture(t)

	assert.Empty(t, f.click(f.pin("a", models.PinOutput, "text")))
	st, ok := f.ctl.State().(Connecting)
	require.True(t, ok)
	assert.Equal(t, pintype.String, st.SourceType)
	assert.Equal(t, f.pin("a", models.PinOutput, "text"), st.Anchor)

	changes := f.click(f.pin("b", models.PinInput, "text"))
	require.Equal(t, []ChangeKind{ConnectionAdded}, kinds(changes))
	assert.Equal(t, ModeIdle, f.ctl.State().Mode())

	require.Len(t, f.graph.Connections, 1)
	conn := f.graph.Connections[0]
	assert.Equal(t, "id-1", conn.ID)
	assert.Equal(t, "a", conn.FromNodeID)
	assert.Equal(t, "text", conn.FromPinID)
	assert.Equal(t, "b", conn.ToNodeID)
	assert.Equal(t, "text", conn.ToPinID)
	assert.Equal(t, pintype.String, conn.Type)
	assert.Nil(t, f.ctl.Tooltip())
}

func TestConnectFromInputIsSymmetric(t *testing.T) {
	f := newFixture(t)

	f.click(f.pin("b", models.PinInput, "run"))
	changes := f.click(f.pin("a", models.PinOutput, "then"))

	require.Equal(t, []ChangeKind{ConnectionAdded}, kinds(changes))
	conn := f.graph.Connections[0]
	assert.Equal(t, "a", conn.FromNodeID)
	assert.Equal(t, "then", conn.FromPinID)
	assert.Equal(t, "b", conn.ToNodeID)
	assert.Equal(t, "run", conn.ToPinID)
	assert.True(t, conn.IsExecution())
}

func TestRejectedConnectionShowsTooltip(t *testing.T) {
	tests := []struct {
		name     string
		fromPin  string
		toPin    string
		color    TooltipColor
		adapter  string
		contains string
	}{
		{"media needs adapter", "image", "audio", ColorYellow, pintype.AdapterMediaConverter, "requires an adapter"},
		{"execution into data", "then", "text", ColorRed, "", pintype.ErrExecutionOnly},
		{"data into execution", "text", "run", ColorRed, "", pintype.ErrExecutionOnly},
		{"impossible pair", "image", "count", ColorRed, "", "Cannot connect"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			anchor := f.pin("a", models.PinOutput, tt.fromPin)

			f.click(anchor)
			changes := f.click(f.pin("b", models.PinInput, tt.toPin))

			assert.Empty(t, changes)
			assert.Empty(t, f.graph.Connections)
			assert.Equal(t, ModeIdle, f.ctl.State().Mode())

			tip := f.ctl.Tooltip()
			require.NotNil(t, tip)
			assert.Equal(t, tt.color, tip.Color)
			assert.Equal(t, tt.adapter, tip.Adapter)
			assert.Contains(t, tip.Text, tt.contains)
			assert.Equal(t, anchor, tip.Anchor)

			f.now = f.now.Add(2900 * time.Millisecond)
			assert.NotNil(t, f.ctl.Tooltip())
			f.now = f.now.Add(200 * time.Millisecond)
			assert.Nil(t, f.ctl.Tooltip())
		})
	}
}

func TestSameDirectionRejected(t *testing.T) {
	f := newFixture(t)

	f.click(f.pin("a", models.PinOutput, "text"))
	f.click(f.pin("c", models.PinOutput, "text"))

	assert.Empty(t, f.graph.Connections)
	tip := f.ctl.Tooltip()
	require.NotNil(t, tip)
	assert.Equal(t, ColorRed, tip.Color)
	assert.Equal(t, "Cannot connect two output pins", tip.Text)
}

func TestHoverVerdict(t *testing.T) {
	f := newFixture(t)
	f.click(f.pin("a", models.PinOutput, "image"))

	f.ctl.Handle(PointerMove{Screen: f.pin("b", models.PinInput, "audio")})
	st := f.ctl.State().(Connecting)
	require.NotNil(t, st.Hover)
	assert.Equal(t, ColorYellow, st.Hover.Color)
	assert.True(t, st.Hover.Result.RequiresAdapter)
	require.NotNil(t, f.ctl.Tooltip())
	assert.Equal(t, ColorYellow, f.ctl.Tooltip().Color)

	f.ctl.Handle(PointerMove{Screen: f.pin("b", models.PinInput, "count")})
	st = f.ctl.State().(Connecting)
	require.NotNil(t, st.Hover)
	assert.Equal(t, ColorRed, st.Hover.Color)
	assert.Equal(t, models.PinRef{NodeID: "b", PinID: "count", Direction: models.PinInput}, st.Hover.Target)

	empty := geometry.Point{X: 10, Y: 590}
	f.ctl.Handle(PointerMove{Screen: empty})
	st = f.ctl.State().(Connecting)
	assert.Nil(t, st.Hover)
	assert.Nil(t, f.ctl.Tooltip())
	assert.Equal(t, geometry.ScreenToWorld(empty, f.ctl.Viewport(), canvasSize), st.Preview)
	assert.Empty(t, f.graph.Connections)
}

func TestCancelConnecting(t *testing.T) {
	t.Run("escape", func(t *testing.T) {
		f := newFixture(t)
		f.click(f.pin("a", models.PinOutput, "text"))
		assert.Empty(t, f.ctl.Handle(KeyDown{Key: KeyEscape}))
		assert.Equal(t, ModeIdle, f.ctl.State().Mode())
		assert.Empty(t, f.graph.Connections)
	})

	t.Run("empty canvas click", func(t *testing.T) {
		f := newFixture(t)
		f.click(f.pin("a", models.PinOutput, "text"))
		assert.Empty(t, f.click(geometry.Point{X: 10, Y: 590}))
		assert.Equal(t, ModeIdle, f.ctl.State().Mode())
		assert.Empty(t, f.graph.Connections)
	})

	t.Run("same pin", func(t *testing.T) {
		f := newFixture(t)
		p := f.pin("a", models.PinOutput, "text")
		f.click(p)
		f.click(p)
		assert.Equal(t, ModeIdle, f.ctl.State().Mode())
		assert.Nil(t, f.ctl.Tooltip())
	})

	t.Run("escape ignored while typing", func(t *testing.T) {
		f := newFixture(t)
		f.click(f.pin("a", models.PinOutput, "text"))
		f.ctl.Handle(KeyDown{Key: KeyEscape, TextInputFocused: true})
		assert.Equal(t, ModeConnecting, f.ctl.State().Mode())
	})
}

func TestDataInputReplacesExistingConnection(t *testing.T) {
	f := newFixture(t)

	f.click(f.pin("a", models.PinOutput, "text"))
	f.click(f.pin("b", models.PinInput, "text"))
	f.click(f.pin("c", models.PinOutput, "text"))
	changes := f.click(f.pin("b", models.PinInput, "text"))

	require.Equal(t, []ChangeKind{ConnectionRemoved, ConnectionAdded}, kinds(changes))
	assert.Equal(t, "a", changes[0].Connection.FromNodeID)
	require.Len(t, f.graph.Connections, 1)
	assert.Equal(t, "c", f.graph.Connections[0].FromNodeID)
}

func TestExecutionInputAcceptsManyTriggers(t *testing.T) {
	f := newFixture(t)

	f.click(f.pin("a", models.PinOutput, "then"))
	f.click(f.pin("b", models.PinInput, "run"))
	f.click(f.pin("c", models.PinOutput, "then"))
	changes := f.click(f.pin("b", models.PinInput, "run"))

	assert.Equal(t, []ChangeKind{ConnectionAdded}, kinds(changes))
	assert.Len(t, f.graph.Connections, 2)
}

func TestDragNode(t *testing.T) {
	f := newFixture(t, WithViewport(geometry.Viewport{Zoom: 2}))
	start := f.body("a")

	changes := f.ctl.Handle(PointerDown{Button: ButtonLeft, Screen: start})
	assert.Equal(t, []ChangeKind{SelectionChanged}, kinds(changes))
	assert.Equal(t, Selection{NodeID: "a"}, f.ctl.Selection())
	assert.Equal(t, ModeDraggingNode, f.ctl.State().Mode())

	assert.Empty(t, f.ctl.Handle(PointerMove{Screen: start.Add(geometry.Point{X: 3, Y: 3})}))
	n, _ := f.graph.FindNode("a")
	assert.Equal(t, 0.0, n.Position.X)

	changes = f.ctl.Handle(PointerMove{Screen: start.Add(geometry.Point{X: 40, Y: 20})})
	require.Equal(t, []ChangeKind{NodeMoved}, kinds(changes))
	assert.Equal(t, models.Position{X: 20, Y: 10}, *changes[0].Position)

	assert.Empty(t, f.ctl.Handle(PointerUp{Button: ButtonLeft, Screen: start}))
	assert.Equal(t, ModeIdle, f.ctl.State().Mode())
	n, _ = f.graph.FindNode("a")
	assert.Equal(t, models.Position{X: 20, Y: 10}, n.Position)
}

func TestDragSnapsOnRelease(t *testing.T) {
	s := DefaultSettings()
	s.SnapToGrid = true
	f := newFixture(t, WithSettings(s))
	start := f.body("a")

	f.ctl.Handle(PointerDown{Button: ButtonLeft, Screen: start})
	f.ctl.Handle(PointerMove{Screen: start.Add(geometry.Point{X: 27, Y: 9})})
	n, _ := f.graph.FindNode("a")
	assert.Equal(t, 27.0, n.Position.X)

	changes := f.ctl.Handle(PointerUp{Button: ButtonLeft})
	require.Equal(t, []ChangeKind{NodeMoved}, kinds(changes))
	n, _ = f.graph.FindNode("a")
	assert.Equal(t, 20.0, n.Position.X)
	assert.Equal(t, 0.0, n.Position.Y)
}

func TestClickWithoutDragOnlySelects(t *testing.T) {
	f := newFixture(t)
	changes := f.click(f.body("b"))
	assert.Equal(t, []ChangeKind{SelectionChanged}, kinds(changes))
	n, _ := f.graph.FindNode("b")
	assert.Equal(t, 400.0, n.Position.X)
}

func TestEscapeRestoresDraggedNode(t *testing.T) {
	f := newFixture(t)
	start := f.body("a")

	f.ctl.Handle(PointerDown{Button: ButtonLeft, Screen: start})
	f.ctl.Handle(PointerMove{Screen: start.Add(geometry.Point{X: 50, Y: 50})})

	changes := f.ctl.Handle(KeyDown{Key: KeyEscape})
	require.Equal(t, []ChangeKind{NodeMoved}, kinds(changes))
	n, _ := f.graph.FindNode("a")
	assert.Equal(t, models.Position{}, n.Position)
	assert.Equal(t, ModeIdle, f.ctl.State().Mode())
}

func TestPanning(t *testing.T) {
	t.Run("middle button", func(t *testing.T) {
		f := newFixture(t)
		f.ctl.Handle(PointerDown{Button: ButtonMiddle, Screen: geometry.Point{X: 100, Y: 100}})
		assert.Equal(t, ModePanning, f.ctl.State().Mode())

		changes := f.ctl.Handle(PointerMove{Screen: geometry.Point{X: 150, Y: 120}})
		require.Equal(t, []ChangeKind{ViewportChanged}, kinds(changes))
		assert.Equal(t, geometry.Viewport{Zoom: 1, PanX: -50, PanY: -20}, f.ctl.Viewport())

		f.ctl.Handle(PointerUp{Button: ButtonLeft})
		assert.Equal(t, ModePanning, f.ctl.State().Mode())
		f.ctl.Handle(PointerUp{Button: ButtonMiddle})
		assert.Equal(t, ModeIdle, f.ctl.State().Mode())
	})

	t.Run("shift drag on empty canvas", func(t *testing.T) {
		f := newFixture(t, WithViewport(geometry.Viewport{Zoom: 2}))
		f.ctl.Handle(PointerDown{Button: ButtonLeft, Shift: true, Screen: geometry.Point{X: 10, Y: 590}})
		assert.Equal(t, ModePanning, f.ctl.State().Mode())
		f.ctl.Handle(PointerMove{Screen: geometry.Point{X: 30, Y: 590}})
		assert.Equal(t, -10.0, f.ctl.Viewport().PanX)
	})

	t.Run("shift click on node selects", func(t *testing.T) {
		f := newFixture(t)
		f.ctl.Handle(PointerDown{Button: ButtonLeft, Shift: true, Screen: f.body("a")})
		assert.Equal(t, ModeDraggingNode, f.ctl.State().Mode())
	})
}

func TestWheelZoom(t *testing.T) {
	f := newFixture(t)

	changes := f.ctl.Handle(Wheel{DeltaY: 100})
	require.Equal(t, []ChangeKind{ViewportChanged}, kinds(changes))
	assert.InDelta(t, 0.9, f.ctl.Viewport().Zoom, 1e-9)

	f.ctl.Handle(Wheel{DeltaY: -100})
	assert.InDelta(t, 0.99, f.ctl.Viewport().Zoom, 1e-9)

	for range 100 {
		f.ctl.Handle(Wheel{DeltaY: -1})
	}
	assert.Equal(t, geometry.MaxZoom, f.ctl.Viewport().Zoom)
	assert.Empty(t, f.ctl.Handle(Wheel{DeltaY: -1}))

	for range 100 {
		f.ctl.Handle(Wheel{DeltaY: 1})
	}
	assert.Equal(t, geometry.MinZoom, f.ctl.Viewport().Zoom)
	assert.Equal(t, 0.0, f.ctl.Viewport().PanX)
}

func TestDeleteSelectedNode(t *testing.T) {
	f := newFixture(t)
	f.click(f.pin("a", models.PinOutput, "text"))
	f.click(f.pin("b", models.PinInput, "text"))
	f.click(f.pin("c", models.PinOutput, "then"))
	f.click(f.pin("b", models.PinInput, "run"))
	require.Len(t, f.graph.Connections, 2)

	f.click(f.body("b"))
	assert.Empty(t, f.ctl.Handle(KeyDown{Key: KeyDelete, TextInputFocused: true}))

	changes := f.ctl.Handle(KeyDown{Key: KeyBackspace})
	assert.Equal(t, []ChangeKind{ConnectionRemoved, ConnectionRemoved, NodeDeleted, SelectionChanged}, kinds(changes))
	assert.Empty(t, f.graph.Connections)
	_, ok := f.graph.FindNode("b")
	assert.False(t, ok)
	assert.True(t, f.ctl.Selection().Empty())

	assert.Empty(t, f.ctl.Handle(KeyDown{Key: KeyDelete}))
}

func TestDeleteSelectedComment(t *testing.T) {
	f := newFixture(t)
	f.graph.Comments = append(f.graph.Comments, models.Comment{ID: "note", Text: "todo", Position: models.Position{X: -300, Y: -250}})

	changes := f.click(geometry.Point{X: 110, Y: 60})
	require.Equal(t, []ChangeKind{SelectionChanged}, kinds(changes))
	assert.Equal(t, Selection{CommentID: "note"}, f.ctl.Selection())

	changes = f.ctl.Handle(KeyDown{Key: KeyDelete})
	assert.Equal(t, []ChangeKind{CommentDeleted, SelectionChanged}, kinds(changes))
	assert.Empty(t, f.graph.Comments)
}

func TestEmptyClickClearsSelection(t *testing.T) {
	f := newFixture(t)
	f.click(f.body("a"))
	require.False(t, f.ctl.Selection().Empty())

	changes := f.click(geometry.Point{X: 10, Y: 590})
	assert.Equal(t, []ChangeKind{SelectionChanged}, kinds(changes))
	assert.True(t, f.ctl.Selection().Empty())
}

func TestUnknownNodesAreNotHittable(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.graph.AddNode(models.Node{ID: "ghost", Type: "retired", Position: models.Position{X: -300, Y: -250}}))

	assert.Empty(t, f.click(geometry.Point{X: 150, Y: 60}))
	assert.True(t, f.ctl.Selection().Empty())
}

func TestAddNode(t *testing.T) {
	f := newFixture(t)

	node, changes, err := f.ctl.AddNode("sink", geometry.Point{X: 33, Y: 47})
	require.NoError(t, err)
	assert.Equal(t, []ChangeKind{NodeAdded, SelectionChanged}, kinds(changes))
	assert.Equal(t, "sink", node.Type)
	assert.Len(t, node.InputPins, 4)
	assert.Equal(t, Selection{NodeID: node.ID}, f.ctl.Selection())
	assert.Len(t, f.graph.Nodes, 4)

	_, _, err = f.ctl.AddNode("nope", geometry.Point{})
	assert.ErrorIs(t, err, catalog.ErrUnknownNodeType)
	assert.Len(t, f.graph.Nodes, 4)
}

func TestAddNodeSnaps(t *testing.T) {
	s := DefaultSettings()
	s.SnapToGrid = true
	f := newFixture(t, WithSettings(s))

	node, _, err := f.ctl.AddNode("sink", geometry.Point{X: 33, Y: 47})
	require.NoError(t, err)
	assert.Equal(t, models.Position{X: 40, Y: 40}, node.Position)
}

func TestApplySuggestion(t *testing.T) {
	f := newFixture(t, WithViewport(geometry.Viewport{Zoom: 2, PanX: 100, PanY: -50}))

	node, changes, err := f.ctl.ApplySuggestion(Suggestion{Type: SuggestionAddNode, Data: &SuggestionData{NodeType: "source"}})
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, models.Position{X: 100, Y: -50}, node.Position)
	assert.Equal(t, NodeAdded, changes[0].Kind)

	node, changes, err = f.ctl.ApplySuggestion(Suggestion{Type: "explain"})
	assert.NoError(t, err)
	assert.Nil(t, node)
	assert.Empty(t, changes)

	_, _, err = f.ctl.ApplySuggestion(Suggestion{Type: SuggestionAddNode})
	assert.Error(t, err)

	_, _, err = f.ctl.ApplySuggestion(Suggestion{Type: SuggestionAddNode, Data: &SuggestionData{NodeType: "missing"}})
	assert.ErrorIs(t, err, catalog.ErrUnknownNodeType)
	assert.Len(t, f.graph.Nodes, 4)
}

func TestViewportFromGraph(t *testing.T) {
	g := models.NewGraph()
	g.Viewport = &geometry.Viewport{Zoom: 10, PanX: 5}
	c := NewController(g, testCatalog(), canvasSize)
	assert.Equal(t, geometry.Viewport{Zoom: geometry.MaxZoom, PanX: 5}, c.Viewport())
}
