package models

import (
	"encoding/json"
	"errors"
	"testing"

	"blueprint/internal/pintype"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNode(id string) Node {
	return Node{
		ID:   id,
		Type: "text-transform",
		InputPins: []Pin{
			{ID: "exec_in", Name: "Exec", Type: pintype.Execution},
			{ID: "text", Name: "Text", Type: pintype.String, Required: true},
			{ID: "count", Name: "Count", Type: pintype.Number},
		},
		OutputPins: []Pin{
			{ID: "exec_out", Name: "Then", Type: pintype.Execution},
			{ID: "result", Name: "Result", Type: pintype.String},
			{ID: "length", Name: "Length", Type: pintype.Number},
			{ID: "frame", Name: "Frame", Type: pintype.Image},
		},
	}
}

func sampleGraph(t *testing.T, ids ...string) *Graph {
	g := NewGraph()
	for _, id := range ids {
		require.NoError(t, g.AddNode(sampleNode(id)))
	}
	return g
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	g := sampleGraph(t, "a")
	err := g.AddNode(sampleNode("a"))
	assert.True(t, errors.Is(err, ErrDuplicateNode))
}

func TestGraph_DeleteNode_Cascades(t *testing.T) {
	g := sampleGraph(t, "a", "b", "c")
	_, err := g.AddConnection(Connection{ID: "c1", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "b", ToPinID: "exec_in"})
	require.NoError(t, err)
	_, err = g.AddConnection(Connection{ID: "c2", FromNodeID: "b", FromPinID: "result", ToNodeID: "c", ToPinID: "text"})
	require.NoError(t, err)

	removed, err := g.DeleteNode("a")
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "c1", removed[0].ID)

	for _, c := range g.Connections {
		assert.False(t, c.Touches("a"))
	}
	assert.Len(t, g.Connections, 1)
	_, ok := g.FindNode("a")
	assert.False(t, ok)

	_, err = g.DeleteNode("a")
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestGraph_AddConnection_SetsTypeFromSource(t *testing.T) {
	g := sampleGraph(t, "a", "b")
	_, err := g.AddConnection(Connection{ID: "c1", FromNodeID: "a", FromPinID: "length", ToNodeID: "b", ToPinID: "text"})
	require.NoError(t, err)
	assert.Equal(t, pintype.Number, g.Connections[0].Type)
	assert.False(t, g.Connections[0].IsExecution())
}

func TestGraph_AddConnection_Rejections(t *testing.T) {
	g := sampleGraph(t, "a", "b")

	_, err := g.AddConnection(Connection{ID: "x", FromNodeID: "a", FromPinID: "frame", ToNodeID: "b", ToPinID: "text"})
	var incompatible *IncompatibleError
	require.ErrorAs(t, err, &incompatible)
	assert.True(t, incompatible.Result.RequiresAdapter)
	assert.Equal(t, pintype.AdapterTypeConverter, incompatible.Result.SuggestedAdapter)

	_, err = g.AddConnection(Connection{ID: "x", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "b", ToPinID: "text"})
	require.ErrorAs(t, err, &incompatible)
	assert.Equal(t, pintype.ErrExecutionOnly, incompatible.Error())

	_, err = g.AddConnection(Connection{ID: "x", FromNodeID: "a", FromPinID: "text", ToNodeID: "b", ToPinID: "text"})
	assert.ErrorIs(t, err, ErrWrongDirection)

	_, err = g.AddConnection(Connection{ID: "x", FromNodeID: "a", FromPinID: "nope", ToNodeID: "b", ToPinID: "text"})
	assert.ErrorIs(t, err, ErrPinNotFound)

	_, err = g.AddConnection(Connection{ID: "x", FromNodeID: "a", FromPinID: "result", ToNodeID: "a", ToPinID: "text"})
	assert.ErrorIs(t, err, ErrSelfConnection)

	_, err = g.AddConnection(Connection{ID: "x", FromNodeID: "ghost", FromPinID: "result", ToNodeID: "b", ToPinID: "text"})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	assert.Empty(t, g.Connections)
}

func TestGraph_AddConnection_DataInputReplaced(t *testing.T) {
	g := sampleGraph(t, "a", "b", "c")
	_, err := g.AddConnection(Connection{ID: "c1", FromNodeID: "a", FromPinID: "result", ToNodeID: "c", ToPinID: "text"})
	require.NoError(t, err)

	replaced, err := g.AddConnection(Connection{ID: "c2", FromNodeID: "b", FromPinID: "result", ToNodeID: "c", ToPinID: "text"})
	require.NoError(t, err)
	require.Len(t, replaced, 1)
	assert.Equal(t, "c1", replaced[0].ID)
	assert.Equal(t, []Connection{g.Connections[0]}, g.Incoming("c", "text"))
	assert.Equal(t, "c2", g.Connections[0].ID)
}

func TestGraph_AddConnection_ExecutionFanInAndFanOut(t *testing.T) {
	g := sampleGraph(t, "a", "b", "c")
	for i, c := range []Connection{
		{ID: "1", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "c", ToPinID: "exec_in"},
		{ID: "2", FromNodeID: "b", FromPinID: "exec_out", ToNodeID: "c", ToPinID: "exec_in"},
		{ID: "3", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "b", ToPinID: "exec_in"},
	} {
		replaced, err := g.AddConnection(c)
		require.NoError(t, err, "connection %d", i)
		assert.Empty(t, replaced)
	}
	assert.Len(t, g.Incoming("c", "exec_in"), 2)
	assert.Len(t, g.Connections, 3)

	_, err := g.AddConnection(Connection{ID: "4", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "c", ToPinID: "exec_in"})
	assert.ErrorIs(t, err, ErrDuplicateConnection)
}

func TestGraph_ValidConnections(t *testing.T) {
	g := sampleGraph(t, "a", "b")
	g.Connections = []Connection{
		{ID: "ok", FromNodeID: "a", FromPinID: "result", ToNodeID: "b", ToPinID: "text", Type: pintype.String},
		{ID: "ghost-node", FromNodeID: "z", FromPinID: "result", ToNodeID: "b", ToPinID: "text"},
		{ID: "ghost-pin", FromNodeID: "a", FromPinID: "missing", ToNodeID: "b", ToPinID: "text"},
	}

	valid := g.ValidConnections()
	require.Len(t, valid, 1)
	assert.Equal(t, "ok", valid[0].ID)
	assert.Len(t, g.Connections, 3)

	removed := g.PruneConnections()
	assert.Len(t, removed, 2)
	assert.Len(t, g.Connections, 1)
}

func TestGraph_RemoveConnection(t *testing.T) {
	g := sampleGraph(t, "a", "b")
	_, err := g.AddConnection(Connection{ID: "c1", FromNodeID: "a", FromPinID: "result", ToNodeID: "b", ToPinID: "text"})
	require.NoError(t, err)

	removed, err := g.RemoveConnection("c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", removed.ID)
	_, err = g.RemoveConnection("c1")
	assert.ErrorIs(t, err, ErrConnectionNotFound)
}

func TestGraph_Variables(t *testing.T) {
	g := NewGraph()
	require.NoError(t, g.AddVariable(Variable{ID: "v1", Name: "title", Type: pintype.String}))
	assert.ErrorIs(t, g.AddVariable(Variable{ID: "v2", Name: "title", Type: pintype.Number}), ErrInvalidVariable)
	assert.ErrorIs(t, g.AddVariable(Variable{ID: "v3", Name: "go", Type: pintype.Execution}), ErrInvalidVariable)
	assert.ErrorIs(t, g.AddVariable(Variable{ID: "v4", Type: pintype.Number}), ErrInvalidVariable)
	assert.Len(t, g.Variables, 1)
}

func TestVariable_ValidateDefault(t *testing.T) {
	assert.NoError(t, Variable{Name: "n", Type: pintype.Number, DefaultValue: 4.0}.Validate())
	assert.NoError(t, Variable{Name: "n", Type: pintype.Number, DefaultValue: "4"}.Validate())
	assert.NoError(t, Variable{Name: "d", Type: pintype.Date, DefaultValue: "2024-05-01"}.Validate())
	assert.NoError(t, Variable{Name: "clip", Type: pintype.Video, DefaultValue: "intro.mp4"}.Validate())

	err := Variable{Name: "n", Type: pintype.Number, DefaultValue: "not-a-number"}.Validate()
	assert.ErrorIs(t, err, ErrInvalidVariable)
	assert.ErrorContains(t, err, `cannot convert "not-a-number" to number`)
	assert.ErrorIs(t, Variable{Name: "flag", Type: pintype.Boolean, DefaultValue: []any{}}.Validate(), ErrInvalidVariable)
}

func TestGraph_JSONShape(t *testing.T) {
	g := sampleGraph(t, "a", "b")
	_, err := g.AddConnection(Connection{ID: "c1", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "b", ToPinID: "exec_in"})
	require.NoError(t, err)

	data, err := json.Marshal(g)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Contains(t, raw, "nodes")
	require.Contains(t, raw, "connections")

	conn := raw["connections"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{
		"id": "c1", "fromNodeId": "a", "fromPinId": "exec_out",
		"toNodeId": "b", "toPinId": "exec_in", "type": "execution",
	}, conn)

	node := raw["nodes"].([]any)[0].(map[string]any)
	assert.Contains(t, node, "position")
	assert.Contains(t, node, "inputPins")
	assert.NotContains(t, node, "label")
}

func TestGraph_ScanValue(t *testing.T) {
	g := sampleGraph(t, "a")
	v, err := g.Value()
	require.NoError(t, err)

	var back Graph
	require.NoError(t, back.Scan(v))
	assert.Equal(t, g.Nodes, back.Nodes)

	var empty Graph
	require.NoError(t, empty.Scan(nil))
	assert.NotNil(t, empty.Nodes)
	assert.Error(t, empty.Scan(42))
}

func TestGraph_Clone(t *testing.T) {
	g := sampleGraph(t, "a")
	c := g.Clone()
	c.Nodes[0].InputPins[0].Name = "changed"
	c.Nodes[0].Position.X = 99
	assert.Equal(t, "Exec", g.Nodes[0].InputPins[0].Name)
	assert.Equal(t, 0.0, g.Nodes[0].Position.X)
}
