package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"blueprint/internal/api/models"
	"blueprint/internal/pintype"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltin(t *testing.T) {
	reg := NewRegistry(Builtin())
	require.NotZero(t, reg.Len())
	assert.Empty(t, MissingAdapters(reg))

	start, ok := reg.Get("start")
	require.True(t, ok)
	assert.Empty(t, start.InputPins)
	require.Len(t, start.OutputPins, 1)
	assert.Equal(t, pintype.Execution, start.OutputPins[0].Type)

	_, ok = reg.Get("does-not-exist")
	assert.False(t, ok)
	assert.Contains(t, reg.Categories(), "adapter")
	assert.Len(t, reg.ByCategory("adapter"), 3)
}

func TestParse_Rejects(t *testing.T) {
	tests := map[string]string{
		"missing id":      "nodeTypes:\n  - name: x\n",
		"duplicate pin":   "nodeTypes:\n  - id: a\n    inputPins: [{id: p, type: string}]\n    outputPins: [{id: p, type: string}]\n",
		"untyped pin":     "nodeTypes:\n  - id: a\n    inputPins: [{id: p}]\n",
		"required output": "nodeTypes:\n  - id: a\n    outputPins: [{id: p, type: string, required: true}]\n",
		"not yaml":        "nodeTypes: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestRegistry_ReplaceOverridesDuplicates(t *testing.T) {
	reg := NewRegistry([]NodeType{{ID: "a", Name: "first"}, {ID: "b"}, {ID: "a", Name: "second"}})
	assert.Equal(t, 2, reg.Len())
	a, _ := reg.Get("a")
	assert.Equal(t, "second", a.Name)
}

func TestLoad_ExternalFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodeTypes:\n  - id: start\n    name: Begin\n    category: flow\n"), 0o644))

	types, err := Load(path)
	require.NoError(t, err)
	reg := NewRegistry(types)
	start, _ := reg.Get("start")
	assert.Equal(t, "Begin", start.Name)

	types, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Len(t, types, len(Builtin()))
}

func TestInstantiate(t *testing.T) {
	reg := NewRegistry(Builtin())
	node, err := Instantiate(reg, "branch", "n1", models.Position{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, "n1", node.ID)
	assert.Equal(t, "branch", node.Type)
	require.Len(t, node.OutputPins, 2)

	node.InputPins[0].Name = "changed"
	tmpl, _ := reg.Get("branch")
	assert.Equal(t, "Exec", tmpl.InputPins[0].Name)

	_, err = Instantiate(reg, "nope", "n2", models.Position{})
	assert.ErrorIs(t, err, ErrUnknownNodeType)
}

func TestDiagnose(t *testing.T) {
	reg := NewRegistry(Builtin())
	g := models.NewGraph()
	tts, _ := Instantiate(reg, "text-to-speech", "tts", models.Position{})
	upload, _ := Instantiate(reg, "upload-video", "up", models.Position{})
	require.NoError(t, g.AddNode(tts))
	require.NoError(t, g.AddNode(upload))
	require.NoError(t, g.AddNode(models.Node{ID: "ghost", Type: "retired-node"}))

	g.Connections = []models.Connection{
		{ID: "audio-to-video", FromNodeID: "tts", FromPinID: "audio", ToNodeID: "up", ToPinID: "video", Type: pintype.Audio},
		{ID: "dangling", FromNodeID: "missing", FromPinID: "x", ToNodeID: "up", ToPinID: "title"},
		{ID: "flow", FromNodeID: "tts", FromPinID: "exec_out", ToNodeID: "up", ToPinID: "exec_in", Type: pintype.Execution},
	}

	report := Diagnose(g, reg)
	assert.Equal(t, []string{"ghost"}, report.UnknownNodes)
	require.Len(t, report.Removed, 2)
	require.Len(t, g.Connections, 1)
	assert.Equal(t, "flow", g.Connections[0].ID)

	ghost, _ := g.FindNode("ghost")
	assert.Equal(t, []string{"Unknown node type: retired-node"}, ghost.Errors)

	up, _ := g.FindNode("up")
	assert.Contains(t, up.Warnings, `Required input "Video" is not connected`)
	assert.Contains(t, up.Warnings, `Required input "Title" is not connected`)
	assert.Contains(t, up.Warnings, "Removed connection dangling: missing node")

	// Running twice does not pile up diagnostics.
	Diagnose(g, reg)
	up, _ = g.FindNode("up")
	assert.Len(t, up.Warnings, 2)
}

func TestDiagnose_DataInputKeepsLastConnection(t *testing.T) {
	reg := NewRegistry(Builtin())
	g := models.NewGraph()
	for _, id := range []string{"a", "b"} {
		n, err := Instantiate(reg, "generate-text", id, models.Position{})
		require.NoError(t, err)
		require.NoError(t, g.AddNode(n))
	}
	tts, _ := Instantiate(reg, "text-to-speech", "c", models.Position{})
	require.NoError(t, g.AddNode(tts))

	g.Connections = []models.Connection{
		{ID: "first", FromNodeID: "a", FromPinID: "text", ToNodeID: "c", ToPinID: "text"},
		{ID: "second", FromNodeID: "b", FromPinID: "text", ToNodeID: "c", ToPinID: "text"},
		{ID: "repeat", FromNodeID: "a", FromPinID: "text", ToNodeID: "c", ToPinID: "text"},
		{ID: "go-a", FromNodeID: "a", FromPinID: "exec_out", ToNodeID: "c", ToPinID: "exec_in"},
		{ID: "go-b", FromNodeID: "b", FromPinID: "exec_out", ToNodeID: "c", ToPinID: "exec_in"},
		{ID: "go-b-again", FromNodeID: "b", FromPinID: "exec_out", ToNodeID: "c", ToPinID: "exec_in"},
	}

	report := Diagnose(g, reg)
	require.Len(t, g.Incoming("c", "text"), 1)
	assert.Equal(t, "repeat", g.Incoming("c", "text")[0].ID)
	assert.Equal(t, pintype.String, g.Incoming("c", "text")[0].Type)

	// Execution inputs keep their fan-in, minus the exact repeat
	assert.Len(t, g.Incoming("c", "exec_in"), 2)

	var removed []string
	for _, conn := range report.Removed {
		removed = append(removed, conn.ID)
	}
	assert.Equal(t, []string{"first", "second", "go-b"}, removed)

	c, _ := g.FindNode("c")
	assert.Contains(t, c.Warnings, `Removed connection second: input "text" already has a connection`)
	assert.Contains(t, c.Warnings, "Removed connection go-b: duplicate")

	// A second pass finds nothing left to remove
	assert.Empty(t, Diagnose(g, reg).Removed)
}

func TestDiagnose_DropsInvalidVariables(t *testing.T) {
	reg := NewRegistry(Builtin())
	g := models.NewGraph()
	g.Variables = []models.Variable{
		{ID: "v1", Name: "trigger", Type: pintype.Execution},
		{ID: "v2", Name: "retries", Type: pintype.Number, DefaultValue: "not-a-number"},
		{ID: "v3", Name: "limit", Type: pintype.Number, DefaultValue: "42"},
		{ID: "v4", Name: "limit", Type: pintype.String},
		{ID: "v5", Name: "title", Type: pintype.String, DefaultValue: 3.0},
	}

	report := Diagnose(g, reg)
	require.Len(t, g.Variables, 2)
	assert.Equal(t, "v3", g.Variables[0].ID)
	assert.Equal(t, "v5", g.Variables[1].ID)
	require.Len(t, report.InvalidVariables, 3)
	assert.Contains(t, report.InvalidVariables[0], "cannot be of type execution")
	assert.Contains(t, report.InvalidVariables[1], `default of variable "retries"`)
	assert.Contains(t, report.InvalidVariables[2], "already exists")
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nodeTypes: []\n"), 0o644))

	types, err := Load(path)
	require.NoError(t, err)
	reg := NewRegistry(types)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, reg, zerolog.Nop()) }()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("nodeTypes:\n  - id: custom-step\n    name: Custom\n    category: custom\n"), 0o644))

	assert.Eventually(t, func() bool {
		_, ok := reg.Get("custom-step")
		return ok
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
