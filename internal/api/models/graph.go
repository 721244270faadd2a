package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"blueprint/internal/geometry"
	"blueprint/internal/pintype"
)

// Graph is the editable content of a flowchart. It is stored as a single
// jsonb document.
type Graph struct {
	Nodes       []Node             `json:"nodes"`
	Connections []Connection       `json:"connections"`
	Variables   []Variable         `json:"variables,omitempty"`
	Comments    []Comment          `json:"comments,omitempty"`
	Viewport    *geometry.Viewport `json:"viewport,omitempty"`
}

func NewGraph() *Graph {
	return &Graph{
		Nodes:       make([]Node, 0),
		Connections: make([]Connection, 0),
	}
}

// Scan implements sql.Scanner interface
func (g *Graph) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		*g = *NewGraph()
		return nil
	case []byte:
		return json.Unmarshal(v, g)
	case string:
		return json.Unmarshal([]byte(v), g)
	default:
		return fmt.Errorf("cannot scan type %T into Graph", value)
	}
}

// Value implements driver.Valuer interface
func (g Graph) Value() (driver.Value, error) {
	if g.Nodes == nil {
		g.Nodes = []Node{}
	}
	if g.Connections == nil {
		g.Connections = []Connection{}
	}
	return json.Marshal(g)
}

func (g *Graph) nodeIndex(id string) int {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindNode returns a pointer into the graph so callers can mutate in place.
func (g *Graph) FindNode(id string) (*Node, bool) {
	i := g.nodeIndex(id)
	if i < 0 {
		return nil, false
	}
	return &g.Nodes[i], true
}

// FindPin resolves a pin on a node. The direction must match when given.
func (g *Graph) FindPin(nodeID, pinID string, dir PinDirection) (Pin, error) {
	node, ok := g.FindNode(nodeID)
	if !ok {
		return Pin{}, fmt.Errorf("%w: %s", ErrNodeNotFound, nodeID)
	}
	for _, p := range node.Pins(dir) {
		if p.ID == pinID {
			return p, nil
		}
	}
	if _, other, found := node.FindPin(pinID); found && other != dir {
		return Pin{}, fmt.Errorf("%w: pin %s on node %s is an %s", ErrWrongDirection, pinID, nodeID, other)
	}
	return Pin{}, fmt.Errorf("%w: %s.%s", ErrPinNotFound, nodeID, pinID)
}

func (g *Graph) AddNode(n Node) error {
	if g.nodeIndex(n.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	g.Nodes = append(g.Nodes, n)
	return nil
}

func (g *Graph) MoveNode(id string, pos Position) error {
	node, ok := g.FindNode(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	node.Position = pos
	return nil
}

// DeleteNode removes the node and every connection touching it. The removed
// connections are returned.
func (g *Graph) DeleteNode(id string) ([]Connection, error) {
	i := g.nodeIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, id)
	}
	g.Nodes = append(g.Nodes[:i], g.Nodes[i+1:]...)

	var removed []Connection
	kept := g.Connections[:0]
	for _, c := range g.Connections {
		if c.Touches(id) {
			removed = append(removed, c)
			continue
		}
		kept = append(kept, c)
	}
	g.Connections = kept
	return removed, nil
}

// CheckConnection resolves both endpoints and asks the type engine for a
// verdict without touching the graph.
func (g *Graph) CheckConnection(c Connection) (Pin, Pin, pintype.Result, error) {
	if c.FromNodeID == c.ToNodeID {
		return Pin{}, Pin{}, pintype.Result{}, ErrSelfConnection
	}
	from, err := g.FindPin(c.FromNodeID, c.FromPinID, PinOutput)
	if err != nil {
		return Pin{}, Pin{}, pintype.Result{}, err
	}
	to, err := g.FindPin(c.ToNodeID, c.ToPinID, PinInput)
	if err != nil {
		return Pin{}, Pin{}, pintype.Result{}, err
	}
	res := pintype.ValidateConnection(from.Type, to.Type, pintype.KindFor(from.Type, to.Type))
	return from, to, res, nil
}

// AddConnection validates and stores c. A data input accepts a single
// incoming connection, so an existing one is replaced and returned.
// Execution inputs accept any number of triggers.
func (g *Graph) AddConnection(c Connection) ([]Connection, error) {
	from, _, res, err := g.CheckConnection(c)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, &IncompatibleError{Result: res}
	}
	for _, existing := range g.Connections {
		if existing.From() == c.From() && existing.To() == c.To() {
			return nil, ErrDuplicateConnection
		}
	}
	c.Type = from.Type

	var replaced []Connection
	if !c.IsExecution() {
		kept := g.Connections[:0]
		for _, existing := range g.Connections {
			if existing.To() == c.To() && !existing.IsExecution() {
				replaced = append(replaced, existing)
				continue
			}
			kept = append(kept, existing)
		}
		g.Connections = kept
	}

	g.Connections = append(g.Connections, c)
	return replaced, nil
}

func (g *Graph) RemoveConnection(id string) (Connection, error) {
	for i, c := range g.Connections {
		if c.ID == id {
			g.Connections = append(g.Connections[:i], g.Connections[i+1:]...)
			return c, nil
		}
	}
	return Connection{}, fmt.Errorf("%w: %s", ErrConnectionNotFound, id)
}

// Incoming lists the connections ending on the given input pin.
func (g *Graph) Incoming(nodeID, pinID string) []Connection {
	var out []Connection
	for _, c := range g.Connections {
		if c.ToNodeID == nodeID && c.ToPinID == pinID {
			out = append(out, c)
		}
	}
	return out
}

// ValidConnections filters out connections whose endpoints no longer exist.
// It never mutates the graph; renderers call it before drawing.
func (g *Graph) ValidConnections() []Connection {
	out := make([]Connection, 0, len(g.Connections))
	for _, c := range g.Connections {
		if g.endpointsExist(c) {
			out = append(out, c)
		}
	}
	return out
}

// PruneConnections drops dangling connections and returns them.
func (g *Graph) PruneConnections() []Connection {
	var removed []Connection
	kept := make([]Connection, 0, len(g.Connections))
	for _, c := range g.Connections {
		if g.endpointsExist(c) {
			kept = append(kept, c)
			continue
		}
		removed = append(removed, c)
	}
	g.Connections = kept
	return removed
}

func (g *Graph) endpointsExist(c Connection) bool {
	if _, err := g.FindPin(c.FromNodeID, c.FromPinID, PinOutput); err != nil {
		return false
	}
	_, err := g.FindPin(c.ToNodeID, c.ToPinID, PinInput)
	return err == nil
}

func (g *Graph) FindComment(id string) (*Comment, bool) {
	for i := range g.Comments {
		if g.Comments[i].ID == id {
			return &g.Comments[i], true
		}
	}
	return nil, false
}

func (g *Graph) DeleteComment(id string) error {
	for i := range g.Comments {
		if g.Comments[i].ID == id {
			g.Comments = append(g.Comments[:i], g.Comments[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrCommentNotFound, id)
}

// AddVariable validates v and rejects duplicate names.
func (g *Graph) AddVariable(v Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	for _, existing := range g.Variables {
		if existing.Name == v.Name {
			return fmt.Errorf("%w: variable %q already exists", ErrInvalidVariable, v.Name)
		}
	}
	g.Variables = append(g.Variables, v)
	return nil
}

// Clone returns a deep enough copy for snapshotting: slices are copied so
// edits on the clone never alias the original.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Nodes:       make([]Node, len(g.Nodes)),
		Connections: append(make([]Connection, 0, len(g.Connections)), g.Connections...),
		Variables:   append([]Variable(nil), g.Variables...),
		Comments:    append([]Comment(nil), g.Comments...),
	}
	for i, n := range g.Nodes {
		n.InputPins = append([]Pin(nil), n.InputPins...)
		n.OutputPins = append([]Pin(nil), n.OutputPins...)
		n.Errors = append([]string(nil), n.Errors...)
		n.Warnings = append([]string(nil), n.Warnings...)
		out.Nodes[i] = n
	}
	if g.Viewport != nil {
		vp := *g.Viewport
		out.Viewport = &vp
	}
	return out
}
