package models

import "blueprint/internal/pintype"

// Connection is a directed edge from an output pin to an input pin.
type Connection struct {
	ID         string       `json:"id"`
	FromNodeID string       `json:"fromNodeId"`
	FromPinID  string       `json:"fromPinId"`
	ToNodeID   string       `json:"toNodeId"`
	ToPinID    string       `json:"toPinId"`
	Type       pintype.Type `json:"type"`
}

// IsExecution reports whether the edge carries control flow. Execution
// edges render solid, data edges dashed.
func (c Connection) IsExecution() bool {
	return c.Type == pintype.Execution
}

func (c Connection) Kind() pintype.Kind {
	return pintype.KindOf(c.Type)
}

func (c Connection) Touches(nodeID string) bool {
	return c.FromNodeID == nodeID || c.ToNodeID == nodeID
}

func (c Connection) From() PinRef {
	return PinRef{NodeID: c.FromNodeID, PinID: c.FromPinID, Direction: PinOutput}
}

func (c Connection) To() PinRef {
	return PinRef{NodeID: c.ToNodeID, PinID: c.ToPinID, Direction: PinInput}
}
