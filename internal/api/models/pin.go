package models

import "blueprint/internal/pintype"

type PinDirection string

const (
	PinInput  PinDirection = "input"
	PinOutput PinDirection = "output"
)

// Pin is a typed socket on a node. Its direction is implied by the list it
// is stored in.
type Pin struct {
	ID           string       `json:"id" yaml:"id"`
	Name         string       `json:"name" yaml:"name"`
	Type         pintype.Type `json:"type" yaml:"type"`
	Required     bool         `json:"required,omitempty" yaml:"required"`
	DefaultValue any          `json:"defaultValue,omitempty" yaml:"defaultValue"`
}

func (p Pin) IsExecution() bool {
	return p.Type == pintype.Execution
}

// PinRef addresses a pin inside a graph.
type PinRef struct {
	NodeID    string       `json:"nodeId"`
	PinID     string       `json:"pinId"`
	Direction PinDirection `json:"direction"`
}
