package models

import (
	"blueprint/internal/geometry"
)

// DefaultNodeWidth is used when a node carries no explicit width.
const DefaultNodeWidth = 180.0

// Position is a world coordinate. Z is only set by the 3D view.
type Position struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	Z *float64 `json:"z,omitempty"`
}

func (p Position) Point() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

func PositionAt(pt geometry.Point) Position {
	return Position{X: pt.X, Y: pt.Y}
}

// Node is an instance of a catalog node type placed on the canvas.
type Node struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Position   Position `json:"position"`
	Label      string   `json:"label,omitempty"`
	InputPins  []Pin    `json:"inputPins,omitempty"`
	OutputPins []Pin    `json:"outputPins,omitempty"`
	Errors     []string `json:"errors,omitempty"`
	Warnings   []string `json:"warnings,omitempty"`
	Width      float64  `json:"width,omitempty"`
}

// Pins returns the input or output list.
func (slf Node) Pins(dir PinDirection) []Pin {
	if dir == PinInput {
		return slf.InputPins
	}
	return slf.OutputPins
}

// FindPin looks a pin up in both lists, inputs first.
func (slf Node) FindPin(pinID string) (Pin, PinDirection, bool) {
	for _, p := range slf.InputPins {
		if p.ID == pinID {
			return p, PinInput, true
		}
	}
	for _, p := range slf.OutputPins {
		if p.ID == pinID {
			return p, PinOutput, true
		}
	}
	return Pin{}, "", false
}

func (slf Node) DisplayWidth() float64 {
	if slf.Width > 0 {
		return slf.Width
	}
	return DefaultNodeWidth
}

func (slf *Node) AddError(msg string) {
	slf.Errors = appendUnique(slf.Errors, msg)
}

func (slf *Node) AddWarning(msg string) {
	slf.Warnings = appendUnique(slf.Warnings, msg)
}

// ClearDiagnostics drops errors and warnings computed by a previous check.
func (slf *Node) ClearDiagnostics() {
	slf.Errors = nil
	slf.Warnings = nil
}

func appendUnique(list []string, msg string) []string {
	for _, m := range list {
		if m == msg {
			return list
		}
	}
	return append(list, msg)
}

// Comment is a free text note on the canvas. It can be selected and moved
// like a node but carries no pins.
type Comment struct {
	ID       string   `json:"id"`
	Text     string   `json:"text"`
	Position Position `json:"position"`
	Width    float64  `json:"width,omitempty"`
	Height   float64  `json:"height,omitempty"`
}
