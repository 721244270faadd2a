package canvas

import "blueprint/internal/geometry"

type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Event is a user input fed to Controller.Handle.
type Event interface {
	event()
}

type PointerDown struct {
	Button Button
	Shift  bool
	Screen geometry.Point
}

type PointerMove struct {
	Screen geometry.Point
}

type PointerUp struct {
	Button Button
	Screen geometry.Point
}

// Wheel zooms out for positive DeltaY (wheel down) and in for negative.
type Wheel struct {
	DeltaY float64
	Screen geometry.Point
}

type KeyDown struct {
	Key string
	// TextInputFocused suppresses shortcuts while the user types in a field.
	TextInputFocused bool
}

// Resize reports a new canvas element size.
type Resize struct {
	Size geometry.Size
}

func (PointerDown) event() {}
func (PointerMove) event() {}
func (PointerUp) event()   {}
func (Wheel) event()       {}
func (KeyDown) event()     {}
func (Resize) event()      {}

const (
	KeyEscape    = "Escape"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
)
