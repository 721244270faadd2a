// Package geometry holds the pure coordinate math behind the flowchart canvas:
// world/screen mapping, connection curves and hit tests.
package geometry

import (
	"fmt"
	"math"
)

const (
	MinZoom = 0.1
	MaxZoom = 3.0

	// DefaultCurveStrength is the minimum horizontal pull of a connection curve.
	DefaultCurveStrength = 50.0
)

// Point is a 2D coordinate, in world or screen space depending on context.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Add(q Point) Point        { return Point{X: p.X + q.X, Y: p.Y + q.Y} }
func (p Point) Sub(q Point) Point        { return Point{X: p.X - q.X, Y: p.Y - q.Y} }
func (p Point) Scale(f float64) Point    { return Point{X: p.X * f, Y: p.Y * f} }
func (p Point) Distance(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Near reports whether q lies within radius of p.
func (p Point) Near(q Point, radius float64) bool {
	return p.Distance(q) <= radius
}

// Size is the pixel size of the canvas element.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (s Size) Center() Point {
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

// Rect is an axis aligned box anchored at its top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains is inclusive on every edge.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Viewport is the camera over the unbounded world canvas.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	PanX float64 `json:"panX"`
	PanY float64 `json:"panY"`
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

func (v Viewport) Pan() Point {
	return Point{X: v.PanX, Y: v.PanY}
}

// ZoomBy multiplies the zoom factor, keeping it inside [MinZoom, MaxZoom].
func (v Viewport) ZoomBy(factor float64) Viewport {
	v.Zoom = ClampZoom(v.Zoom * factor)
	return v
}

// PanBy moves the camera by a screen-space delta.
func (v Viewport) PanBy(screenDelta Point) Viewport {
	z := v.safeZoom()
	v.PanX -= screenDelta.X / z
	v.PanY -= screenDelta.Y / z
	return v
}

func (v Viewport) safeZoom() float64 {
	if v.Zoom == 0 {
		return 1
	}
	return v.Zoom
}

// WorldToScreen maps a world point to canvas pixels.
func WorldToScreen(p Point, vp Viewport, canvas Size) Point {
	c := canvas.Center()
	return Point{
		X: (p.X-vp.PanX)*vp.Zoom + c.X,
		Y: (p.Y-vp.PanY)*vp.Zoom + c.Y,
	}
}

// ScreenToWorld is the inverse of WorldToScreen.
func ScreenToWorld(p Point, vp Viewport, canvas Size) Point {
	c := canvas.Center()
	z := vp.safeZoom()
	return Point{
		X: (p.X-c.X)/z + vp.PanX,
		Y: (p.Y-c.Y)/z + vp.PanY,
	}
}

// ScreenDeltaToWorld converts a pointer movement into world units.
func ScreenDeltaToWorld(d Point, vp Viewport) Point {
	return d.Scale(1 / vp.safeZoom())
}

// Bezier is a cubic curve description.
type Bezier struct {
	Start    Point `json:"start"`
	Control1 Point `json:"control1"`
	Control2 Point `json:"control2"`
	End      Point `json:"end"`
}

// BezierPath builds the S-curve used for connections. A non-positive
// curveStrength falls back to DefaultCurveStrength.
func BezierPath(start, end Point, curveStrength float64) Bezier {
	if curveStrength <= 0 {
		curveStrength = DefaultCurveStrength
	}
	offset := math.Max(math.Abs(end.X-start.X)/2, curveStrength)
	return Bezier{
		Start:    start,
		Control1: Point{X: start.X + offset, Y: start.Y},
		Control2: Point{X: end.X - offset, Y: end.Y},
		End:      end,
	}
}

// SVG renders the curve as an SVG path command.
func (b Bezier) SVG() string {
	return fmt.Sprintf("M %g %g C %g %g, %g %g, %g %g",
		b.Start.X, b.Start.Y,
		b.Control1.X, b.Control1.Y,
		b.Control2.X, b.Control2.Y,
		b.End.X, b.End.Y)
}

// At evaluates the curve at t in [0, 1].
func (b Bezier) At(t float64) Point {
	u := 1 - t
	return b.Start.Scale(u * u * u).
		Add(b.Control1.Scale(3 * u * u * t)).
		Add(b.Control2.Scale(3 * u * t * t)).
		Add(b.End.Scale(t * t * t))
}

func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func ClampZoom(z float64) float64 {
	return Clamp(z, MinZoom, MaxZoom)
}

// SnapToGrid rounds v to the nearest multiple of grid. A non-positive grid
// leaves v untouched.
func SnapToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

func SnapPoint(p Point, grid float64) Point {
	return Point{X: SnapToGrid(p.X, grid), Y: SnapToGrid(p.Y, grid)}
}
