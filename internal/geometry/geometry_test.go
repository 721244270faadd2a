package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestWorldToScreen(t *testing.T) {
	vp := Viewport{Zoom: 2, PanX: 10, PanY: -5}
	cs := Size{Width: 800, Height: 600}

	got := WorldToScreen(Point{X: 20, Y: 5}, vp, cs)
	assert.InDelta(t, 420, got.X, eps)
	assert.InDelta(t, 320, got.Y, eps)

	// The pan point sits at the canvas centre.
	assert.Equal(t, cs.Center(), WorldToScreen(vp.Pan(), vp, cs))
}

func TestScreenToWorld_RoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		p := Point{X: r.Float64()*1e4 - 5e3, Y: r.Float64()*1e4 - 5e3}
		vp := Viewport{
			Zoom: MinZoom + r.Float64()*(MaxZoom-MinZoom),
			PanX: r.Float64()*2e3 - 1e3,
			PanY: r.Float64()*2e3 - 1e3,
		}
		cs := Size{Width: r.Float64() * 2000, Height: r.Float64() * 2000}

		back := ScreenToWorld(WorldToScreen(p, vp, cs), vp, cs)
		assert.InDelta(t, p.X, back.X, 1e-6)
		assert.InDelta(t, p.Y, back.Y, 1e-6)
	}
}

func TestBezierPath(t *testing.T) {
	b := BezierPath(Point{X: 0, Y: 0}, Point{X: 100, Y: 50}, DefaultCurveStrength)
	assert.Equal(t, Point{X: 50, Y: 0}, b.Control1)
	assert.Equal(t, Point{X: 50, Y: 50}, b.Control2)
	assert.Equal(t, b, BezierPath(Point{X: 0, Y: 0}, Point{X: 100, Y: 50}, DefaultCurveStrength))
	assert.Equal(t, "M 0 0 C 50 0, 50 50, 100 50", b.SVG())
}

func TestBezierPath_MinimumStrength(t *testing.T) {
	b := BezierPath(Point{X: 0, Y: 0}, Point{X: 20, Y: 300}, 0)
	assert.Equal(t, Point{X: 50, Y: 0}, b.Control1)
	assert.Equal(t, Point{X: -30, Y: 300}, b.Control2)

	// Backwards connections still bow outwards.
	b = BezierPath(Point{X: 200, Y: 0}, Point{X: 0, Y: 0}, 80)
	assert.Equal(t, Point{X: 300, Y: 0}, b.Control1)
	assert.Equal(t, Point{X: -100, Y: 0}, b.Control2)
}

func TestBezier_At(t *testing.T) {
	b := BezierPath(Point{X: 0, Y: 0}, Point{X: 100, Y: 50}, 10)
	assert.Equal(t, b.Start, b.At(0))
	assert.Equal(t, b.End, b.At(1))
	mid := b.At(0.5)
	assert.InDelta(t, 50, mid.X, eps)
	assert.InDelta(t, 25, mid.Y, eps)
}

func TestViewport_ZoomBy(t *testing.T) {
	vp := DefaultViewport()
	assert.InDelta(t, 1.1, vp.ZoomBy(1.1).Zoom, eps)
	assert.Equal(t, MaxZoom, Viewport{Zoom: 2.9}.ZoomBy(1.1).Zoom)
	assert.Equal(t, MinZoom, Viewport{Zoom: 0.105}.ZoomBy(0.9).Zoom)
}

func TestViewport_PanBy(t *testing.T) {
	vp := Viewport{Zoom: 2, PanX: 100, PanY: 100}
	got := vp.PanBy(Point{X: 40, Y: -20})
	assert.Equal(t, Viewport{Zoom: 2, PanX: 80, PanY: 110}, got)
}

func TestSnapToGrid(t *testing.T) {
	assert.Equal(t, 40.0, SnapToGrid(31, 20))
	assert.Equal(t, 20.0, SnapToGrid(29, 20))
	assert.Equal(t, -20.0, SnapToGrid(-21, 20))
	assert.Equal(t, 13.7, SnapToGrid(13.7, 0))
	assert.Equal(t, Point{X: 20, Y: 60}, SnapPoint(Point{X: 24, Y: 55}, 20))
}

func TestRectAndPoint(t *testing.T) {
	r := Rect{X: 10, Y: 10, Width: 100, Height: 40}
	assert.True(t, r.Contains(Point{X: 10, Y: 50}))
	assert.False(t, r.Contains(Point{X: 111, Y: 20}))

	p := Point{X: 0, Y: 0}
	assert.True(t, p.Near(Point{X: 3, Y: 4}, 5))
	assert.False(t, p.Near(Point{X: 3, Y: 4.1}, 5))
	assert.Equal(t, 5.0, p.Distance(Point{X: -3, Y: -4}))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3.0, ClampZoom(10))
	assert.Equal(t, 0.1, ClampZoom(-1))
	assert.Equal(t, 1.5, Clamp(1.5, 0, 2))
	assert.False(t, math.IsNaN(ScreenToWorld(Point{X: 1, Y: 1}, Viewport{}, Size{}).X))
}
