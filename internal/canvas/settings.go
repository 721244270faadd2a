package canvas

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"blueprint/internal/geometry"

	"github.com/BurntSushi/toml"
)

// Settings are UX tuning constants of the editor, not correctness rules.
type Settings struct {
	// DragThreshold is how far, in screen pixels, the pointer must travel
	// before a pressed node starts moving.
	DragThreshold   float64       `toml:"drag_threshold"`
	GridSize        float64       `toml:"grid_size"`
	SnapToGrid      bool          `toml:"snap_to_grid"`
	TooltipDuration time.Duration `toml:"tooltip_duration"`
	CurveStrength   float64       `toml:"curve_strength"`
	ZoomInFactor    float64       `toml:"zoom_in_factor"`
	ZoomOutFactor   float64       `toml:"zoom_out_factor"`
	Layout          Layout        `toml:"layout"`
}

func DefaultSettings() Settings {
	return Settings{
		DragThreshold:   5,
		GridSize:        20,
		SnapToGrid:      false,
		TooltipDuration: 3 * time.Second,
		CurveStrength:   geometry.DefaultCurveStrength,
		ZoomInFactor:    1.1,
		ZoomOutFactor:   0.9,
		Layout:          DefaultLayout(),
	}
}

// LoadSettings reads a TOML file on top of the defaults. A missing file is
// not an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	if path == "" {
		return s, nil
	}
	if _, err := toml.DecodeFile(path, &s); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSettings(), nil
		}
		return s, fmt.Errorf("failed to read editor settings %s: %w", path, err)
	}
	return s.normalized(), nil
}

func (s Settings) normalized() Settings {
	d := DefaultSettings()
	if s.DragThreshold < 0 {
		s.DragThreshold = d.DragThreshold
	}
	if s.TooltipDuration <= 0 {
		s.TooltipDuration = d.TooltipDuration
	}
	if s.ZoomInFactor <= 1 {
		s.ZoomInFactor = d.ZoomInFactor
	}
	if s.ZoomOutFactor <= 0 || s.ZoomOutFactor >= 1 {
		s.ZoomOutFactor = d.ZoomOutFactor
	}
	s.Layout = s.Layout.normalized()
	return s
}
