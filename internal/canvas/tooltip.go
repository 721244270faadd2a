package canvas

import (
	"time"

	"blueprint/internal/geometry"
	"blueprint/internal/pintype"
)

type TooltipColor string

const (
	ColorRed    TooltipColor = "red"
	ColorYellow TooltipColor = "yellow"
	ColorGreen  TooltipColor = "green"
)

// ColorFor maps a type engine verdict to the tooltip colour.
func ColorFor(res pintype.Result) TooltipColor {
	switch res.Verdict() {
	case pintype.VerdictValid:
		return ColorGreen
	case pintype.VerdictRequiresAdapter:
		return ColorYellow
	default:
		return ColorRed
	}
}

// Tooltip is a transient message anchored near a pin, in screen space.
type Tooltip struct {
	Text      string         `json:"text"`
	Color     TooltipColor   `json:"color"`
	Anchor    geometry.Point `json:"anchor"`
	Adapter   string         `json:"suggestedAdapter,omitempty"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

func (t *Tooltip) Visible(now time.Time) bool {
	return t != nil && now.Before(t.ExpiresAt)
}

func verdictText(res pintype.Result) string {
	switch {
	case res.Valid && res.CanAutoConvert:
		return "Compatible (auto-converted)"
	case res.Valid:
		return "Compatible"
	case res.RequiresAdapter && res.SuggestedAdapter != "":
		return res.ErrorMessage + " (use " + res.SuggestedAdapter + ")"
	default:
		return res.ErrorMessage
	}
}
