package render

import (
	"math"

	"github.com/marcel-blanc/waveview/internal/waveform"
)

// Bar is one rounded rectangle in viewport coordinates.
type Bar struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
	Radius float64
	// Amplitude is the display-local value in [0, 1] the bar was sized from.
	Amplitude float64
}

// Frame is one linear render pass. Both layers contain the same bars; the
// active layer is clipped to [0, ActiveClipX). A bar straddling the clip
// edge is split at the pixel boundary, not per bar.
type Frame struct {
	Bars        []Bar
	ActiveClipX float64
	Width       float64
	Height      float64
}

// Linear maps a waveform model and a progress cursor to rounded bar
// rectangles, and maps touch coordinates back to progress.
type Linear struct {
	Config LinearConfig
}

// NewLinear creates a linear renderer with the given snapshot.
func NewLinear(cfg LinearConfig) *Linear {
	return &Linear{Config: cfg}
}

// BarCount returns how many bars fit the viewport, capped at the model
// length.
func (r *Linear) BarCount(viewportWidth float64, modelLen int) int {
	step := r.Config.BarWidth + r.Config.Spacing
	if step <= 0 {
		return 0
	}
	count := int(math.Floor(viewportWidth / step))
	if count > modelLen {
		count = modelLen
	}
	if count < 0 {
		count = 0
	}
	return count
}

// Render produces the bar geometry for one pass. progress is clamped to
// [0, 1].
func (r *Linear) Render(m *waveform.Model, viewportWidth, viewportHeight, progress float64) Frame {
	cfg := r.Config
	frame := Frame{
		Width:       viewportWidth,
		Height:      viewportHeight,
		ActiveClipX: viewportWidth * clamp01(progress),
	}

	barCount := r.BarCount(viewportWidth, m.Len())
	if barCount == 0 {
		return frame
	}

	amps := barAmplitudes(m, barCount, cfg.SilenceThreshold)
	frame.Bars = make([]Bar, barCount)
	step := cfg.BarWidth + cfg.Spacing
	for i, amp := range amps {
		h := cfg.MinBarHeight
		if amp > 0 {
			h = cfg.MinBarHeight + (cfg.MaxBarHeight-cfg.MinBarHeight)*amp
		}
		frame.Bars[i] = Bar{
			X:         float64(i) * step,
			Y:         (viewportHeight - h) / 2,
			Width:     cfg.BarWidth,
			Height:    h,
			Radius:    cfg.CornerRadius,
			Amplitude: amp,
		}
	}
	return frame
}

// ProgressAt maps a touch x-coordinate to a progress value, clamped to
// [0, 1]. The view reports this as a seek only on touch release; drags only
// move the visual cursor.
func (r *Linear) ProgressAt(touchX, viewportWidth float64) float64 {
	if viewportWidth <= 0 {
		return 0
	}
	return clamp01(touchX / viewportWidth)
}
