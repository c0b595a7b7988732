package render

import (
	"math"

	"github.com/marcel-blanc/waveview/internal/waveform"
)

// outerRadiusRatio keeps the dial inside the viewport with a small margin.
const outerRadiusRatio = 0.95

// RadialBar is one angularly placed bar. Angles are in sweep degrees: 0 at
// the top of the dial, growing clockwise; the painter subtracts 90° when
// converting to screen coordinates.
type RadialBar struct {
	StartDeg float64
	EndDeg   float64
	// Length is the bar's full radial extent beyond the inner radius.
	Length float64
	// ActivePct is how far the progress angle has swept through the bar's
	// angular span: 0 before, 1 past, linear in between.
	ActivePct float64
	// ActiveLength splits the bar radially (AnimationRadial).
	ActiveLength float64
	// ActiveSweepDeg is the active sub-arc anchored at the trailing edge
	// (AnimationFlow).
	ActiveSweepDeg float64
	// Amplitude is the display-local value in [0, 1] the bar was sized from.
	Amplitude float64
}

// Dial is one circular render pass.
type Dial struct {
	CenterX     float64
	CenterY     float64
	InnerRadius float64
	OuterRadius float64
	Bars        []RadialBar
}

// Circular maps a waveform model to radial bars around a dial. Progress is
// display-only here; circular mode does not support scrubbing.
type Circular struct {
	Config CircularConfig
}

// NewCircular creates a circular renderer with the given snapshot.
func NewCircular(cfg CircularConfig) *Circular {
	return &Circular{Config: cfg}
}

// BarCount returns how many bars fit the full circle, capped at the model
// length.
func (r *Circular) BarCount(modelLen int) int {
	step := r.Config.BarWidthDeg + r.Config.SpacingDeg
	if step <= 0 {
		return 0
	}
	count := int(math.Floor(360 / step))
	if count > modelLen {
		count = modelLen
	}
	if count < 0 {
		count = 0
	}
	return count
}

// Render produces the dial geometry for one pass.
func (r *Circular) Render(m *waveform.Model, viewWidth, viewHeight, progress float64) Dial {
	cfg := r.Config
	minDim := math.Min(viewWidth, viewHeight)
	outer := outerRadiusRatio * minDim / 2
	inner := outer * cfg.InnerRadiusRatio
	dial := Dial{
		CenterX:     viewWidth / 2,
		CenterY:     viewHeight / 2,
		InnerRadius: inner,
		OuterRadius: outer,
	}

	barCount := r.BarCount(m.Len())
	if barCount == 0 {
		return dial
	}

	amps := barAmplitudes(m, barCount, cfg.SilenceThreshold)
	avail := outer - inner
	progressDeg := clamp01(progress) * 360
	step := cfg.BarWidthDeg + cfg.SpacingDeg

	dial.Bars = make([]RadialBar, barCount)
	for i, amp := range amps {
		length := avail * cfg.MinRadiusAmp
		if amp > 0 {
			length = avail * (cfg.MinRadiusAmp + amp*(cfg.MaxRadiusAmp-cfg.MinRadiusAmp))
		}

		startDeg := float64(i) * step
		endDeg := startDeg + cfg.BarWidthDeg
		pct := activePct(progressDeg, startDeg, endDeg)

		dial.Bars[i] = RadialBar{
			StartDeg:       startDeg,
			EndDeg:         endDeg,
			Length:         length,
			ActivePct:      pct,
			ActiveLength:   length * pct,
			ActiveSweepDeg: cfg.BarWidthDeg * pct,
			Amplitude:      amp,
		}
	}
	return dial
}

// activePct computes the progress fraction of a bar's angular span. Both
// animation policies share this: 1 once the progress angle reaches the
// bar's end, 0 before its start, linear inside.
func activePct(progressDeg, startDeg, endDeg float64) float64 {
	switch {
	case progressDeg >= endDeg:
		return 1
	case progressDeg <= startDeg:
		return 0
	default:
		return (progressDeg - startDeg) / (endDeg - startDeg)
	}
}
