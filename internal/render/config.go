// Package render turns a waveform model and a progress cursor into bar
// geometry, for a linear strip or a circular dial, and paints that geometry
// to the terminal.
package render

// CircularAnimation selects how a circular bar splits at the progress
// boundary.
type CircularAnimation uint8

const (
	// AnimationRadial splits each bar along its length, filling outward
	// from the inner radius as progress sweeps past.
	AnimationRadial CircularAnimation = iota
	// AnimationFlow splits each bar across its angular width, producing a
	// sweeping fill anchored at the bar's trailing edge.
	AnimationFlow
)

// LinearConfig is an immutable geometry snapshot for the linear renderer.
// The view replaces it wholesale on any configuration change; a render pass
// never observes a partial mutation.
type LinearConfig struct {
	BarWidth         float64
	Spacing          float64
	CornerRadius     float64
	MinBarHeight     float64
	MaxBarHeight     float64
	SilenceThreshold float64
	ActiveColor      RGB
	InactiveColor    RGB
}

// DefaultLinearConfig mirrors the view defaults.
func DefaultLinearConfig() LinearConfig {
	return LinearConfig{
		BarWidth:         4,
		Spacing:          6,
		CornerRadius:     2,
		MinBarHeight:     2,
		MaxBarHeight:     48,
		SilenceThreshold: 0.01,
		ActiveColor:      RGB{R: 255, G: 140, B: 0},
		InactiveColor:    RGB{R: 120, G: 120, B: 120},
	}
}

// CircularConfig is the circular renderer's snapshot.
type CircularConfig struct {
	BarWidthDeg      float64
	SpacingDeg       float64
	InnerRadiusRatio float64
	MinRadiusAmp     float64
	MaxRadiusAmp     float64
	SilenceThreshold float64
	Animation        CircularAnimation
	ActiveColor      RGB
	InactiveColor    RGB
}

// DefaultCircularConfig mirrors the view defaults.
func DefaultCircularConfig() CircularConfig {
	return CircularConfig{
		BarWidthDeg:      4,
		SpacingDeg:       6,
		InnerRadiusRatio: 0.4,
		MinRadiusAmp:     0.1,
		MaxRadiusAmp:     1.0,
		SilenceThreshold: 0.01,
		Animation:        AnimationRadial,
		ActiveColor:      RGB{R: 255, G: 140, B: 0},
		InactiveColor:    RGB{R: 120, G: 120, B: 120},
	}
}
