// Package waveform holds per-bar amplitude data and produces display-ready
// values under a global or dynamic normalization policy.
package waveform

// Mode selects the normalization policy.
type Mode uint8

const (
	// Global scales against the series' own maximum. Used for playback,
	// where the whole file is known up front.
	Global Mode = iota
	// Dynamic scales against a monotonically growing running peak. Used
	// for live recording, where the gain must auto-calibrate upward as
	// louder audio arrives without ever shrinking the existing waveform.
	Dynamic
)

func (m Mode) String() string {
	if m == Dynamic {
		return "dynamic"
	}
	return "global"
}

// nearSilentPeak guards Global normalization against exploding an almost
// silent series into noise.
const nearSilentPeak = 0.0001

// dynamicPeakFloor is the minimum divisor under Dynamic mode.
const dynamicPeakFloor = 0.01

// Model owns the raw amplitude series and its normalized counterpart.
// Renderers read it; they never mutate it. Not safe for concurrent use:
// all access happens on the render goroutine.
type Model struct {
	mode        Mode
	minAmp      float64
	maxAmp      float64
	raw         []float64
	normalized  []float64
	runningPeak float64
}

// New creates an empty model. minAmp and maxAmp bound the normalized output.
func New(mode Mode, minAmp, maxAmp float64) *Model {
	return &Model{mode: mode, minAmp: minAmp, maxAmp: maxAmp}
}

// Mode returns the active normalization policy.
func (m *Model) Mode() Mode { return m.mode }

// SetMode switches the normalization policy and renormalizes. Switching to
// Global resets the running peak; switching to Dynamic keeps whatever peak
// the current series establishes.
func (m *Model) SetMode(mode Mode) {
	if m.mode == mode {
		return
	}
	m.mode = mode
	if mode == Global {
		m.runningPeak = 0
	}
	m.normalize()
}

// Len returns the normalized series length.
func (m *Model) Len() int { return len(m.normalized) }

// RunningPeak returns the Dynamic-mode gain reference. It only grows while
// Dynamic is active.
func (m *Model) RunningPeak() float64 { return m.runningPeak }

// Update replaces the raw series and renormalizes fully.
func (m *Model) Update(series []float64) {
	m.raw = append(m.raw[:0], series...)
	peak := maxOf(m.raw)
	if m.mode == Global {
		m.runningPeak = peak
	} else if peak > m.runningPeak {
		m.runningPeak = peak
	}
	m.normalize()
}

// Append adds one raw sample. Dynamic mode renormalizes the whole series;
// live recording appends one amplitude per tick, so the O(n) pass is cheap.
func (m *Model) Append(value float64) {
	m.raw = append(m.raw, value)
	if m.mode == Dynamic && value > m.runningPeak {
		m.runningPeak = value
	}
	m.normalize()
}

// Clear empties both series and resets the running peak.
func (m *Model) Clear() {
	m.raw = m.raw[:0]
	m.normalized = m.normalized[:0]
	m.runningPeak = 0
}

// AmplitudeAt returns the normalized value at index, or 0.0 for any index
// outside the series. Renderers rely on this instead of bounds checks.
func (m *Model) AmplitudeAt(index int) float64 {
	if index < 0 || index >= len(m.normalized) {
		return 0
	}
	return m.normalized[index]
}

func (m *Model) normalize() {
	peak := 1.0
	switch m.mode {
	case Global:
		if p := maxOf(m.raw); p >= nearSilentPeak {
			peak = p
		}
	case Dynamic:
		peak = m.runningPeak
		if peak < dynamicPeakFloor {
			peak = dynamicPeakFloor
		}
	}

	if cap(m.normalized) < len(m.raw) {
		m.normalized = make([]float64, len(m.raw))
	}
	m.normalized = m.normalized[:len(m.raw)]
	span := m.maxAmp - m.minAmp
	for i, v := range m.raw {
		n := v/peak*span + m.minAmp
		if n < 0 {
			n = 0
		} else if n > m.maxAmp {
			n = m.maxAmp
		}
		m.normalized[i] = n
	}
}

func maxOf(s []float64) float64 {
	var peak float64
	for _, v := range s {
		if v > peak {
			peak = v
		}
	}
	return peak
}
