package render

import "github.com/marcel-blanc/waveview/internal/waveform"

// barAmplitudes derives one amplitude per displayed bar: the peak (not the
// average, so transients survive) of the bar's sample range, re-stretched
// into [0, 1] across the displayed bars, with near-silent bars snapped to
// exactly 0. The stretch is a second, display-local pass on top of the
// model's own normalization; it maximizes contrast for whatever is on
// screen.
func barAmplitudes(m *waveform.Model, barCount int, silenceThreshold float64) []float64 {
	if barCount <= 0 || m.Len() == 0 {
		return nil
	}

	samplesPerBar := float64(m.Len()) / float64(barCount)
	out := make([]float64, barCount)
	for i := range out {
		start := int(float64(i) * samplesPerBar)
		end := int(float64(i+1) * samplesPerBar)
		if end <= start {
			end = start + 1
		}
		var peak float64
		for j := start; j < end; j++ {
			if v := m.AmplitudeAt(j); v > peak {
				peak = v
			}
		}
		out[i] = peak
	}

	minAmp, maxAmp := out[0], out[0]
	for _, v := range out {
		if v < minAmp {
			minAmp = v
		}
		if v > maxAmp {
			maxAmp = v
		}
	}
	for i, v := range out {
		if maxAmp > minAmp {
			v = (v - minAmp) / (maxAmp - minAmp)
		} else {
			v = 0
		}
		if v < silenceThreshold {
			v = 0
		}
		out[i] = v
	}
	return out
}
