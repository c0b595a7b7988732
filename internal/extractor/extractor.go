// Package extractor reduces decoded audio to a fixed-size series of
// amplitude values, one per waveform bar.
package extractor

import "math"

// DefaultBarCount is the series length used when the caller does not ask
// for a specific resolution.
const DefaultBarCount = 200

// Extract decodes the file at path and reduces it to targetCount RMS
// amplitude values. Values are nominally in [0, 1] for normalized PCM but
// are not re-clamped here; scaling is the waveform model's job.
func Extract(path string, targetCount int) ([]float64, error) {
	buf, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return Reduce(buf.Mono(), targetCount), nil
}

// Reduce downsamples mono into targetCount buckets and takes the RMS of
// each. Inputs already at or below the target length pass through as a
// single-sample-per-bucket RMS. Bucket bounds are computed independently
// per bucket so the last one absorbs the integer-division remainder.
func Reduce(mono []float64, targetCount int) []float64 {
	if targetCount <= 0 || len(mono) == 0 {
		return nil
	}
	if len(mono) <= targetCount {
		out := make([]float64, len(mono))
		for i := range mono {
			out[i] = RMS(mono[i : i+1])
		}
		return out
	}

	bucketSize := len(mono) / targetCount
	if bucketSize < 1 {
		bucketSize = 1
	}
	out := make([]float64, targetCount)
	for i := range out {
		start := i * bucketSize
		end := start + bucketSize
		if i == targetCount-1 {
			end = len(mono)
		}
		out[i] = RMS(mono[start:end])
	}
	return out
}

// RMS computes sqrt(mean(x²)) over samples. An empty slice yields 0.
func RMS(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
