// Package trim holds the pure sample math used by the recording pipeline:
// silence trimming and amplitude level checks. Nothing here touches devices,
// clocks, or goroutines, which keeps the controller's decisions testable.
package trim

import "math"

// Silence returns the sub-slice of samples between the first and last sample
// whose absolute amplitude exceeds threshold, widened by pad samples on each
// side and clamped to the buffer. When no sample exceeds the threshold the
// input is returned unchanged; the caller decides whether an all-silent
// buffer is worth transcribing via an overall level check.
func Silence(samples []float32, threshold float64, pad int) []float32 {
	first, last := -1, -1
	for i, s := range samples {
		if math.Abs(float64(s)) > threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return samples
	}

	start := first - pad
	if start < 0 {
		start = 0
	}
	end := last + 1 + pad
	if end > len(samples) {
		end = len(samples)
	}
	return samples[start:end]
}

// PadSamples converts an edge padding duration in milliseconds to a sample count.
func PadSamples(paddingMS, sampleRate int) int {
	return paddingMS * sampleRate / 1000
}

// Peak returns the largest absolute amplitude in the buffer.
func Peak(samples []float32) float64 {
	var peak float64
	for _, s := range samples {
		if a := math.Abs(float64(s)); a > peak {
			peak = a
		}
	}
	return peak
}

// MeanAbs returns the mean absolute amplitude, zero for an empty buffer.
func MeanAbs(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += math.Abs(float64(s))
	}
	return sum / float64(len(samples))
}
