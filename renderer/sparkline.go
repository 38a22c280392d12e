package renderer

import (
	"math"
	"strings"
)

// SparklineWidth is the number of characters of a sparkline.
const SparklineWidth = 20

var blocks = []rune("▁▂▃▄▅▆▇█")

// Normalize maps samples to [0,1], the lowest to 0 and the highest to 1.
// A flat series sits in the middle.
func Normalize(samples []float64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	r := make([]float64, len(samples))
	for i, v := range samples {
		if hi == lo {
			r[i] = 0.5
			continue
		}
		r[i] = (v - lo) / (hi - lo)
	}
	return r
}

// Sparkline draws samples with block characters, at most SparklineWidth of
// them.
func Sparkline(samples []float64) string {
	norm := Normalize(samples)
	n := min(len(norm), SparklineWidth)
	var b strings.Builder
	for i := 0; i < n; i++ {
		// last sample of each bucket, so the line ends on the current price.
		v := norm[(i+1)*len(norm)/n-1]
		b.WriteRune(blocks[int(math.Round(v*float64(len(blocks)-1)))])
	}
	return b.String()
}
