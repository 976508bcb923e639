package chart

import (
	"fmt"
	"math"
)

type axisScale struct {
	Min, Max, Step float64
}

// maxTicks bounds the gridlines drawn for any scale.
const maxTicks = 50

var defaultScale = axisScale{Min: 0, Max: 1, Step: 0.2}

// niceScale returns an axis range covering zero and all values, padded so
// bar annotations stay inside the plot and snapped to 1/2/5 steps.
// Non-finite values are ignored; a range that cannot be represented falls
// back to 0..1.
func niceScale(values ...float64) axisScale {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi-lo == 0 {
		return defaultScale
	}

	pad := (hi - lo) * 0.1
	if hi > 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}

	step := niceStep((hi - lo) / 5)
	sc := axisScale{
		Min:  math.Floor(lo/step) * step,
		Max:  math.Ceil(hi/step) * step,
		Step: step,
	}
	if !sc.valid() {
		return defaultScale
	}
	return sc
}

func (s axisScale) valid() bool {
	for _, v := range []float64{s.Min, s.Max, s.Step} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	if s.Step <= 0 || s.Max <= s.Min {
		return false
	}
	n := (s.Max - s.Min) / s.Step
	return !math.IsInf(n, 0) && n <= maxTicks
}

// clamp pins v into the scale range. NaN maps to zero.
func (s axisScale) clamp(v float64) float64 {
	if math.IsNaN(v) {
		v = 0
	}
	return math.Max(s.Min, math.Min(s.Max, v))
}

func niceStep(raw float64) float64 {
	exp := math.Floor(math.Log10(raw))
	base := math.Pow(10, exp)
	f := raw / base
	switch {
	case f <= 1:
		return base
	case f <= 2:
		return 2 * base
	case f <= 5:
		return 5 * base
	default:
		return 10 * base
	}
}

func (s axisScale) ticks() []float64 {
	n := int(math.Round((s.Max - s.Min) / s.Step))
	out := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		out = append(out, s.Min+float64(i)*s.Step)
	}
	return out
}

// valueLabel formats a bar annotation; very large magnitudes switch to
// exponent notation so the text stays inside the canvas.
func valueLabel(v float64) string {
	if math.Abs(v) >= 1e9 || math.IsNaN(v) {
		return fmt.Sprintf("%.3g", v)
	}
	return fmt.Sprintf("%.1f", v)
}

func (s axisScale) label(v float64) string {
	dec := 0
	if s.Step < 1 {
		dec = int(math.Ceil(-math.Log10(s.Step)))
	}
	if math.Abs(v) < s.Step*1e-9 {
		v = 0
	}
	return fmt.Sprintf("%.*f", dec, v)
}
