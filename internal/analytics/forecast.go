package analytics

import (
	"math"

	"github.com/civicgrid/regionpulse/internal/domain"
)

// ForecastNext extrapolates one period past the end of a trend series by
// fitting an ordinary-least-squares line through (index, value) pairs and
// evaluating it at len(series). Results are floored at zero and rounded to
// the nearest integer. Fewer than two points yield 0.
func ForecastNext(series []domain.TrendPoint) int64 {
	n := len(series)
	if n < 2 {
		return 0
	}

	var meanX, meanY float64
	for i, p := range series {
		meanX += float64(i)
		meanY += float64(p.Value)
	}
	meanX /= float64(n)
	meanY /= float64(n)

	var num, den float64
	for i, p := range series {
		dx := float64(i) - meanX
		num += dx * (float64(p.Value) - meanY)
		den += dx * dx
	}
	// With fixed 0..n-1 indices and n >= 2 the denominator can't be zero;
	// the guard only covers the degenerate all-equal-index case.
	if den == 0 {
		return series[n-1].Value
	}

	slope := num / den
	intercept := meanY - slope*meanX
	next := slope*float64(n) + intercept
	if next < 0 {
		return 0
	}
	return int64(math.Round(next))
}
