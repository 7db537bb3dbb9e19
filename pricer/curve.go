package pricer

import (
	"fmt"
	"sort"
)

// CurvePoint is one zero-curve pillar: a tenor in months and its zero
// rate as a decimal (0.0430 == 4.30%).
type CurvePoint struct {
	TenorMonths int     `json:"tenor_months"`
	Rate        float64 `json:"rate"`
}

// ZeroCurve is an immutable zero-rate curve keyed by tenor in months.
//
// Pillars are stored sorted ascending. RateAt interpolates linearly
// between pillars and extrapolates flat beyond either end. A curve built
// through NewZeroCurve always has at least one pillar, so lookups never
// fail; read-only sharing across concurrent pricing calls is safe.
type ZeroCurve struct {
	points []CurvePoint
}

// NewZeroCurve builds a curve from a tenor-to-rate map.
//
// It returns ErrInvalidCurve when rates is empty or contains a
// non-positive tenor.
func NewZeroCurve(rates map[int]float64) (*ZeroCurve, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("NewZeroCurve: no curve points: %w", ErrInvalidCurve)
	}

	points := make([]CurvePoint, 0, len(rates))
	for months, rate := range rates {
		if months <= 0 {
			return nil, fmt.Errorf("NewZeroCurve: non-positive tenor %dM: %w", months, ErrInvalidCurve)
		}
		points = append(points, CurvePoint{TenorMonths: months, Rate: rate})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].TenorMonths < points[j].TenorMonths
	})
	return &ZeroCurve{points: points}, nil
}

// RateAt returns the zero rate at a tenor in months, which may be
// fractional.
//
// Exact pillar hits return the stored rate. Queries between pillars
// interpolate linearly; queries beyond either end return the endpoint
// rate unchanged (flat extrapolation).
func (c *ZeroCurve) RateAt(tenorMonths float64) float64 {
	pts := c.points

	// First pillar at or above the query tenor.
	i := sort.Search(len(pts), func(i int) bool {
		return float64(pts[i].TenorMonths) >= tenorMonths
	})

	if i >= len(pts) {
		return pts[len(pts)-1].Rate
	}
	if float64(pts[i].TenorMonths) == tenorMonths {
		return pts[i].Rate
	}
	if i == 0 {
		return pts[0].Rate
	}

	lo, hi := pts[i-1], pts[i]
	weight := (tenorMonths - float64(lo.TenorMonths)) / float64(hi.TenorMonths-lo.TenorMonths)
	return lo.Rate + weight*(hi.Rate-lo.Rate)
}

// Len returns the number of stored pillars.
func (c *ZeroCurve) Len() int {
	return len(c.points)
}

// Points returns a copy of the pillars in ascending tenor order.
func (c *ZeroCurve) Points() []CurvePoint {
	out := make([]CurvePoint, len(c.points))
	copy(out, c.points)
	return out
}
