package analytics

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/rateedge/ratestore"
)

// SpreadPoint is one date quoted on both tenors.
type SpreadPoint struct {
	Date   string  `json:"date"`
	Rate1  float64 `json:"rate1"`
	Rate2  float64 `json:"rate2"`
	Spread float64 `json:"spread"`
}

// SpreadStats summarizes a spread series, in percentage points.
type SpreadStats struct {
	Mean    float64 `json:"mean_spread"`
	Median  float64 `json:"median_spread"`
	StdDev  float64 `json:"std_spread"`
	Min     float64 `json:"min_spread"`
	Max     float64 `json:"max_spread"`
	Current float64 `json:"current_spread"`
}

// SpreadResult is the joined history of two tenors with the spread taken as
// tenor2 minus tenor1, newest date first.
type SpreadResult struct {
	Tenor1 string        `json:"tenor1"`
	Tenor2 string        `json:"tenor2"`
	Stats  SpreadStats   `json:"stats"`
	Points []SpreadPoint `json:"data"`
}

// joined aligns two tenor histories on their shared dates, newest first, and
// returns the paired percent values.
func (s *Service) joined(ctx context.Context, currency, tenor1, tenor2 string, from, to time.Time) ([]time.Time, []float64, []float64, error) {
	dates1, values1, err := s.series(ctx, currency, tenor1, from, to)
	if err != nil {
		return nil, nil, nil, err
	}
	dates2, values2, err := s.series(ctx, currency, tenor2, from, to)
	if err != nil {
		return nil, nil, nil, err
	}

	byDate := make(map[time.Time]float64, len(dates2))
	for i, d := range dates2 {
		byDate[d] = values2[i]
	}

	dates := make([]time.Time, 0, len(dates1))
	x := make([]float64, 0, len(dates1))
	y := make([]float64, 0, len(dates1))
	for i, d := range dates1 {
		v2, ok := byDate[d]
		if !ok {
			continue
		}
		dates = append(dates, d)
		x = append(x, values1[i])
		y = append(y, v2)
	}
	if len(dates) == 0 {
		return nil, nil, nil, fmt.Errorf("no overlapping dates for %s and %s: %w", tenor1, tenor2, ratestore.ErrNoData)
	}
	return dates, x, y, nil
}

// Spread computes the history and summary of the spread between two tenors
// of one currency. Only dates quoted on both tenors contribute.
func (s *Service) Spread(ctx context.Context, currency, tenor1, tenor2 string, from, to time.Time) (*SpreadResult, error) {
	dates, x, y, err := s.joined(ctx, currency, tenor1, tenor2, from, to)
	if err != nil {
		return nil, fmt.Errorf("Spread: %w", err)
	}

	points := make([]SpreadPoint, len(dates))
	spreads := make([]float64, len(dates))
	for i := range dates {
		spreads[i] = y[i] - x[i]
		points[i] = SpreadPoint{
			Date:   day(dates[i]),
			Rate1:  x[i],
			Rate2:  y[i],
			Spread: spreads[i],
		}
	}

	sorted := append([]float64(nil), spreads...)
	sort.Float64s(sorted)

	res := &SpreadResult{
		Tenor1: tenor1,
		Tenor2: tenor2,
		Points: points,
		Stats: SpreadStats{
			Mean:    stat.Mean(spreads, nil),
			Median:  median(sorted),
			StdDev:  sampleStdDev(spreads),
			Min:     sorted[0],
			Max:     sorted[len(sorted)-1],
			Current: spreads[0],
		},
	}
	return res, nil
}

// CorrelationResult reports the Pearson correlation of two tenor histories
// over their shared dates.
type CorrelationResult struct {
	Correlation float64 `json:"correlation"`
	Tenor1      string  `json:"tenor1"`
	Tenor2      string  `json:"tenor2"`
	Count       int     `json:"count"`
}

// Correlation measures how closely two tenors of one currency move together.
func (s *Service) Correlation(ctx context.Context, currency, tenor1, tenor2 string, from, to time.Time) (*CorrelationResult, error) {
	_, x, y, err := s.joined(ctx, currency, tenor1, tenor2, from, to)
	if err != nil {
		return nil, fmt.Errorf("Correlation: %w", err)
	}
	return &CorrelationResult{
		Correlation: stat.Correlation(x, y, nil),
		Tenor1:      tenor1,
		Tenor2:      tenor2,
		Count:       len(x),
	}, nil
}

// sampleStdDev is the n-1 normalized standard deviation. A single
// observation has no dispersion to measure and reports zero.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	return stat.StdDev(values, nil)
}
