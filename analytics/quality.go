package analytics

import (
	"context"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/rateedge/utils"
)

// DefaultVolatilityWindow is the rolling window applied when a request does
// not choose one.
const DefaultVolatilityWindow = 30

// VolatilityPoint is one date's rolling volatility, oldest first in the
// series. Change is the one-day move in percentage points; Annualized scales
// the rolling standard deviation by the square root of 252 trading days.
type VolatilityPoint struct {
	Date       string  `json:"date"`
	Rate       float64 `json:"rate"`
	Change     float64 `json:"rate_change"`
	Volatility float64 `json:"volatility"`
	Annualized float64 `json:"volatility_annualized"`
}

// VolatilitySeries is the rolling volatility of one tenor. Points start at
// the first date with a full window of daily changes behind it.
type VolatilitySeries struct {
	Currency string            `json:"currency"`
	Tenor    string            `json:"tenor"`
	Window   int               `json:"window"`
	Points   []VolatilityPoint `json:"data"`
}

// Volatility computes the rolling standard deviation of daily rate changes.
// The history must hold at least window observations.
func (s *Service) Volatility(ctx context.Context, currency, tenor string, window int, from, to time.Time) (*VolatilitySeries, error) {
	if window < 2 {
		window = DefaultVolatilityWindow
	}

	dates, values, err := s.series(ctx, currency, tenor, from, to)
	if err != nil {
		return nil, fmt.Errorf("Volatility: %w", err)
	}
	if len(values) < window {
		return nil, fmt.Errorf("Volatility: %d observations for a %d day window: %w", len(values), window, ErrInsufficientData)
	}

	// The series arrives newest first; walk it oldest first.
	n := len(values)
	asc := make([]float64, n)
	ascDates := make([]time.Time, n)
	for i := 0; i < n; i++ {
		asc[i] = values[n-1-i]
		ascDates[i] = dates[n-1-i]
	}

	changes := make([]float64, n)
	for i := 1; i < n; i++ {
		changes[i] = asc[i] - asc[i-1]
	}

	series := &VolatilitySeries{
		Currency: currency,
		Tenor:    tenor,
		Window:   window,
		Points:   make([]VolatilityPoint, 0, n),
	}
	for i := window; i < n; i++ {
		vol := sampleStdDev(changes[i-window+1 : i+1])
		series.Points = append(series.Points, VolatilityPoint{
			Date:       day(ascDates[i]),
			Rate:       asc[i],
			Change:     changes[i],
			Volatility: vol,
			Annualized: vol * math.Sqrt(tradingDays),
		})
	}
	return series, nil
}

// Outlier is one observation sitting beyond the z-score threshold.
type Outlier struct {
	Date              string  `json:"date"`
	Rate              float64 `json:"rate"`
	ZScore            float64 `json:"z_score"`
	DeviationFromMean float64 `json:"deviation_from_mean"`
}

// OutlierReport lists the observations flagged against the series mean.
type OutlierReport struct {
	Outliers  []Outlier `json:"outliers"`
	Count     int       `json:"count"`
	Mean      float64   `json:"mean"`
	StdDev    float64   `json:"std"`
	Threshold float64   `json:"threshold"`
}

// Outliers flags observations more than threshold population standard
// deviations from the series mean. A threshold of zero falls back to 3.
func (s *Service) Outliers(ctx context.Context, currency, tenor string, threshold float64, from, to time.Time) (*OutlierReport, error) {
	if threshold <= 0 {
		threshold = 3
	}

	dates, values, err := s.series(ctx, currency, tenor, from, to)
	if err != nil {
		return nil, fmt.Errorf("Outliers: %w", err)
	}

	mean := stat.Mean(values, nil)
	std := stat.PopStdDev(values, nil)

	report := &OutlierReport{
		Outliers:  []Outlier{},
		Mean:      mean,
		StdDev:    std,
		Threshold: threshold,
	}
	if std == 0 {
		return report, nil
	}
	for i, v := range values {
		z := math.Abs(v-mean) / std
		if z > threshold {
			report.Outliers = append(report.Outliers, Outlier{
				Date:              day(dates[i]),
				Rate:              v,
				ZScore:            z,
				DeviationFromMean: v - mean,
			})
		}
	}
	report.Count = len(report.Outliers)
	return report, nil
}

// GapReport lists business days missing between the first and last stored
// date of a series.
type GapReport struct {
	MissingDates []string `json:"missing_dates"`
	Count        int      `json:"count"`
	FirstDate    string   `json:"first_date"`
	LastDate     string   `json:"last_date"`
	TotalDates   int      `json:"total_dates"`
}

// MissingDates scans a tenor's history for weekdays with no stored quote.
// Weekends are expected gaps; holiday calendars are not consulted.
func (s *Service) MissingDates(ctx context.Context, currency, tenor string) (*GapReport, error) {
	dates, _, err := s.series(ctx, currency, tenor, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("MissingDates: %w", err)
	}
	if len(dates) < 2 {
		return nil, fmt.Errorf("MissingDates: %d stored dates: %w", len(dates), ErrInsufficientData)
	}

	sorted := append([]time.Time(nil), dates...)
	utils.SortDates(sorted)

	report := &GapReport{
		MissingDates: []string{},
		FirstDate:    day(sorted[0]),
		LastDate:     day(sorted[len(sorted)-1]),
		TotalDates:   len(sorted),
	}
	for i := 0; i < len(sorted)-1; i++ {
		for d := sorted[i].AddDate(0, 0, 1); d.Before(sorted[i+1]); d = d.AddDate(0, 0, 1) {
			if utils.IsBusinessDay(d) {
				report.MissingDates = append(report.MissingDates, day(d))
			}
		}
	}
	report.Count = len(report.MissingDates)
	return report, nil
}
