// Package analytics computes descriptive statistics over stored swap rate
// history: summary statistics and period changes per tenor, spreads and
// correlation between tenors, rolling volatility, outlier detection, and
// data-quality gap checks.
//
// All rate values are reported in percent, matching how the desk reads
// quotes, so a stored 0.0435 comes back as 4.35.
package analytics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/meenmo/rateedge/ratestore"
)

// ErrInsufficientData is returned when a series is too short for the
// requested calculation, such as a volatility window longer than the history.
var ErrInsufficientData = errors.New("not enough observations")

// Trading days per year, used to annualize daily volatility.
const tradingDays = 252

// Service runs calculations against a rate store.
type Service struct {
	store ratestore.Store
}

// New returns a Service reading from store.
func New(store ratestore.Store) *Service {
	return &Service{store: store}
}

// series loads the history for one currency and tenor, newest first, with
// rates scaled to percent.
func (s *Service) series(ctx context.Context, currency, tenor string, from, to time.Time) ([]time.Time, []float64, error) {
	rates, err := s.store.Query(ctx, ratestore.Filter{
		Currency: currency,
		Tenor:    tenor,
		From:     from,
		To:       to,
	})
	if err != nil {
		return nil, nil, err
	}
	if len(rates) == 0 {
		return nil, nil, fmt.Errorf("%s %s: %w", currency, tenor, ratestore.ErrNoData)
	}

	dates := make([]time.Time, len(rates))
	values := make([]float64, len(rates))
	for i, r := range rates {
		dates[i] = r.Date
		values[i] = r.Rate * 100
	}
	return dates, values, nil
}

func day(t time.Time) string { return t.Format("2006-01-02") }

// Statistics summarizes one tenor's history. Values are percent; the change
// fields are percentage point moves against fixed observation offsets.
type Statistics struct {
	Count        int     `json:"count"`
	Current      float64 `json:"current"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	Range        float64 `json:"range"`
	Percentile25 float64 `json:"percentile_25"`
	Percentile75 float64 `json:"percentile_75"`
	FirstDate    string  `json:"first_date"`
	LastDate     string  `json:"last_date"`
	Change1D     float64 `json:"change_1d"`
	Change1W     float64 `json:"change_1w"`
	Change1M     float64 `json:"change_1m"`
	Change3M     float64 `json:"change_3m"`
	ChangeYTD    float64 `json:"change_ytd"`
}

// Statistics computes the summary block for a currency and tenor over an
// optional date range. The week, month, and quarter changes step back 5, 21,
// and 63 observations, the trading-day counts for those periods.
func (s *Service) Statistics(ctx context.Context, currency, tenor string, from, to time.Time) (*Statistics, error) {
	dates, values, err := s.series(ctx, currency, tenor, from, to)
	if err != nil {
		return nil, fmt.Errorf("Statistics: %w", err)
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	st := &Statistics{
		Count:        len(values),
		Current:      values[0],
		Mean:         stat.Mean(values, nil),
		Median:       median(sorted),
		StdDev:       stat.PopStdDev(values, nil),
		Min:          sorted[0],
		Max:          sorted[len(sorted)-1],
		Percentile25: stat.Quantile(0.25, stat.LinInterp, sorted, nil),
		Percentile75: stat.Quantile(0.75, stat.LinInterp, sorted, nil),
		FirstDate:    day(dates[len(dates)-1]),
		LastDate:     day(dates[0]),
	}
	st.Range = st.Max - st.Min

	if len(values) >= 2 {
		st.Change1D = values[0] - values[1]
		if len(values) > 5 {
			st.Change1W = values[0] - values[5]
		}
		if len(values) > 21 {
			st.Change1M = values[0] - values[21]
		}
		if len(values) > 63 {
			st.Change3M = values[0] - values[63]
		}
		st.ChangeYTD = ytdChange(dates, values)
	}
	return st, nil
}

// median matches the convention of averaging the two middle observations on
// an even count. The input must already be sorted.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// ytdChange is the move since the oldest observation of the current year.
// Series too short to reach back into the previous year report zero.
func ytdChange(dates []time.Time, values []float64) float64 {
	currentYear := dates[0].Year()
	yearStart := -1
	for i, d := range dates {
		if d.Year() < currentYear {
			yearStart = i - 1
			break
		}
	}
	if yearStart > 0 {
		return values[0] - values[yearStart]
	}
	return 0
}

// Change is one period's move, in percentage points and relative terms.
type Change struct {
	AbsoluteChange float64 `json:"absolute_change"`
	PercentChange  float64 `json:"percent_change"`
	FromDate       string  `json:"from_date"`
	FromRate       float64 `json:"from_rate"`
	ToDate         string  `json:"to_date"`
	ToRate         float64 `json:"to_rate"`
}

// changePeriods maps observation offsets to display names. Offsets are
// trading-day counts.
var changePeriods = []struct {
	offset int
	name   string
}{
	{1, "1 Day"},
	{5, "1 Week"},
	{21, "1 Month"},
	{63, "3 Months"},
	{252, "1 Year"},
}

// Changes reports the rate moves over the standard lookback periods. Periods
// reaching past the stored history are left out.
func (s *Service) Changes(ctx context.Context, currency, tenor string) (map[string]Change, error) {
	dates, values, err := s.series(ctx, currency, tenor, time.Time{}, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("Changes: %w", err)
	}

	current := values[0]
	changes := make(map[string]Change, len(changePeriods))
	for _, p := range changePeriods {
		if len(values) <= p.offset {
			continue
		}
		move := current - values[p.offset]
		pct := 0.0
		if values[p.offset] != 0 {
			pct = move / values[p.offset] * 100
		}
		changes[p.name] = Change{
			AbsoluteChange: move,
			PercentChange:  pct,
			FromDate:       day(dates[p.offset]),
			FromRate:       values[p.offset],
			ToDate:         day(dates[0]),
			ToRate:         current,
		}
	}
	return changes, nil
}
