// Package ratestore persists quoted par swap rates and serves them back to
// the pricing, analytics, and reporting layers.
//
// Two Store implementations ship with the package: PostgresStore for
// deployments and MemoryStore for tests and single-process use. A Redis-backed
// side cache (Cache) can sit in front of either for hot read paths.
package ratestore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/meenmo/rateedge/market"
)

// ErrInvalidRecord is returned when a rate is missing one of its key fields.
var ErrInvalidRecord = errors.New("invalid rate record")

// ErrNoData is returned by lookups against an empty store or an empty slice
// of the store, such as the latest date for a currency with no rows.
var ErrNoData = errors.New("no rates stored")

// defaultFloatingRate mirrors the storage default applied when an import
// carries no floating rate index of its own.
const defaultFloatingRate = "6M"

// SwapRate is one quoted par swap rate: a currency, a tenor label such as
// "5Y", the floating rate index the quote fixes against, and the rate as a
// decimal (0.0435 for 4.35%).
type SwapRate struct {
	ID           int64     `json:"id"`
	Date         time.Time `json:"date"`
	Currency     string    `json:"currency"`
	Tenor        string    `json:"tenor"`
	TenorMonths  int       `json:"tenor_months"`
	FloatingRate string    `json:"floating_rate"`
	Rate         float64   `json:"rate"`
	Source       string    `json:"source,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filter narrows a Query. Zero values mean "no constraint"; Limit 0 returns
// every match.
type Filter struct {
	Currency     string
	Tenor        string
	FloatingRate string
	From         time.Time
	To           time.Time
	Limit        int
}

// Store is the persistence contract shared by the Postgres and in-memory
// implementations. A rate is identified by (date, currency, tenor, floating
// rate); writes upsert on that key. Query results come back ordered by date
// descending, then tenor length ascending.
type Store interface {
	Save(ctx context.Context, rate SwapRate) error
	SaveBatch(ctx context.Context, rates []SwapRate) (int, error)
	Query(ctx context.Context, f Filter) ([]SwapRate, error)
	Latest(ctx context.Context, currency string) ([]SwapRate, error)
	LatestDate(ctx context.Context, currency string) (time.Time, error)
	Currencies(ctx context.Context) ([]string, error)
	Tenors(ctx context.Context, currency string) ([]string, error)
	Dates(ctx context.Context, currency string) ([]time.Time, error)
	DeleteByDate(ctx context.Context, currency string, from, to time.Time) (int, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// withDefaults normalizes key fields and fills derived ones before a write.
func withDefaults(r SwapRate) SwapRate {
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	r.Tenor = strings.ToUpper(strings.TrimSpace(r.Tenor))
	r.FloatingRate = strings.TrimSpace(r.FloatingRate)
	if r.FloatingRate == "" {
		r.FloatingRate = defaultFloatingRate
	}
	if r.TenorMonths == 0 {
		r.TenorMonths = market.TenorMonths(r.Tenor)
	}
	r.Date = dateOnly(r.Date)
	return r
}

func validate(r SwapRate) error {
	if r.Date.IsZero() {
		return fmt.Errorf("date is required: %w", ErrInvalidRecord)
	}
	if r.Currency == "" {
		return fmt.Errorf("currency is required: %w", ErrInvalidRecord)
	}
	if r.Tenor == "" {
		return fmt.Errorf("tenor is required: %w", ErrInvalidRecord)
	}
	return nil
}

// dateOnly drops the time of day so quote dates compare as calendar days.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// normalizeCode uppercases a currency or tenor filter the same way the write
// path normalizes stored values.
func normalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// SortByTenor orders rates in place from the shortest tenor to the longest,
// the order curve construction and report columns expect.
func SortByTenor(rates []SwapRate) {
	sort.SliceStable(rates, func(i, j int) bool {
		return rates[i].TenorMonths < rates[j].TenorMonths
	})
}

// sortForQuery applies the store-wide listing order: newest date first, then
// shortest tenor first within a date.
func sortForQuery(rates []SwapRate) {
	sort.SliceStable(rates, func(i, j int) bool {
		if !rates[i].Date.Equal(rates[j].Date) {
			return rates[i].Date.After(rates[j].Date)
		}
		return rates[i].TenorMonths < rates[j].TenorMonths
	})
}

// CurveInput converts a set of rates for a single date into the tenor-to-rate
// map accepted by pricer.NewZeroCurve. Rates whose tenor could not be parsed
// are skipped; when two rates share a tenor the later entry wins.
func CurveInput(rates []SwapRate) map[int]float64 {
	curve := make(map[int]float64, len(rates))
	for _, r := range rates {
		months := r.TenorMonths
		if months == 0 {
			months = market.TenorMonths(r.Tenor)
		}
		if months <= 0 {
			continue
		}
		curve[months] = r.Rate
	}
	return curve
}
