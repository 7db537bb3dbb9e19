// Package importer loads swap rate quote files into the rate store.
//
// Two spreadsheet layouts are accepted. The long layout carries one quote per
// row: date, currency, an optional floating rate index, tenor, and rate. The
// wide layout carries one date per row with tenor labels as column headers
// and takes its currency from the caller. Rates quoted in basis points,
// percent, or decimal form are folded into decimals by NormalizeRate.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meenmo/rateedge/ratestore"
)

// ErrBadFormat is returned when a file has no usable header or a column
// layout neither format understands.
var ErrBadFormat = errors.New("unsupported file format")

// maxReportedErrors caps the error list carried back to the caller; the full
// count is still reported.
const maxReportedErrors = 10

// Options steers one import run.
type Options struct {
	// Currency labels every quote of a wide-format file. Defaults to AUD.
	// Long-format files carry their own currency column and ignore it.
	Currency string
	// Source is a provenance tag recorded on every stored rate.
	Source string
}

// Result summarizes an import run. Row-level problems land in Errors without
// stopping the run; Success means at least one quote was written.
type Result struct {
	Success         bool     `json:"success"`
	RecordsImported int      `json:"records_imported"`
	Errors          []string `json:"errors,omitempty"`
	TotalErrors     int      `json:"total_errors"`
	FirstDate       string   `json:"first_date,omitempty"`
	LastDate        string   `json:"last_date,omitempty"`
}

func (r *Result) addError(msg string) {
	r.TotalErrors++
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, msg)
	}
}

// Importer parses quote files and writes them through a rate store.
type Importer struct {
	store ratestore.Store
}

// New returns an Importer writing into store.
func New(store ratestore.Store) *Importer {
	return &Importer{store: store}
}

// Import reads one CSV file, detects its layout, and stores every readable
// quote. Malformed CSV fails the whole run; malformed rows only land in the
// result's error list.
func (imp *Importer) Import(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("Import: read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("Import: empty file: %w", ErrBadFormat)
	}

	if isLongFormat(records[0]) {
		return imp.importLong(ctx, records, opts)
	}
	return imp.importWide(ctx, records, opts)
}

// isLongFormat reports whether the header row looks like the one-quote-per-row
// layout: four or five columns, or explicit currency and tenor headers.
func isLongFormat(header []string) bool {
	if len(header) == 4 || len(header) == 5 {
		return true
	}
	var hasTenor, hasCurrency bool
	for _, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "tenor":
			hasTenor = true
		case "currency":
			hasCurrency = true
		}
	}
	return hasTenor && hasCurrency
}

// NormalizeRate folds the quoting styles seen in practice into a decimal
// rate. Values above 100 are read as basis points, values from 0.1 to 100 as
// percent, and smaller values as decimals already: 450 and 4.50 and 0.045
// all come back 0.045. Decimal quotes of 10% or more cannot be represented;
// they are indistinguishable from percent quotes.
func NormalizeRate(v float64) float64 {
	if v > 100 {
		return v / 10000
	}
	if v >= 0.1 {
		return v / 100
	}
	return v
}

// dateRange accumulates the span of quote dates seen during a run.
type dateRange struct {
	first time.Time
	last  time.Time
}

func (d *dateRange) add(t time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	if d.first.IsZero() || day.Before(d.first) {
		d.first = day
	}
	if day.After(d.last) {
		d.last = day
	}
}

func (d *dateRange) fill(res *Result) {
	if d.first.IsZero() {
		return
	}
	res.FirstDate = d.first.Format("2006-01-02")
	res.LastDate = d.last.Format("2006-01-02")
}

// finish writes the batch and fills the result counters.
func (imp *Importer) finish(ctx context.Context, res *Result, batch []ratestore.SwapRate, span *dateRange) (*Result, error) {
	n, err := imp.store.SaveBatch(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("store import batch: %w", err)
	}
	res.RecordsImported = n
	res.Success = n > 0
	span.fill(res)
	return res, nil
}
