package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"

	"github.com/meenmo/rateedge/market"
	"github.com/meenmo/rateedge/ratestore"
)

// longRow mirrors one line of the long layout. Every field stays a string so
// a bad cell becomes a row error instead of aborting the whole file.
type longRow struct {
	Date         string `csv:"date"`
	Currency     string `csv:"currency"`
	FloatingRate string `csv:"floating_rate"`
	Tenor        string `csv:"tenor"`
	Rate         string `csv:"rate"`
}

// importLong maps columns by position, the way the files are produced: four
// columns are date, currency, tenor, rate and five columns carry the floating
// rate index between currency and tenor. The file's own header names are
// discarded.
func (imp *Importer) importLong(ctx context.Context, records [][]string, opts Options) (*Result, error) {
	var header []string
	switch width := len(records[0]); width {
	case 5:
		header = []string{"date", "currency", "floating_rate", "tenor", "rate"}
	case 4:
		header = []string{"date", "currency", "tenor", "rate"}
	default:
		return nil, fmt.Errorf("importLong: expected 4 or 5 columns, got %d: %w", width, ErrBadFormat)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(header)
	for _, rec := range records[1:] {
		w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("importLong: %w", err)
	}

	rows := make([]*longRow, 0, len(records)-1)
	if err := gocsv.UnmarshalBytes(buf.Bytes(), &rows); err != nil {
		return nil, fmt.Errorf("importLong: %w", err)
	}

	res := &Result{}
	span := &dateRange{}
	batch := make([]ratestore.SwapRate, 0, len(rows))
	for i, row := range rows {
		if strings.TrimSpace(row.Date) == "" {
			continue
		}
		date, err := dateparse.ParseAny(strings.TrimSpace(row.Date))
		if err != nil {
			res.addError(fmt.Sprintf("row %d: unreadable date %q", i, row.Date))
			continue
		}

		currency := strings.ToUpper(strings.TrimSpace(row.Currency))
		if !market.IsSupported(currency) {
			res.addError(fmt.Sprintf("row %d: unsupported currency %q", i, row.Currency))
			continue
		}

		tenor := strings.ToUpper(strings.TrimSpace(row.Tenor))
		if tenor == "" {
			res.addError(fmt.Sprintf("row %d: missing tenor", i))
			continue
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(row.Rate), 64)
		if err != nil {
			res.addError(fmt.Sprintf("row %d: unreadable rate %q", i, row.Rate))
			continue
		}

		floating := strings.ToUpper(strings.TrimSpace(row.FloatingRate))
		if floating == "" {
			floating = "6M"
		}

		span.add(date)
		batch = append(batch, ratestore.SwapRate{
			Date:         date,
			Currency:     currency,
			Tenor:        tenor,
			FloatingRate: market.FixingReference(currency, floating),
			Rate:         NormalizeRate(value),
			Source:       opts.Source,
		})
	}

	return imp.finish(ctx, res, batch, span)
}
