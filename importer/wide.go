package importer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"

	"github.com/meenmo/rateedge/market"
	"github.com/meenmo/rateedge/ratestore"
)

// importWide reads the one-date-per-row layout: the first column holds the
// quote date and every remaining column header is a tenor label. Empty cells
// mean the tenor was not quoted that day and are skipped without error.
func (imp *Importer) importWide(ctx context.Context, records [][]string, opts Options) (*Result, error) {
	currency := strings.ToUpper(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = "AUD"
	}
	floating := market.FixingReference(currency, "6M")

	tenors := make([]string, 0, len(records[0])-1)
	for _, label := range records[0][1:] {
		tenors = append(tenors, strings.ToUpper(strings.TrimSpace(label)))
	}

	res := &Result{}
	span := &dateRange{}
	batch := make([]ratestore.SwapRate, 0, (len(records)-1)*len(tenors))
	for i, rec := range records[1:] {
		if strings.TrimSpace(rec[0]) == "" {
			continue
		}
		date, err := dateparse.ParseAny(strings.TrimSpace(rec[0]))
		if err != nil {
			res.addError(fmt.Sprintf("row %d: unreadable date %q", i, rec[0]))
			continue
		}

		for j, tenor := range tenors {
			cell := strings.TrimSpace(rec[j+1])
			if cell == "" {
				continue
			}
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				res.addError(fmt.Sprintf("row %d: unreadable rate %q under %s", i, cell, tenor))
				continue
			}

			span.add(date)
			batch = append(batch, ratestore.SwapRate{
				Date:         date,
				Currency:     currency,
				Tenor:        tenor,
				FloatingRate: floating,
				Rate:         NormalizeRate(value),
				Source:       opts.Source,
			})
		}
	}

	return imp.finish(ctx, res, batch, span)
}
