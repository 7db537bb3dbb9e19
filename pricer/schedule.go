package pricer

import (
	"fmt"
	"time"

	"github.com/meenmo/rateedge/utils"
)

// Schedule generates the payment dates for one leg between start and end.
//
// The step is 12/frequencyPerYear calendar months, added cumulatively
// with EDATE-style month-end handling, so rolling off a month end stays
// on month ends rather than drifting into the next month. A step landing
// past end is forced to exactly end, which makes the last date always
// equal end. start equal to end yields an empty schedule; zero-length
// swaps are rejected upstream by the valuation entry points.
func Schedule(start, end time.Time, frequencyPerYear int) ([]time.Time, error) {
	if frequencyPerYear <= 0 || 12%frequencyPerYear != 0 {
		return nil, fmt.Errorf("Schedule: frequency %d does not evenly divide 12: %w", frequencyPerYear, ErrInvalidFrequency)
	}
	stepMonths := 12 / frequencyPerYear

	dates := make([]time.Time, 0, 64)
	current := start
	for current.Before(end) {
		current = utils.AddMonth(current, stepMonths)
		if current.After(end) {
			current = end
		}
		dates = append(dates, current)
	}
	return dates, nil
}
