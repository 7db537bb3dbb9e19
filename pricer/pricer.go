// Package pricer values forward-starting fixed-for-float interest rate
// swaps off zero curves. It covers payment schedule generation, curve
// interpolation, discount factor conventions, implied forward
// projection, and the leg-by-leg valuation that ties them together.
package pricer

import "time"

// Pricer values swaps as of a fixed valuation date.
//
// Accruals use ACT/365F throughout. A Pricer holds no other state and is
// safe for concurrent use; every call receives its own curves and terms,
// and curves are immutable once built.
type Pricer struct {
	ValuationDate time.Time
}

// New returns a Pricer anchored at the given valuation date.
// Any time-of-day component is dropped.
func New(valuationDate time.Time) Pricer {
	y, m, d := valuationDate.Date()
	return Pricer{ValuationDate: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}
