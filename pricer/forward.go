package pricer

import "fmt"

// ImpliedForwardRate derives the simple forward rate over one accrual
// period from two continuously-compounded zero rates.
//
// z0 applies at t0 (years from the valuation date to the period start)
// and z1 at t1 (years to the period end); yearFraction is the period's
// ACT/365F accrual. A period starting at the valuation date (t0 == 0)
// projects at z1 directly, with no discount-factor ratio involved. The
// year fraction must be strictly positive.
func ImpliedForwardRate(z0, t0, z1, t1, yearFraction float64) (float64, error) {
	if yearFraction <= 0 {
		return 0, fmt.Errorf("ImpliedForwardRate: year fraction %.9f must be positive: %w", yearFraction, ErrInvalidPeriod)
	}
	if t0 > 0 {
		return (z1*t1 - z0*t0) / yearFraction, nil
	}
	return z1, nil
}
