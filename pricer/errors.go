package pricer

import "errors"

var (
	// ErrInvalidCurve is returned when a required curve is missing or has no points.
	ErrInvalidCurve = errors.New("invalid curve")

	// ErrInvalidFrequency is returned when a payment frequency does not evenly divide 12.
	ErrInvalidFrequency = errors.New("invalid frequency")

	// ErrInvalidTenor is returned for a non-positive maturity or a negative start offset.
	ErrInvalidTenor = errors.New("invalid tenor")

	// ErrInvalidPeriod is returned when an accrual period has a non-positive year fraction.
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrNotImplemented marks declared operations that have no pricing algorithm yet.
	ErrNotImplemented = errors.New("not implemented")
)
