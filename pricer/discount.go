package pricer

import "math"

// Compounding selects the convention used to turn a zero rate and a time
// horizon into a discount factor.
type Compounding string

const (
	// CompoundingContinuous is exp(-r*t). It is also the documented
	// fallback applied to conventions DiscountFactor does not recognize.
	CompoundingContinuous Compounding = "Continuous"
	// CompoundingAnnual is (1+r)^-t.
	CompoundingAnnual Compounding = "Annual"
	// CompoundingSemiAnnual is (1+r/2)^-2t.
	CompoundingSemiAnnual Compounding = "Semi-Annual"
	// CompoundingQuarterly is (1+r/4)^-4t.
	CompoundingQuarterly Compounding = "Quarterly"
)

// DiscountFactor converts a zero rate and a horizon in years into a
// discount factor under the given convention.
//
// A zero horizon returns exactly 1 under every convention. Negative
// rates are legal and produce factors above 1. An unrecognized
// convention discounts continuously instead of failing; callers that
// need strict convention checking should validate before calling.
func DiscountFactor(zeroRate, timeYears float64, compounding Compounding) float64 {
	switch compounding {
	case CompoundingAnnual:
		return 1.0 / math.Pow(1.0+zeroRate, timeYears)
	case CompoundingSemiAnnual:
		return 1.0 / math.Pow(1.0+zeroRate/2.0, 2.0*timeYears)
	case CompoundingQuarterly:
		return 1.0 / math.Pow(1.0+zeroRate/4.0, 4.0*timeYears)
	case CompoundingContinuous:
		return math.Exp(-zeroRate * timeYears)
	default:
		// Unknown conventions fall back to continuous discounting.
		return math.Exp(-zeroRate * timeYears)
	}
}
