package pricer

import (
	"fmt"
	"time"

	"github.com/meenmo/rateedge/utils"
)

// ForwardSwapParams defines a forward-starting fixed-for-float swap to be
// valued against zero curves.
//
// Rates are decimals (0.0450 == 4.50%); spreads and adjustments are
// quoted in basis points and converted to decimals internally.
// Projection is required. Discount participates only when
// UseOISDiscounting is set and the curve has at least one pillar;
// otherwise cash flows discount off Projection.
type ForwardSwapParams struct {
	// StartOffsetMonths is the forward start in calendar months from the
	// valuation date. Zero starts the swap at the valuation date.
	StartOffsetMonths int
	// MaturityYears is the swap length in years from the start date.
	MaturityYears int

	FixedRate float64
	Notional  float64

	Projection        *ZeroCurve
	Discount          *ZeroCurve
	UseOISDiscounting bool

	// FixedFrequency and FloatFrequency are payments per year; each must
	// evenly divide 12. The legs need not share payment dates.
	FixedFrequency int
	FloatFrequency int

	// FloatIndexMonths labels the floating index tenor (3 == a 3M
	// fixing). It does not alter period generation, which follows
	// FloatFrequency.
	FloatIndexMonths int

	FixedSpreadBP    float64
	FloatMarginBP    float64
	ConvexityFixedBP float64
	ConvexityFloatBP float64
}

// CashflowRecord is one accrual period of a swap leg.
//
// Rate is the period's headline rate: fixed rate plus spread on the
// fixed leg, the raw implied forward on the floating leg. Convexity
// adjustments participate in Cashflow but are not echoed in Rate.
type CashflowRecord struct {
	AccrualStart   time.Time `json:"accrual_start"`
	PayDate        time.Time `json:"pay_date"`
	YearFraction   float64   `json:"year_fraction"`
	Rate           float64   `json:"rate"`
	Cashflow       float64   `json:"cash_flow"`
	DiscountFactor float64   `json:"discount_factor"`
	PresentValue   float64   `json:"pv"`
}

// ValuationResult aggregates both legs of a priced swap.
//
// SwapValue is quoted receiver-of-fixed: fixed leg PV minus float leg
// PV. ParRate is the fixed rate that would have zeroed the swap value
// against the same float leg, or 0 when the fixed annuity is empty.
type ValuationResult struct {
	SwapValue      float64          `json:"swap_value"`
	FixedLegPV     float64          `json:"fixed_leg_pv"`
	FloatLegPV     float64          `json:"float_leg_pv"`
	ParRate        float64          `json:"par_rate"`
	ParRatePercent float64          `json:"par_rate_percent"`
	FixedLeg       []CashflowRecord `json:"fixed_leg_details"`
	FloatLeg       []CashflowRecord `json:"float_leg_details"`
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
}

// PriceForwardSwap values a forward-starting swap as of the pricer's
// valuation date.
//
// The start date is the valuation date plus StartOffsetMonths; the end
// date is the start plus MaturityYears, both via calendar-month
// arithmetic. Each leg gets its own schedule. Zero rates are read off
// the curves at the period's fractional tenor in months and cash flows
// discount continuously off the resolved discount curve. All validation
// failures surface before any computation; no partial results are
// returned.
func (p Pricer) PriceForwardSwap(params ForwardSwapParams) (*ValuationResult, error) {
	if params.Projection == nil || params.Projection.Len() == 0 {
		return nil, fmt.Errorf("PriceForwardSwap: projection curve is required: %w", ErrInvalidCurve)
	}
	if params.MaturityYears <= 0 {
		return nil, fmt.Errorf("PriceForwardSwap: maturity %dY must be positive: %w", params.MaturityYears, ErrInvalidTenor)
	}
	if params.StartOffsetMonths < 0 {
		return nil, fmt.Errorf("PriceForwardSwap: start offset %dM is negative: %w", params.StartOffsetMonths, ErrInvalidTenor)
	}

	// A discount curve with no pillars counts as not supplied.
	disc := params.Projection
	if params.UseOISDiscounting && params.Discount != nil && params.Discount.Len() > 0 {
		disc = params.Discount
	}

	fixedSpread := params.FixedSpreadBP * 1e-4
	floatMargin := params.FloatMarginBP * 1e-4
	convFixed := params.ConvexityFixedBP * 1e-4
	convFloat := params.ConvexityFloatBP * 1e-4

	start := utils.AddMonth(p.ValuationDate, params.StartOffsetMonths)
	end := utils.AddMonth(start, 12*params.MaturityYears)

	fixedSchedule, err := Schedule(start, end, params.FixedFrequency)
	if err != nil {
		return nil, fmt.Errorf("PriceForwardSwap: fixed leg: %w", err)
	}
	floatSchedule, err := Schedule(start, end, params.FloatFrequency)
	if err != nil {
		return nil, fmt.Errorf("PriceForwardSwap: float leg: %w", err)
	}

	fixedPV := 0.0
	annuity := 0.0
	fixedLeg := make([]CashflowRecord, 0, len(fixedSchedule))

	prev := start
	for _, payDate := range fixedSchedule {
		yf := utils.Days(prev, payDate) / 365.0
		timeToPayment := utils.Days(p.ValuationDate, payDate) / 365.0

		zero := disc.RateAt(timeToPayment * 12)
		df := DiscountFactor(zero, timeToPayment, CompoundingContinuous)

		cashflow := params.Notional * (params.FixedRate + fixedSpread + convFixed) * yf
		pv := cashflow * df

		fixedPV += pv
		annuity += df * yf
		fixedLeg = append(fixedLeg, CashflowRecord{
			AccrualStart:   prev,
			PayDate:        payDate,
			YearFraction:   yf,
			Rate:           params.FixedRate + fixedSpread,
			Cashflow:       cashflow,
			DiscountFactor: df,
			PresentValue:   pv,
		})
		prev = payDate
	}

	floatPV := 0.0
	floatLeg := make([]CashflowRecord, 0, len(floatSchedule))

	prev = start
	for _, payDate := range floatSchedule {
		yf := utils.Days(prev, payDate) / 365.0
		timeToStart := utils.Days(p.ValuationDate, prev) / 365.0
		timeToEnd := utils.Days(p.ValuationDate, payDate) / 365.0

		forward, err := ImpliedForwardRate(
			params.Projection.RateAt(timeToStart*12), timeToStart,
			params.Projection.RateAt(timeToEnd*12), timeToEnd,
			yf,
		)
		if err != nil {
			return nil, fmt.Errorf("PriceForwardSwap: float period ending %s: %w", payDate.Format("2006-01-02"), err)
		}

		df := DiscountFactor(disc.RateAt(timeToEnd*12), timeToEnd, CompoundingContinuous)

		cashflow := params.Notional * (forward + floatMargin + convFloat) * yf
		pv := cashflow * df

		floatPV += pv
		floatLeg = append(floatLeg, CashflowRecord{
			AccrualStart:   prev,
			PayDate:        payDate,
			YearFraction:   yf,
			Rate:           forward,
			Cashflow:       cashflow,
			DiscountFactor: df,
			PresentValue:   pv,
		})
		prev = payDate
	}

	parRate := 0.0
	if annuity > 0 {
		parRate = floatPV / (params.Notional * annuity)
	}

	return &ValuationResult{
		SwapValue:      fixedPV - floatPV,
		FixedLegPV:     fixedPV,
		FloatLegPV:     floatPV,
		ParRate:        parRate,
		ParRatePercent: parRate * 100,
		FixedLeg:       fixedLeg,
		FloatLeg:       floatLeg,
		StartDate:      start,
		EndDate:        end,
	}, nil
}

// TenorBasisSwapParams describes a float-for-float swap between two
// fixing tenors of the same index (for example 3M vs 6M).
type TenorBasisSwapParams struct {
	StartOffsetMonths int
	MaturityYears     int
	LegATenorMonths   int
	LegBTenorMonths   int
	Notional          float64
	Projection        *ZeroCurve
	Discount          *ZeroCurve
	LegAMarginBP      float64
	LegBMarginBP      float64
	UseOISDiscounting bool
}

// PriceTenorBasisSwap is the declared entry point for tenor basis swaps
// (two floating legs, solving for the par basis spread). No pricing
// algorithm exists for it yet; it always returns ErrNotImplemented so a
// caller cannot mistake the gap for a zero basis.
func (p Pricer) PriceTenorBasisSwap(params TenorBasisSwapParams) (*ValuationResult, error) {
	return nil, fmt.Errorf("PriceTenorBasisSwap: tenor basis solving: %w", ErrNotImplemented)
}
