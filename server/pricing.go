package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meenmo/rateedge/market"
	"github.com/meenmo/rateedge/pricer"
	"github.com/meenmo/rateedge/ratestore"
)

// defaultNotional applies when a pricing request omits the notional.
const defaultNotional = 10_000_000.0

// swapRequest carries the terms of a forward-starting swap plus either
// inline zero curve points keyed by tenor label, or a currency whose
// latest stored snapshot backs the valuation. Rates are decimals;
// spreads and adjustments are in basis points.
type swapRequest struct {
	Currency          string             `json:"currency"`
	Curve             map[string]float64 `json:"curve"`
	DiscountCurve     map[string]float64 `json:"discount_curve"`
	ValuationDate     string             `json:"valuation_date"`
	StartOffsetMonths int                `json:"start_offset_months"`
	MaturityYears     int                `json:"maturity_years"`
	FixedRate         float64            `json:"fixed_rate"`
	Notional          float64            `json:"notional"`
	FixedFrequency    int                `json:"fixed_frequency"`
	FloatFrequency    int                `json:"float_frequency"`
	FloatIndexMonths  int                `json:"float_index_months"`
	FixedSpreadBP     float64            `json:"fixed_spread_bp"`
	FloatMarginBP     float64            `json:"float_margin_bp"`
	ConvexityFixedBP  float64            `json:"convexity_fixed_bp"`
	ConvexityFloatBP  float64            `json:"convexity_float_bp"`
	UseOISDiscounting bool               `json:"use_ois_discounting"`
}

// applyDefaults fills the request's desk conventions: semi-annual fixed
// against quarterly float on a 10M notional.
func (r *swapRequest) applyDefaults() {
	if r.Notional == 0 {
		r.Notional = defaultNotional
	}
	if r.FixedFrequency == 0 {
		r.FixedFrequency = 2
	}
	if r.FloatFrequency == 0 {
		r.FloatFrequency = 4
	}
}

// curveFromLabels converts {"5Y": 0.0435} style points into a curve.
func curveFromLabels(points map[string]float64) (*pricer.ZeroCurve, error) {
	input := make(map[int]float64, len(points))
	for label, rate := range points {
		months, err := market.ParseTenor(label)
		if err != nil {
			return nil, fmt.Errorf("curve tenor %q: %w", label, pricer.ErrInvalidCurve)
		}
		input[months] = rate
	}
	return pricer.NewZeroCurve(input)
}

// resolveCurve builds the projection curve from the inline points, or
// from the currency's latest stored snapshot.
func (s *Server) resolveCurve(ctx context.Context, req swapRequest) (*pricer.ZeroCurve, error) {
	if len(req.Curve) > 0 {
		return curveFromLabels(req.Curve)
	}
	if req.Currency == "" {
		return nil, fmt.Errorf("either curve points or a currency is required: %w", pricer.ErrInvalidCurve)
	}

	rates, err := s.latestCurve(ctx, req.Currency)
	if err != nil {
		return nil, err
	}
	if len(rates) == 0 {
		return nil, fmt.Errorf("no stored rates for %q: %w", req.Currency, ratestore.ErrNoData)
	}
	return pricer.NewZeroCurve(ratestore.CurveInput(rates))
}

// valueSwap binds and prices a swap request, writing the error response
// itself when anything fails.
func (s *Server) valueSwap(c *gin.Context) (*pricer.ValuationResult, bool) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return nil, false
	}
	req.applyDefaults()

	valuation := time.Now().UTC()
	if req.ValuationDate != "" {
		d, err := parseDay(req.ValuationDate)
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("invalid valuation_date %q, want YYYY-MM-DD", req.ValuationDate))
			return nil, false
		}
		valuation = d
	}

	projection, err := s.resolveCurve(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	var discount *pricer.ZeroCurve
	if len(req.DiscountCurve) > 0 {
		if discount, err = curveFromLabels(req.DiscountCurve); err != nil {
			respondError(c, err)
			return nil, false
		}
	}

	result, err := pricer.New(valuation).PriceForwardSwap(pricer.ForwardSwapParams{
		StartOffsetMonths: req.StartOffsetMonths,
		MaturityYears:     req.MaturityYears,
		FixedRate:         req.FixedRate,
		Notional:          req.Notional,
		Projection:        projection,
		Discount:          discount,
		UseOISDiscounting: req.UseOISDiscounting,
		FixedFrequency:    req.FixedFrequency,
		FloatFrequency:    req.FloatFrequency,
		FloatIndexMonths:  req.FloatIndexMonths,
		FixedSpreadBP:     req.FixedSpreadBP,
		FloatMarginBP:     req.FloatMarginBP,
		ConvexityFixedBP:  req.ConvexityFixedBP,
		ConvexityFloatBP:  req.ConvexityFloatBP,
	})
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return result, true
}

func (s *Server) priceSwap(c *gin.Context) {
	res, ok := s.valueSwap(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}

func (s *Server) priceParRate(c *gin.Context) {
	res, ok := s.valueSwap(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"par_rate":         res.ParRate,
		"par_rate_percent": res.ParRatePercent,
		"start_date":       res.StartDate,
		"end_date":         res.EndDate,
	}})
}

// basisRequest mirrors swapRequest for a float-for-float tenor basis
// swap between two fixing tenors of the same index.
type basisRequest struct {
	Currency          string             `json:"currency"`
	Curve             map[string]float64 `json:"curve"`
	ValuationDate     string             `json:"valuation_date"`
	StartOffsetMonths int                `json:"start_offset_months"`
	MaturityYears     int                `json:"maturity_years"`
	Notional          float64            `json:"notional"`
	LegATenorMonths   int                `json:"leg_a_tenor_months"`
	LegBTenorMonths   int                `json:"leg_b_tenor_months"`
	LegAMarginBP      float64            `json:"leg_a_margin_bp"`
	LegBMarginBP      float64            `json:"leg_b_margin_bp"`
}

func (s *Server) priceBasis(c *gin.Context) {
	var req basisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	valuation := time.Now().UTC()
	if req.ValuationDate != "" {
		d, err := parseDay(req.ValuationDate)
		if err != nil {
			respondBadRequest(c, fmt.Sprintf("invalid valuation_date %q, want YYYY-MM-DD", req.ValuationDate))
			return
		}
		valuation = d
	}
	projection, err := s.resolveCurve(c.Request.Context(), swapRequest{Currency: req.Currency, Curve: req.Curve})
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := pricer.New(valuation).PriceTenorBasisSwap(pricer.TenorBasisSwapParams{
		StartOffsetMonths: req.StartOffsetMonths,
		MaturityYears:     req.MaturityYears,
		LegATenorMonths:   req.LegATenorMonths,
		LegBTenorMonths:   req.LegBTenorMonths,
		Notional:          req.Notional,
		Projection:        projection,
		LegAMarginBP:      req.LegAMarginBP,
		LegBMarginBP:      req.LegBMarginBP,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}
