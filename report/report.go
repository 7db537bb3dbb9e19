// Package report assembles market summaries for one currency: the latest
// quoted rates, the yield curve they imply, and a detailed look at the key
// benchmark tenors. Reports render to JSON for the API and to CSV for
// spreadsheet handoff.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/meenmo/rateedge/analytics"
	"github.com/meenmo/rateedge/ratestore"
	"github.com/meenmo/rateedge/utils"
)

// historyDays bounds the per-tenor history section.
const historyDays = 365

// maxDetailTenors caps the detailed-analysis section to keep reports
// readable.
const maxDetailTenors = 3

// keyTenorPriority orders the benchmark tenors a detailed analysis should
// prefer.
var keyTenorPriority = []string{"2Y", "5Y", "10Y", "30Y", "1Y", "3Y", "7Y"}

// CurrentRate is one row of the latest-rates table. The CSV header names
// match the table column titles.
type CurrentRate struct {
	Tenor       string  `json:"tenor" csv:"Tenor"`
	RatePercent float64 `json:"rate_percent" csv:"Rate (%)"`
	Date        string  `json:"date" csv:"Date"`
}

// CurvePoint is one pillar of the latest yield curve, shortest tenor first.
type CurvePoint struct {
	Tenor       string  `json:"tenor"`
	TenorMonths int     `json:"tenor_months"`
	RatePercent float64 `json:"rate_percent"`
}

// HistoryPoint is one historical observation, in percent.
type HistoryPoint struct {
	Date        string  `json:"date"`
	RatePercent float64 `json:"rate_percent"`
}

// TenorAnalysis is the detailed section for one benchmark tenor.
type TenorAnalysis struct {
	Tenor      string                `json:"tenor"`
	Statistics *analytics.Statistics `json:"statistics"`
	History    []HistoryPoint        `json:"history"`
}

// MarketReport is a full market summary for one currency.
type MarketReport struct {
	Currency    string          `json:"currency"`
	GeneratedAt string          `json:"generated_at"`
	AsOf        string          `json:"as_of"`
	Rates       []CurrentRate   `json:"current_rates"`
	Curve       []CurvePoint    `json:"yield_curve"`
	Analysis    []TenorAnalysis `json:"tenor_analysis"`
}

// Generator builds market reports from stored rates.
type Generator struct {
	store     ratestore.Store
	analytics *analytics.Service
}

// NewGenerator returns a Generator reading from store.
func NewGenerator(store ratestore.Store, svc *analytics.Service) *Generator {
	return &Generator{store: store, analytics: svc}
}

// MarketReport assembles the report for a currency. A nil tenor list covers
// every stored tenor; otherwise the rates table is filtered to the requested
// ones. The detailed section analyzes up to three benchmark tenors.
func (g *Generator) MarketReport(ctx context.Context, currency string, tenors []string) (*MarketReport, error) {
	latest, err := g.store.Latest(ctx, currency)
	if err != nil {
		return nil, fmt.Errorf("MarketReport: %w", err)
	}
	if len(latest) == 0 {
		return nil, fmt.Errorf("MarketReport: %s: %w", currency, ratestore.ErrNoData)
	}

	if len(tenors) == 0 {
		if tenors, err = g.store.Tenors(ctx, currency); err != nil {
			return nil, fmt.Errorf("MarketReport: %w", err)
		}
	}
	requested := make(map[string]bool, len(tenors))
	for _, t := range tenors {
		requested[t] = true
	}

	rep := &MarketReport{
		Currency:    latest[0].Currency,
		GeneratedAt: time.Now().Format("January 2, 2006 at 15:04"),
		AsOf:        latest[0].Date.Format("2006-01-02"),
		Rates:       make([]CurrentRate, 0, len(latest)),
		Curve:       make([]CurvePoint, 0, len(latest)),
	}
	for _, r := range latest {
		pct := utils.RoundTo(r.Rate*100, 4)
		rep.Curve = append(rep.Curve, CurvePoint{
			Tenor:       r.Tenor,
			TenorMonths: r.TenorMonths,
			RatePercent: pct,
		})
		if !requested[r.Tenor] {
			continue
		}
		rep.Rates = append(rep.Rates, CurrentRate{
			Tenor:       r.Tenor,
			RatePercent: pct,
			Date:        r.Date.Format("2006-01-02"),
		})
	}

	for _, tenor := range keyTenors(tenors) {
		if len(rep.Analysis) == maxDetailTenors {
			break
		}
		section, err := g.analyzeTenor(ctx, rep.Currency, tenor)
		if errors.Is(err, ratestore.ErrNoData) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("MarketReport: %w", err)
		}
		rep.Analysis = append(rep.Analysis, *section)
	}
	return rep, nil
}

func (g *Generator) analyzeTenor(ctx context.Context, currency, tenor string) (*TenorAnalysis, error) {
	stats, err := g.analytics.Statistics(ctx, currency, tenor, time.Time{}, time.Time{})
	if err != nil {
		return nil, err
	}

	from := time.Now().AddDate(0, 0, -historyDays)
	history, err := g.store.Query(ctx, ratestore.Filter{Currency: currency, Tenor: tenor, From: from})
	if err != nil {
		return nil, err
	}

	section := &TenorAnalysis{
		Tenor:      tenor,
		Statistics: stats,
		History:    make([]HistoryPoint, 0, len(history)),
	}
	// History arrives newest first; charts read oldest first.
	for i := len(history) - 1; i >= 0; i-- {
		section.History = append(section.History, HistoryPoint{
			Date:        history[i].Date.Format("2006-01-02"),
			RatePercent: utils.RoundTo(history[i].Rate*100, 4),
		})
	}
	return section, nil
}

// keyTenors orders tenors for detailed analysis, benchmark tenors first.
func keyTenors(tenors []string) []string {
	seen := make(map[string]bool, len(tenors))
	for _, t := range tenors {
		seen[t] = true
	}

	out := make([]string, 0, len(tenors))
	picked := make(map[string]bool, len(tenors))
	for _, t := range keyTenorPriority {
		if seen[t] {
			out = append(out, t)
			picked[t] = true
		}
	}
	for _, t := range tenors {
		if !picked[t] {
			out = append(out, t)
			picked[t] = true
		}
	}
	return out
}

// WriteJSON renders the full report, indented for reading.
func WriteJSON(w io.Writer, rep *MarketReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("WriteJSON: %w", err)
	}
	return nil
}

// WriteCSV renders the latest-rates table, the report section spreadsheets
// consume.
func WriteCSV(w io.Writer, rep *MarketReport) error {
	if err := gocsv.Marshal(&rep.Rates, w); err != nil {
		return fmt.Errorf("WriteCSV: %w", err)
	}
	return nil
}
