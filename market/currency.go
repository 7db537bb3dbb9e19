// Package market carries reference data for the supported swap markets:
// currency metadata, floating-rate fixing references, and tenor label
// handling.
package market

import (
	"sort"
	"strings"
)

// CurrencyInfo describes one supported currency and its floating-rate
// fixing conventions.
type CurrencyInfo struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	FixingRef     string   `json:"fixing_reference"`
	FixingName    string   `json:"fixing_name"`
	Administrator string   `json:"administrator"`
	CommonTenors  []string `json:"common_tenors"`
	// LegacyRef names a superseded reference that may still label
	// historical observations (LIBOR, CDOR).
	LegacyRef string `json:"legacy_reference,omitempty"`
	// AlternativeRef names a coexisting reference for the currency.
	AlternativeRef string `json:"alternative_reference,omitempty"`
	Symbol         string `json:"symbol"`
}

var currencies = map[string]CurrencyInfo{
	"AUD": {
		Code:          "AUD",
		Name:          "Australian Dollar",
		FixingRef:     "BBSW",
		FixingName:    "Bank Bill Swap Rate",
		Administrator: "ASX",
		CommonTenors:  []string{"1M", "2M", "3M", "4M", "5M", "6M"},
		Symbol:        "A$",
	},
	"NZD": {
		Code:          "NZD",
		Name:          "New Zealand Dollar",
		FixingRef:     "BKBM",
		FixingName:    "Bank Bill Benchmark",
		Administrator: "NZFMA",
		CommonTenors:  []string{"1M", "2M", "3M", "4M", "5M", "6M"},
		Symbol:        "NZ$",
	},
	"USD": {
		Code:          "USD",
		Name:          "US Dollar",
		FixingRef:     "SOFR",
		FixingName:    "Secured Overnight Financing Rate",
		Administrator: "Federal Reserve Bank of NY",
		CommonTenors:  []string{"1M", "3M", "6M", "12M"},
		LegacyRef:     "LIBOR",
		Symbol:        "$",
	},
	"EUR": {
		Code:           "EUR",
		Name:           "Euro",
		FixingRef:      "EURIBOR",
		FixingName:     "Euro Interbank Offered Rate",
		Administrator:  "EMMI",
		CommonTenors:   []string{"1W", "1M", "3M", "6M", "12M"},
		AlternativeRef: "ESTR",
		Symbol:         "EUR",
	},
	"GBP": {
		Code:          "GBP",
		Name:          "British Pound",
		FixingRef:     "SONIA",
		FixingName:    "Sterling Overnight Index Average",
		Administrator: "Bank of England",
		CommonTenors:  []string{"1M", "3M", "6M", "12M"},
		LegacyRef:     "LIBOR",
		Symbol:        "GBP",
	},
	"JPY": {
		Code:           "JPY",
		Name:           "Japanese Yen",
		FixingRef:      "TONA",
		FixingName:     "Tokyo Overnight Average Rate",
		Administrator:  "Bank of Japan",
		CommonTenors:   []string{"1M", "3M", "6M", "12M"},
		AlternativeRef: "TIBOR",
		LegacyRef:      "LIBOR",
		Symbol:         "JPY",
	},
	"CAD": {
		Code:          "CAD",
		Name:          "Canadian Dollar",
		FixingRef:     "CORRA",
		FixingName:    "Canadian Overnight Repo Rate Average",
		Administrator: "Bank of Canada",
		CommonTenors:  []string{"1M", "3M", "6M", "12M"},
		LegacyRef:     "CDOR",
		Symbol:        "C$",
	},
}

// Get looks up a currency by code, case-insensitively.
func Get(code string) (CurrencyInfo, bool) {
	info, ok := currencies[strings.ToUpper(strings.TrimSpace(code))]
	return info, ok
}

// IsSupported reports whether the currency code has registered
// conventions.
func IsSupported(code string) bool {
	_, ok := Get(code)
	return ok
}

// Currencies returns all registered currencies sorted by code.
func Currencies() []CurrencyInfo {
	out := make([]CurrencyInfo, 0, len(currencies))
	for _, info := range currencies {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// FixingReference qualifies a bare floating-rate period with the
// currency's fixing reference: ("AUD", "3M") becomes "3M BBSW".
//
// Labels that already carry a reference, including legacy LIBOR and
// TIBOR labels on historical data, come back unchanged, as does any
// label for an unregistered currency.
func FixingReference(currency, floatingRate string) string {
	info, ok := Get(currency)
	if !ok {
		return floatingRate
	}

	if strings.Contains(floatingRate, info.FixingRef) ||
		strings.Contains(floatingRate, "LIBOR") ||
		strings.Contains(floatingRate, "TIBOR") {
		return floatingRate
	}

	period := floatingRate
	if i := strings.IndexByte(floatingRate, ' '); i >= 0 {
		period = floatingRate[:i]
	}
	return period + " " + info.FixingRef
}

// ParseFloatingRate splits a floating-rate label into its period and
// reference parts: "3M BBSW" yields ("3M", "BBSW"); a bare "3M" yields
// ("3M", "").
func ParseFloatingRate(floatingRate string) (period, reference string) {
	parts := strings.Fields(strings.TrimSpace(floatingRate))
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) >= 2 {
		return parts[0], strings.Join(parts[1:], " ")
	}
	return parts[0], ""
}
