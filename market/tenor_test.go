package market_test

import (
	"sort"
	"testing"

	"github.com/meenmo/rateedge/market"
)

func TestParseTenor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		label string
		want  int
	}{
		{"1M", 1},
		{"6M", 6},
		{"18M", 18},
		{"1Y", 12},
		{"5Y", 60},
		{"30Y", 360},
		{" 10y ", 120},
		{"6m", 6},
		{"10", 120},  // bare labels read as years
		{"1W", 12},   // unknown unit falls back to the digit run
		{"T10", 120}, // digits extracted from mixed labels
	}

	for _, tc := range cases {
		got, err := market.ParseTenor(tc.label)
		if err != nil {
			t.Fatalf("ParseTenor(%q) error: %v", tc.label, err)
		}
		if got != tc.want {
			t.Fatalf("ParseTenor(%q) = %d, want %d", tc.label, got, tc.want)
		}
	}
}

func TestParseTenor_Invalid(t *testing.T) {
	t.Parallel()

	for _, label := range []string{"", "   ", "ON", "spot"} {
		if _, err := market.ParseTenor(label); err == nil {
			t.Fatalf("ParseTenor(%q) should fail", label)
		}
	}
}

func TestTenorMonths_SortsLabels(t *testing.T) {
	t.Parallel()

	labels := []string{"10Y", "6M", "2Y", "18M", "1M", "5Y", "3M"}
	sort.Slice(labels, func(i, j int) bool {
		return market.TenorMonths(labels[i]) < market.TenorMonths(labels[j])
	})

	want := []string{"1M", "3M", "6M", "18M", "2Y", "5Y", "10Y"}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("sorted labels = %v, want %v", labels, want)
		}
	}
}

func TestTenorMonths_UnparseableSortsFirst(t *testing.T) {
	t.Parallel()

	if got := market.TenorMonths("ON"); got != 0 {
		t.Fatalf("TenorMonths(ON) = %d, want 0", got)
	}
}

func TestFormatTenor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		months int
		want   string
	}{
		{1, "1M"},
		{6, "6M"},
		{12, "1Y"},
		{18, "18M"},
		{60, "5Y"},
		{360, "30Y"},
	}
	for _, tc := range cases {
		if got := market.FormatTenor(tc.months); got != tc.want {
			t.Fatalf("FormatTenor(%d) = %q, want %q", tc.months, got, tc.want)
		}
	}
}

func TestParseTenor_RoundTripsFormat(t *testing.T) {
	t.Parallel()

	for _, months := range []int{1, 3, 6, 9, 12, 18, 24, 60, 120, 360} {
		got, err := market.ParseTenor(market.FormatTenor(months))
		if err != nil {
			t.Fatalf("round trip %d: %v", months, err)
		}
		if got != months {
			t.Fatalf("round trip %d came back as %d", months, got)
		}
	}
}
