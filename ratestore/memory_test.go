package ratestore_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/rateedge/ratestore"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func rate(date, currency, tenor string, value float64) ratestore.SwapRate {
	return ratestore.SwapRate{
		Date:     day(date),
		Currency: currency,
		Tenor:    tenor,
		Rate:     value,
	}
}

func seed(t *testing.T, s *ratestore.MemoryStore, rates ...ratestore.SwapRate) {
	t.Helper()
	n, err := s.SaveBatch(context.Background(), rates)
	if err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if n != len(rates) {
		t.Fatalf("SaveBatch wrote %d records, want %d", n, len(rates))
	}
}

func TestMemoryStoreSaveUpsertsOnKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()

	if err := s.Save(ctx, rate("2025-08-01", "AUD", "5Y", 0.0435)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save(ctx, rate("2025-08-01", "aud", "5y", 0.0441)); err != nil {
		t.Fatalf("Save updated quote: %v", err)
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d after upsert, want 1", n)
	}

	got, err := s.Query(ctx, ratestore.Filter{Currency: "AUD"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Query returned %d rates, want 1", len(got))
	}
	if math.Abs(got[0].Rate-0.0441) > 1e-15 {
		t.Fatalf("Rate = %.6f after upsert, want 0.0441", got[0].Rate)
	}
	if got[0].Currency != "AUD" || got[0].Tenor != "5Y" {
		t.Fatalf("stored key = %s/%s, want normalized AUD/5Y", got[0].Currency, got[0].Tenor)
	}
	if got[0].TenorMonths != 60 {
		t.Fatalf("TenorMonths = %d, want 60", got[0].TenorMonths)
	}
	if got[0].FloatingRate != "6M" {
		t.Fatalf("FloatingRate = %q, want default 6M", got[0].FloatingRate)
	}
}

func TestMemoryStoreSaveRejectsIncompleteRecords(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()

	cases := []struct {
		name string
		r    ratestore.SwapRate
	}{
		{"zero date", ratestore.SwapRate{Currency: "AUD", Tenor: "5Y", Rate: 0.04}},
		{"no currency", rate("2025-08-01", "", "5Y", 0.04)},
		{"no tenor", rate("2025-08-01", "AUD", "", 0.04)},
	}
	for _, tc := range cases {
		if err := s.Save(ctx, tc.r); !errors.Is(err, ratestore.ErrInvalidRecord) {
			t.Fatalf("Save(%s) error = %v, want ErrInvalidRecord", tc.name, err)
		}
	}

	if n, _ := s.Count(ctx); n != 0 {
		t.Fatalf("Count = %d after rejected saves, want 0", n)
	}
}

func TestMemoryStoreQueryFiltersAndOrders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()
	seed(t, s,
		rate("2025-07-31", "AUD", "1Y", 0.0405),
		rate("2025-07-31", "AUD", "10Y", 0.0452),
		rate("2025-08-01", "AUD", "10Y", 0.0455),
		rate("2025-08-01", "AUD", "1Y", 0.0407),
		rate("2025-08-01", "AUD", "6M", 0.0398),
		rate("2025-08-01", "USD", "1Y", 0.0388),
	)

	all, err := s.Query(ctx, ratestore.Filter{Currency: "AUD"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("Query(AUD) returned %d rates, want 5", len(all))
	}
	wantOrder := []string{"6M", "1Y", "10Y", "1Y", "10Y"}
	for i, w := range wantOrder {
		if all[i].Tenor != w {
			t.Fatalf("row %d tenor = %s, want %s (newest date first, short tenors first)", i, all[i].Tenor, w)
		}
	}
	if !all[0].Date.Equal(day("2025-08-01")) || !all[4].Date.Equal(day("2025-07-31")) {
		t.Fatalf("rows not ordered newest first: %v ... %v", all[0].Date, all[4].Date)
	}

	tenY, err := s.Query(ctx, ratestore.Filter{Currency: "AUD", Tenor: "10Y"})
	if err != nil {
		t.Fatalf("Query tenor: %v", err)
	}
	if len(tenY) != 2 || tenY[0].Rate != 0.0455 || tenY[1].Rate != 0.0452 {
		t.Fatalf("Query(AUD,10Y) = %+v, want the two 10Y quotes newest first", tenY)
	}

	ranged, err := s.Query(ctx, ratestore.Filter{From: day("2025-08-01"), To: day("2025-08-01")})
	if err != nil {
		t.Fatalf("Query range: %v", err)
	}
	if len(ranged) != 4 {
		t.Fatalf("Query(range 08-01) returned %d rates, want 4", len(ranged))
	}

	limited, err := s.Query(ctx, ratestore.Filter{Currency: "AUD", Limit: 2})
	if err != nil {
		t.Fatalf("Query limit: %v", err)
	}
	if len(limited) != 2 || limited[0].Tenor != "6M" || limited[1].Tenor != "1Y" {
		t.Fatalf("Query(limit 2) = %+v, want first two rows of the ordered listing", limited)
	}
}

func TestMemoryStoreLatestTracksEachCurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()
	seed(t, s,
		rate("2025-08-01", "AUD", "10Y", 0.0452),
		rate("2025-08-01", "AUD", "1Y", 0.0405),
		rate("2025-08-01", "AUD", "5Y", 0.0435),
		rate("2025-08-02", "USD", "5Y", 0.0390),
	)

	aud, err := s.Latest(ctx, "AUD")
	if err != nil {
		t.Fatalf("Latest(AUD): %v", err)
	}
	if len(aud) != 3 {
		t.Fatalf("Latest(AUD) returned %d rates, want 3", len(aud))
	}
	for i, want := range []string{"1Y", "5Y", "10Y"} {
		if aud[i].Tenor != want {
			t.Fatalf("Latest(AUD)[%d].Tenor = %s, want %s", i, aud[i].Tenor, want)
		}
		if !aud[i].Date.Equal(day("2025-08-01")) {
			t.Fatalf("Latest(AUD)[%d].Date = %v, want the AUD latest 2025-08-01", i, aud[i].Date)
		}
	}

	// The global view keys off the newest date across all markets.
	global, err := s.Latest(ctx, "")
	if err != nil {
		t.Fatalf("Latest(): %v", err)
	}
	if len(global) != 1 || global[0].Currency != "USD" {
		t.Fatalf("Latest() = %+v, want only the 2025-08-02 USD quote", global)
	}

	none, err := s.Latest(ctx, "CHF")
	if err != nil {
		t.Fatalf("Latest(CHF): %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("Latest(CHF) returned %d rates, want 0", len(none))
	}
}

func TestMemoryStoreLatestDate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()
	seed(t, s,
		rate("2025-07-31", "AUD", "5Y", 0.0433),
		rate("2025-08-01", "AUD", "5Y", 0.0435),
	)

	got, err := s.LatestDate(ctx, "AUD")
	if err != nil {
		t.Fatalf("LatestDate: %v", err)
	}
	if !got.Equal(day("2025-08-01")) {
		t.Fatalf("LatestDate = %v, want 2025-08-01", got)
	}

	if _, err := s.LatestDate(ctx, "CHF"); !errors.Is(err, ratestore.ErrNoData) {
		t.Fatalf("LatestDate(CHF) error = %v, want ErrNoData", err)
	}
}

func TestMemoryStoreCurrenciesAndTenors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()
	seed(t, s,
		rate("2025-08-01", "USD", "2Y", 0.0370),
		rate("2025-08-01", "AUD", "18M", 0.0412),
		rate("2025-08-01", "AUD", "10Y", 0.0452),
		rate("2025-08-01", "AUD", "6M", 0.0398),
		rate("2025-08-01", "AUD", "2Y", 0.0418),
		rate("2025-08-01", "EUR", "2Y", 0.0255),
	)

	currencies, err := s.Currencies(ctx)
	if err != nil {
		t.Fatalf("Currencies: %v", err)
	}
	want := []string{"AUD", "EUR", "USD"}
	if len(currencies) != len(want) {
		t.Fatalf("Currencies = %v, want %v", currencies, want)
	}
	for i := range want {
		if currencies[i] != want[i] {
			t.Fatalf("Currencies = %v, want %v", currencies, want)
		}
	}

	tenors, err := s.Tenors(ctx, "AUD")
	if err != nil {
		t.Fatalf("Tenors: %v", err)
	}
	wantTenors := []string{"6M", "18M", "2Y", "10Y"}
	if len(tenors) != len(wantTenors) {
		t.Fatalf("Tenors(AUD) = %v, want %v", tenors, wantTenors)
	}
	for i := range wantTenors {
		if tenors[i] != wantTenors[i] {
			t.Fatalf("Tenors(AUD) = %v, want numeric order %v", tenors, wantTenors)
		}
	}
}

func TestMemoryStoreDates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()
	seed(t, s,
		rate("2025-07-30", "AUD", "5Y", 0.0431),
		rate("2025-07-30", "AUD", "10Y", 0.0449),
		rate("2025-08-01", "AUD", "5Y", 0.0435),
		rate("2025-07-31", "USD", "5Y", 0.0389),
	)

	dates, err := s.Dates(ctx, "AUD")
	if err != nil {
		t.Fatalf("Dates: %v", err)
	}
	want := []string{"2025-08-01", "2025-07-30"}
	if len(dates) != len(want) {
		t.Fatalf("Dates(AUD) = %v, want %d distinct dates", dates, len(want))
	}
	for i, w := range want {
		if !dates[i].Equal(day(w)) {
			t.Fatalf("Dates(AUD)[%d] = %v, want %s (newest first)", i, dates[i], w)
		}
	}

	all, err := s.Dates(ctx, "")
	if err != nil {
		t.Fatalf("Dates: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Dates() returned %d dates, want 3", len(all))
	}
}

func TestMemoryStoreDeleteByDate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := ratestore.NewMemoryStore()
	seed(t, s,
		rate("2025-07-30", "AUD", "5Y", 0.0431),
		rate("2025-07-31", "AUD", "5Y", 0.0433),
		rate("2025-08-01", "AUD", "5Y", 0.0435),
		rate("2025-07-31", "USD", "5Y", 0.0389),
	)

	deleted, err := s.DeleteByDate(ctx, "AUD", day("2025-07-30"), day("2025-07-31"))
	if err != nil {
		t.Fatalf("DeleteByDate: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("DeleteByDate removed %d rows, want 2", deleted)
	}

	left, err := s.Query(ctx, ratestore.Filter{})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("%d rows left after delete, want 2", len(left))
	}
	for _, r := range left {
		if r.Currency == "AUD" && r.Date.Before(day("2025-08-01")) {
			t.Fatalf("deleted row still present: %+v", r)
		}
	}
}

func TestCurveInput(t *testing.T) {
	t.Parallel()

	rates := []ratestore.SwapRate{
		rate("2025-08-01", "AUD", "6M", 0.0398),
		rate("2025-08-01", "AUD", "1Y", 0.0407),
		rate("2025-08-01", "AUD", "5Y", 0.0435),
		rate("2025-08-01", "AUD", "??", 0.0999),
	}

	curve := ratestore.CurveInput(rates)
	want := map[int]float64{6: 0.0398, 12: 0.0407, 60: 0.0435}
	if len(curve) != len(want) {
		t.Fatalf("CurveInput = %v, want %v (unparseable tenor skipped)", curve, want)
	}
	for months, wantRate := range want {
		if got, ok := curve[months]; !ok || math.Abs(got-wantRate) > 1e-15 {
			t.Fatalf("CurveInput[%d] = %v, want %v", months, got, wantRate)
		}
	}
}

func TestNopCache(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var c ratestore.Cache = ratestore.NopCache{}

	c.Set(ctx, ratestore.LatestKey("aud"), []ratestore.SwapRate{rate("2025-08-01", "AUD", "5Y", 0.0435)})
	if _, ok := c.Get(ctx, ratestore.LatestKey("aud")); ok {
		t.Fatal("NopCache.Get reported a hit")
	}
	c.Invalidate(ctx, ratestore.LatestKey("aud"))
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if got, want := ratestore.LatestKey(" aud "), "rates:latest:AUD"; got != want {
		t.Fatalf("LatestKey = %q, want %q", got, want)
	}
}
