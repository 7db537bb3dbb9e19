package ratestore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps rates in a mutex-guarded slice. It backs tests and
// single-process runs where no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	rates  []SwapRate
	nextID int64
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{nextID: 1}
}

func sameKey(a, b SwapRate) bool {
	return a.Date.Equal(b.Date) &&
		a.Currency == b.Currency &&
		a.Tenor == b.Tenor &&
		a.FloatingRate == b.FloatingRate
}

// Save inserts the rate, or updates the stored rate sharing its
// (date, currency, tenor, floating rate) key.
func (s *MemoryStore) Save(ctx context.Context, rate SwapRate) error {
	rate = withDefaults(rate)
	if err := validate(rate); err != nil {
		return fmt.Errorf("Save: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(rate)
}

func (s *MemoryStore) saveLocked(rate SwapRate) error {
	now := time.Now().UTC()
	for i := range s.rates {
		if sameKey(s.rates[i], rate) {
			s.rates[i].Rate = rate.Rate
			s.rates[i].TenorMonths = rate.TenorMonths
			s.rates[i].Source = rate.Source
			s.rates[i].UpdatedAt = now
			return nil
		}
	}
	rate.ID = s.nextID
	s.nextID++
	rate.CreatedAt = now
	rate.UpdatedAt = now
	s.rates = append(s.rates, rate)
	return nil
}

// SaveBatch upserts every rate under one lock and reports how many were
// written. The first invalid record aborts the batch.
func (s *MemoryStore) SaveBatch(ctx context.Context, rates []SwapRate) (int, error) {
	prepared := make([]SwapRate, 0, len(rates))
	for i, r := range rates {
		r = withDefaults(r)
		if err := validate(r); err != nil {
			return 0, fmt.Errorf("SaveBatch: record %d: %w", i, err)
		}
		prepared = append(prepared, r)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range prepared {
		if err := s.saveLocked(r); err != nil {
			return 0, fmt.Errorf("SaveBatch: %w", err)
		}
	}
	return len(prepared), nil
}

func matches(r SwapRate, f Filter) bool {
	if f.Currency != "" && r.Currency != f.Currency {
		return false
	}
	if f.Tenor != "" && r.Tenor != f.Tenor {
		return false
	}
	if f.FloatingRate != "" && r.FloatingRate != f.FloatingRate {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(dateOnly(f.From)) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(dateOnly(f.To)) {
		return false
	}
	return true
}

// Query returns the rates matching the filter, newest date first and
// shortest tenor first within a date.
func (s *MemoryStore) Query(ctx context.Context, f Filter) ([]SwapRate, error) {
	f.Currency = normalizeCode(f.Currency)
	f.Tenor = normalizeCode(f.Tenor)

	s.mu.RLock()
	out := make([]SwapRate, 0, len(s.rates))
	for _, r := range s.rates {
		if matches(r, f) {
			out = append(out, r)
		}
	}
	s.mu.RUnlock()

	sortForQuery(out)
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// Latest returns every rate quoted on the most recent stored date, sorted by
// tenor. With a currency the latest date is taken within that currency, so a
// market that lags the others still reports its own newest quotes.
func (s *MemoryStore) Latest(ctx context.Context, currency string) ([]SwapRate, error) {
	currency = normalizeCode(currency)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for _, r := range s.rates {
		if currency != "" && r.Currency != currency {
			continue
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	if latest.IsZero() {
		return []SwapRate{}, nil
	}

	out := make([]SwapRate, 0, 16)
	for _, r := range s.rates {
		if currency != "" && r.Currency != currency {
			continue
		}
		if r.Date.Equal(latest) {
			out = append(out, r)
		}
	}
	SortByTenor(out)
	return out, nil
}

// LatestDate returns the most recent date with at least one stored rate for
// the currency, or ErrNoData when nothing matches.
func (s *MemoryStore) LatestDate(ctx context.Context, currency string) (time.Time, error) {
	currency = normalizeCode(currency)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest time.Time
	for _, r := range s.rates {
		if currency != "" && r.Currency != currency {
			continue
		}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	if latest.IsZero() {
		return time.Time{}, fmt.Errorf("LatestDate: %q: %w", currency, ErrNoData)
	}
	return latest, nil
}

// Currencies lists the distinct stored currency codes in alphabetical order.
func (s *MemoryStore) Currencies(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	seen := make(map[string]bool, 8)
	for _, r := range s.rates {
		seen[r.Currency] = true
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

// Tenors lists the distinct tenor labels stored for the currency, from the
// shortest to the longest. An empty currency spans the whole store.
func (s *MemoryStore) Tenors(ctx context.Context, currency string) ([]string, error) {
	currency = normalizeCode(currency)

	s.mu.RLock()
	months := make(map[string]int, 16)
	for _, r := range s.rates {
		if currency != "" && r.Currency != currency {
			continue
		}
		months[r.Tenor] = r.TenorMonths
	}
	s.mu.RUnlock()

	out := make([]string, 0, len(months))
	for t := range months {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if months[out[i]] != months[out[j]] {
			return months[out[i]] < months[out[j]]
		}
		return out[i] < out[j]
	})
	return out, nil
}

// Dates lists the distinct quote dates stored for the currency, newest
// first. An empty currency spans the whole store.
func (s *MemoryStore) Dates(ctx context.Context, currency string) ([]time.Time, error) {
	currency = normalizeCode(currency)

	s.mu.RLock()
	seen := make(map[time.Time]bool, 32)
	for _, r := range s.rates {
		if currency != "" && r.Currency != currency {
			continue
		}
		seen[r.Date] = true
	}
	s.mu.RUnlock()

	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].After(out[j]) })
	return out, nil
}

// DeleteByDate removes the rates for the currency inside the inclusive date
// range and reports how many rows went. Zero bounds widen the range and an
// empty currency spans every market.
func (s *MemoryStore) DeleteByDate(ctx context.Context, currency string, from, to time.Time) (int, error) {
	f := Filter{Currency: normalizeCode(currency), From: from, To: to}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.rates[:0]
	deleted := 0
	for _, r := range s.rates {
		if matches(r, f) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.rates = kept
	return deleted, nil
}

// Count reports the number of stored rates.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rates), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
