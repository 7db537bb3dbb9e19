package alerts

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/meenmo/rateedge/ratestore"
)

// Trigger is one alert that fired during a check, with the rate that fired
// it and a display message.
type Trigger struct {
	Alert       Alert   `json:"alert"`
	CurrentRate float64 `json:"current_rate"`
	Message     string  `json:"message"`
}

// Check evaluates every enabled alert against the newest stored rates and
// returns the ones that fired. Alerts whose tenor has no current quote are
// skipped untouched; the rest record the check time, and fired ones record
// the trigger time and count. The updated set is persisted once at the end.
func (m *Manager) Check(ctx context.Context) ([]Trigger, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	triggered := make([]Trigger, 0, 4)
	dirty := false

	for _, a := range m.alerts {
		if !a.Enabled {
			continue
		}

		current, ok, err := m.currentRate(ctx, a.Currency, a.Tenor)
		if err != nil {
			return nil, fmt.Errorf("Check: %w", err)
		}
		if !ok {
			continue
		}

		fired, message, err := m.evaluate(ctx, a, current)
		if err != nil {
			return nil, fmt.Errorf("Check: %w", err)
		}

		now := time.Now().UTC()
		a.LastChecked = &now
		dirty = true

		if fired {
			a.LastTriggered = &now
			a.TriggerCount++
			triggered = append(triggered, Trigger{Alert: *a, CurrentRate: current, Message: message})
		}
	}

	if dirty {
		if err := m.persist(); err != nil {
			return nil, fmt.Errorf("Check: %w", err)
		}
	}
	return triggered, nil
}

// currentRate returns the newest quote for the currency and tenor in
// percent, or ok false when none is stored.
func (m *Manager) currentRate(ctx context.Context, currency, tenor string) (float64, bool, error) {
	latest, err := m.store.Latest(ctx, currency)
	if err != nil {
		return 0, false, err
	}
	for _, r := range latest {
		if r.Tenor == tenor {
			return r.Rate * 100, true, nil
		}
	}
	return 0, false, nil
}

// previousRate returns the second newest quote in percent. The crossing and
// change conditions need it; alerts with fewer than two quotes never fire
// those.
func (m *Manager) previousRate(ctx context.Context, currency, tenor string) (float64, bool, error) {
	history, err := m.store.Query(ctx, ratestore.Filter{Currency: currency, Tenor: tenor, Limit: 2})
	if err != nil {
		return 0, false, err
	}
	if len(history) < 2 {
		return 0, false, nil
	}
	return history[1].Rate * 100, true, nil
}

func (m *Manager) evaluate(ctx context.Context, a *Alert, current float64) (bool, string, error) {
	switch a.Condition {
	case ConditionAbove:
		if current > a.Threshold {
			return true, fmt.Sprintf("%s rate (%.2f%%) is above %g%%", a.Tenor, current, a.Threshold), nil
		}

	case ConditionBelow:
		if current < a.Threshold {
			return true, fmt.Sprintf("%s rate (%.2f%%) is below %g%%", a.Tenor, current, a.Threshold), nil
		}

	case ConditionCrossesAbove:
		prev, ok, err := m.previousRate(ctx, a.Currency, a.Tenor)
		if err != nil {
			return false, "", err
		}
		if ok && prev <= a.Threshold && a.Threshold < current {
			return true, fmt.Sprintf("%s crossed above %g%% (was %.2f%%, now %.2f%%)", a.Tenor, a.Threshold, prev, current), nil
		}

	case ConditionCrossesBelow:
		prev, ok, err := m.previousRate(ctx, a.Currency, a.Tenor)
		if err != nil {
			return false, "", err
		}
		if ok && prev >= a.Threshold && a.Threshold > current {
			return true, fmt.Sprintf("%s crossed below %g%% (was %.2f%%, now %.2f%%)", a.Tenor, a.Threshold, prev, current), nil
		}

	case ConditionChange:
		prev, ok, err := m.previousRate(ctx, a.Currency, a.Tenor)
		if err != nil {
			return false, "", err
		}
		if ok {
			change := math.Abs(current - prev)
			if change >= a.Threshold {
				direction := "decreased"
				if current > prev {
					direction = "increased"
				}
				return true, fmt.Sprintf("%s %s by %.2f%% (now %.2f%%)", a.Tenor, direction, change, current), nil
			}
		}
	}
	return false, "", nil
}
