// Package alerts watches stored swap rates and fires notifications when a
// tenor breaches a configured level, crosses it, or moves by more than a
// configured amount between the two newest quotes.
//
// Alert definitions persist in a JSON file so they survive restarts.
// Thresholds are percent values, matching how rates are displayed.
package alerts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/meenmo/rateedge/ratestore"
)

// Alert conditions.
const (
	ConditionAbove        = "above"
	ConditionBelow        = "below"
	ConditionCrossesAbove = "crosses_above"
	ConditionCrossesBelow = "crosses_below"
	ConditionChange       = "change"
)

// ErrNotFound is returned when no alert carries the requested ID.
var ErrNotFound = errors.New("alert not found")

// ErrInvalidAlert is returned when an alert definition is missing fields or
// names an unknown condition.
var ErrInvalidAlert = errors.New("invalid alert")

// Conditions lists every supported condition keyword.
func Conditions() []string {
	return []string{
		ConditionAbove,
		ConditionBelow,
		ConditionCrossesAbove,
		ConditionCrossesBelow,
		ConditionChange,
	}
}

// Describe returns the display text for a condition keyword.
func Describe(condition string) string {
	switch condition {
	case ConditionAbove:
		return "Rate is above threshold"
	case ConditionBelow:
		return "Rate is below threshold"
	case ConditionCrossesAbove:
		return "Rate crosses above threshold"
	case ConditionCrossesBelow:
		return "Rate crosses below threshold"
	case ConditionChange:
		return "Rate changes by threshold amount"
	default:
		return "Unknown condition"
	}
}

// Alert is one configured watch on a currency and tenor.
type Alert struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Currency      string     `json:"currency"`
	Tenor         string     `json:"tenor"`
	Condition     string     `json:"condition"`
	Threshold     float64    `json:"threshold"`
	Enabled       bool       `json:"enabled"`
	Created       time.Time  `json:"created"`
	LastChecked   *time.Time `json:"last_checked,omitempty"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	TriggerCount  int        `json:"trigger_count"`
}

// Update is a partial edit of an alert; nil fields keep their value.
type Update struct {
	Name      *string  `json:"name,omitempty"`
	Condition *string  `json:"condition,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
	Enabled   *bool    `json:"enabled,omitempty"`
}

// History is the trigger record of one alert.
type History struct {
	AlertID       string     `json:"alert_id"`
	TriggerCount  int        `json:"trigger_count"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	LastChecked   *time.Time `json:"last_checked,omitempty"`
}

// Manager owns the alert definitions and evaluates them against a rate
// store.
type Manager struct {
	mu     sync.Mutex
	store  ratestore.Store
	path   string
	alerts []*Alert
}

// NewManager loads the alert file at path, creating its directory if needed.
// A missing file starts an empty set; an unreadable one is logged and
// ignored rather than blocking startup.
func NewManager(store ratestore.Store, path string) (*Manager, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("NewManager: %w", err)
		}
	}

	m := &Manager{store: store, path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("NewManager: %w", err)
	}
	if err := json.Unmarshal(data, &m.alerts); err != nil {
		logrus.WithError(err).WithField("path", path).Warn("alert file unreadable, starting empty")
		m.alerts = nil
	}
	return m, nil
}

// persist writes the alert set to a temp file and renames it over the old
// one, so a crash mid-write never loses the previous set. Callers hold the
// lock.
func (m *Manager) persist() error {
	data, err := json.MarshalIndent(m.alerts, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(m.path), "alerts-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), m.path)
}

func validCondition(c string) bool {
	for _, known := range Conditions() {
		if c == known {
			return true
		}
	}
	return false
}

// Add registers a new alert and persists the set. The ID, creation time, and
// counters are assigned here; anything the caller put in those fields is
// overwritten.
func (m *Manager) Add(a Alert) (*Alert, error) {
	a.Currency = strings.ToUpper(strings.TrimSpace(a.Currency))
	a.Tenor = strings.ToUpper(strings.TrimSpace(a.Tenor))
	if a.Currency == "" {
		return nil, fmt.Errorf("Add: currency is required: %w", ErrInvalidAlert)
	}
	if a.Tenor == "" {
		return nil, fmt.Errorf("Add: tenor is required: %w", ErrInvalidAlert)
	}
	if !validCondition(a.Condition) {
		return nil, fmt.Errorf("Add: unknown condition %q: %w", a.Condition, ErrInvalidAlert)
	}

	a.ID = uuid.NewString()
	a.Created = time.Now().UTC()
	a.LastChecked = nil
	a.LastTriggered = nil
	a.TriggerCount = 0

	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, &a)
	if err := m.persist(); err != nil {
		m.alerts = m.alerts[:len(m.alerts)-1]
		return nil, fmt.Errorf("Add: %w", err)
	}
	out := a
	return &out, nil
}

// Remove deletes the alert with the given ID.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, a := range m.alerts {
		if a.ID == id {
			m.alerts = append(m.alerts[:i], m.alerts[i+1:]...)
			if err := m.persist(); err != nil {
				return fmt.Errorf("Remove: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("Remove: %q: %w", id, ErrNotFound)
}

// ApplyUpdate edits an alert in place and returns the updated copy.
func (m *Manager) ApplyUpdate(id string, u Update) (*Alert, error) {
	if u.Condition != nil && !validCondition(*u.Condition) {
		return nil, fmt.Errorf("ApplyUpdate: unknown condition %q: %w", *u.Condition, ErrInvalidAlert)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.alerts {
		if a.ID != id {
			continue
		}
		if u.Name != nil {
			a.Name = *u.Name
		}
		if u.Condition != nil {
			a.Condition = *u.Condition
		}
		if u.Threshold != nil {
			a.Threshold = *u.Threshold
		}
		if u.Enabled != nil {
			a.Enabled = *u.Enabled
		}
		if err := m.persist(); err != nil {
			return nil, fmt.Errorf("ApplyUpdate: %w", err)
		}
		out := *a
		return &out, nil
	}
	return nil, fmt.Errorf("ApplyUpdate: %q: %w", id, ErrNotFound)
}

// SetEnabled switches an alert on or off.
func (m *Manager) SetEnabled(id string, enabled bool) (*Alert, error) {
	return m.ApplyUpdate(id, Update{Enabled: &enabled})
}

// Get returns a copy of one alert.
func (m *Manager) Get(id string) (*Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, a := range m.alerts {
		if a.ID == id {
			out := *a
			return &out, nil
		}
	}
	return nil, fmt.Errorf("Get: %q: %w", id, ErrNotFound)
}

// List returns copies of the alerts, optionally only the enabled ones.
func (m *Manager) List(enabledOnly bool) []Alert {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if enabledOnly && !a.Enabled {
			continue
		}
		out = append(out, *a)
	}
	return out
}

// History reports how often an alert has fired.
func (m *Manager) History(id string) (*History, error) {
	a, err := m.Get(id)
	if err != nil {
		return nil, fmt.Errorf("History: %q: %w", id, ErrNotFound)
	}
	return &History{
		AlertID:       a.ID,
		TriggerCount:  a.TriggerCount,
		LastTriggered: a.LastTriggered,
		LastChecked:   a.LastChecked,
	}, nil
}
