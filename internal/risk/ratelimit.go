package risk

import (
	"sync"
	"time"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

const maxDebounceKeys = 10000

// Debouncer remembers the last attempt time per key.
type Debouncer struct {
	mu   sync.Mutex
	last map[string]time.Time
}

func NewDebouncer() *Debouncer {
	return &Debouncer{last: make(map[string]time.Time)}
}

// Touch records at as the latest attempt for key and returns the previous
// attempt, if any. The read and the write happen under one lock.
func (d *Debouncer) Touch(key string, at time.Time) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev, seen := d.last[key]
	if !seen || at.After(prev) {
		d.last[key] = at
	}
	return prev, seen
}

// Prune drops keys whose last attempt is before cutoff.
func (d *Debouncer) Prune(cutoff time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for key, at := range d.last {
		if at.Before(cutoff) {
			delete(d.last, key)
		}
	}
}

func (d *Debouncer) size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.last)
}

const RapidFireRuleName = "rapid_fire_attempts"

// NewRapidFireRule flags repeated attempts from the same source and email
// domain within cfg.RapidFireWindow of each other.
func NewRapidFireRule(d *Debouncer) Rule {
	return Rule{
		Name:        RapidFireRuleName,
		Weight:      weight("0.30"),
		Description: "Repeated attempts from the same source and domain in a short window",
		Predicate: func(data *models.FraudAnalysisData, cfg *Config) bool {
			if cfg.RapidFireWindow <= 0 {
				return false
			}
			if d.size() > maxDebounceKeys {
				d.Prune(data.Timestamp.Add(-cfg.RapidFireWindow))
			}
			prev, seen := d.Touch(data.Source+"|"+data.Domain, data.Timestamp)
			if !seen {
				return false
			}
			gap := data.Timestamp.Sub(prev)
			return gap >= 0 && gap < cfg.RapidFireWindow
		},
	}
}
