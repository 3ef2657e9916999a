// Package risk implements the weighted rule engine that scores payments.
//
// Every registered rule is evaluated against the payment in registration
// order. The weights of the rules that fire are summed, capped at 1 and
// rounded to two decimals. Payments scoring at or above the configured
// threshold are high risk.
package risk

import (
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

// Engine scores payments against an ordered rule set.
type Engine struct {
	mu    sync.RWMutex
	cfg   Config
	rules []Rule
	names map[string]struct{}
}

// NewEngine creates an engine with the default rule table. The
// rapid_fire_attempts rule is appended once RapidFireWindow is positive,
// here or on a later UpdateConfig.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg.clone(),
		names: make(map[string]struct{}),
	}
	for _, r := range DefaultRules() {
		if err := e.Register(r); err != nil {
			return nil, err
		}
	}
	e.enableRapidFire()
	return e, nil
}

// Register appends a rule to the evaluation order.
func (e *Engine) Register(r Rule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.register(r)
}

// enableRapidFire appends the rapid-fire rule the first time the window is
// positive. Callers hold e.mu or own e exclusively. A window set back to
// zero keeps the rule registered but inert.
func (e *Engine) enableRapidFire() {
	if e.cfg.RapidFireWindow <= 0 {
		return
	}
	if _, exists := e.names[RapidFireRuleName]; exists {
		return
	}
	r := NewRapidFireRule(NewDebouncer())
	e.names[r.Name] = struct{}{}
	e.rules = append(e.rules, r)
}

func (e *Engine) register(r Rule) error {
	if _, exists := e.names[r.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateRule, r.Name)
	}
	e.names[r.Name] = struct{}{}
	e.rules = append(e.rules, r)
	return nil
}

// Rules returns the registered rule names in evaluation order.
func (e *Engine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, len(e.rules))
	for i, r := range e.rules {
		names[i] = r.Name
	}
	return names
}

// Config returns a snapshot of the current configuration.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg.clone()
}

// UpdateConfig merges u into the current configuration. Rules see the new
// values from their next evaluation on.
func (e *Engine) UpdateConfig(u ConfigUpdate) (Config, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.cfg.Merge(u)
	if err := next.Validate(); err != nil {
		return e.cfg.clone(), err
	}
	e.cfg = next
	e.enableRapidFire()
	return next.clone(), nil
}

// AnalyzeRisk scores data. It never fails.
func (e *Engine) AnalyzeRisk(data *models.FraudAnalysisData) models.RiskResult {
	e.mu.RLock()
	cfg := e.cfg.clone()
	rules := e.rules
	e.mu.RUnlock()

	total := decimal.Zero
	triggered := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.Predicate(data, &cfg) {
			total = total.Add(r.Weight)
			triggered = append(triggered, r.Name)
		}
	}

	if total.GreaterThan(one) {
		total = one
	}
	score := total.Round(2).InexactFloat64()

	return models.RiskResult{
		RiskScore:      score,
		TriggeredRules: triggered,
		IsHighRisk:     score >= cfg.Threshold,
	}
}
