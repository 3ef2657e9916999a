// Package explain turns a routing decision into human-readable text.
package explain

import (
	"fmt"
	"strings"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

const noRulesText = "no specific risk indicators"

// RiskLevel buckets a score into low, moderate or high.
func RiskLevel(score float64) string {
	switch {
	case score < 0.3:
		return "low"
	case score < 0.7:
		return "moderate"
	default:
		return "high"
	}
}

// Fallback builds the deterministic explanation used when no external
// explainer is configured or it fails.
func Fallback(result models.RiskResult, provider models.Provider, status models.Status) string {
	outcome := fmt.Sprintf("routed to %s", provider)
	if status == models.StatusBlocked || provider == models.ProviderBlocked {
		outcome = "blocked"
	}

	rules := noRulesText
	if len(result.TriggeredRules) > 0 {
		rules = strings.Join(result.TriggeredRules, ", ")
	}

	return fmt.Sprintf("This payment was %s due to a %s risk score (%.2f) based on %s.",
		outcome, RiskLevel(result.RiskScore), result.RiskScore, rules)
}
