// Package routing maps a risk result onto a payment provider.
package routing

import (
	"github.com/akylbek/payment-system/payment-router/internal/models"
)

// Score bands below the blocking threshold.
const (
	stripeLowBand = 0.2
	paypalBand    = 0.4
)

// Decision is the provider and resulting status for a payment.
type Decision struct {
	Provider models.Provider `json:"provider"`
	Status   models.Status   `json:"status"`
}

// Route picks the provider for result. High-risk payments are blocked;
// everything else succeeds on stripe or paypal by score band.
func Route(result models.RiskResult) Decision {
	switch {
	case result.IsHighRisk:
		return Decision{Provider: models.ProviderBlocked, Status: models.StatusBlocked}
	case result.RiskScore < stripeLowBand:
		return Decision{Provider: models.ProviderStripe, Status: models.StatusSuccess}
	case result.RiskScore < paypalBand:
		return Decision{Provider: models.ProviderPaypal, Status: models.StatusSuccess}
	default:
		return Decision{Provider: models.ProviderStripe, Status: models.StatusSuccess}
	}
}
