package interfaces

import (
	"context"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

// TransactionArchive defines the contract for the audit copy of routing decisions
type TransactionArchive interface {
	Insert(ctx context.Context, tx *models.Transaction) error
}

// DecisionPublisher announces completed routing decisions to downstream consumers
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, tx *models.Transaction) error
}

// Explainer produces a human-readable explanation of a routing decision.
// Implementations may fail; callers fall back to a locally derived text.
type Explainer interface {
	Explain(ctx context.Context, data *models.FraudAnalysisData, result models.RiskResult, provider models.Provider, status models.Status) (string, error)
}
