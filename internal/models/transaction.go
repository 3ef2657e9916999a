package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionMetadata carries the scoring details behind a decision.
type TransactionMetadata struct {
	TriggeredRules []string `json:"triggeredRules"`
	IsHighRisk     bool     `json:"isHighRisk"`
}

// Transaction is a completed routing decision as stored in the ledger.
type Transaction struct {
	ID          string               `json:"id"`
	Amount      decimal.Decimal      `json:"amount"`
	Currency    string               `json:"currency"`
	Email       string               `json:"email"`
	Source      string               `json:"source"`
	Provider    Provider             `json:"provider"`
	Status      Status               `json:"status"`
	RiskScore   float64              `json:"riskScore"`
	Explanation string               `json:"explanation"`
	Timestamp   time.Time            `json:"timestamp"`
	Metadata    *TransactionMetadata `json:"metadata,omitempty"`
}

// Clone returns a deep copy so callers can never mutate ledger state.
func (t *Transaction) Clone() *Transaction {
	if t == nil {
		return nil
	}
	c := *t
	if t.Metadata != nil {
		md := *t.Metadata
		md.TriggeredRules = append([]string(nil), t.Metadata.TriggeredRules...)
		c.Metadata = &md
	}
	return &c
}

// TransactionFields are the caller-supplied parts of a new Transaction.
type TransactionFields struct {
	Amount      decimal.Decimal
	Currency    string
	Email       string
	Source      string
	Provider    Provider
	Status      Status
	RiskScore   float64
	Explanation string
	Metadata    *TransactionMetadata
}

// TransactionStats aggregates the ledger contents.
type TransactionStats struct {
	Total         int              `json:"total"`
	ByStatus      map[Status]int   `json:"byStatus"`
	ByProvider    map[Provider]int `json:"byProvider"`
	TotalAmount   decimal.Decimal  `json:"totalAmount"`
	AverageAmount decimal.Decimal  `json:"averageAmount"`
}
