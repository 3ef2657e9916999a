package models

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Consumers of the transaction record expect numeric amounts, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type Provider string

const (
	ProviderStripe  Provider = "stripe"
	ProviderPaypal  Provider = "paypal"
	ProviderBlocked Provider = "blocked"
)

func (p Provider) Valid() bool {
	switch p {
	case ProviderStripe, ProviderPaypal, ProviderBlocked:
		return true
	}
	return false
}

type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusBlocked Status = "blocked"
)

func (s Status) Valid() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusBlocked:
		return true
	}
	return false
}

// PaymentRequest is an inbound payment awaiting a routing decision.
type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency" binding:"required,len=3"`
	Email    string          `json:"email" binding:"required,email"`
	Source   string          `json:"source"`
}
