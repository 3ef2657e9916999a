package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountContext holds historical and reference signals about a payer's amounts.
type AmountContext struct {
	Amount                 decimal.Decimal   `json:"amount"`
	Currency               string            `json:"currency"`
	PreviousAmounts        []decimal.Decimal `json:"previousAmounts"`
	UserAverageAmount      decimal.Decimal   `json:"userAverageAmount"`
	UserStandardDeviation  decimal.Decimal   `json:"userStandardDeviation"`
	MerchantCategory       string            `json:"merchantCategory"`
	IsFirstTimeTransaction bool              `json:"isFirstTimeTransaction"`
	CreditCardLimit        *decimal.Decimal  `json:"creditCardLimit,omitempty"`
	ReportingThreshold     decimal.Decimal   `json:"reportingThreshold"`
}

// FraudAnalysisData is the immutable input to risk scoring.
type FraudAnalysisData struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Email         string          `json:"email"`
	Domain        string          `json:"domain"`
	Source        string          `json:"source,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
	AmountContext *AmountContext  `json:"amountContext,omitempty"`
}

type RiskResult struct {
	RiskScore      float64  `json:"riskScore"`
	TriggeredRules []string `json:"triggeredRules"`
	IsHighRisk     bool     `json:"isHighRisk"`
}
