// Package amount derives amount-pattern context for a payer from their
// ledger history and static reference tables.
package amount

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/payment-router/internal/interfaces"
	"github.com/akylbek/payment-system/payment-router/internal/models"
)

const (
	DefaultMerchantCategory = "retail"
)

var (
	DefaultCreditLimit        = decimal.NewFromInt(10000)
	DefaultReportingThreshold = decimal.NewFromInt(10000)

	reportingThresholds = map[string]decimal.Decimal{
		"USD": decimal.NewFromInt(10000),
		"EUR": decimal.NewFromInt(10000),
		"GBP": decimal.NewFromInt(10000),
		"CAD": decimal.NewFromInt(10000),
		"AUD": decimal.NewFromInt(10000),
	}
)

// Analyzer builds AmountContext values. It holds no per-request state.
type Analyzer struct {
	history          interfaces.HistoryProvider
	merchantCategory string
	creditLimit      *decimal.Decimal
}

type Option func(*Analyzer)

// WithMerchantCategory overrides the category assigned to every payment.
func WithMerchantCategory(category string) Option {
	return func(a *Analyzer) {
		a.merchantCategory = category
	}
}

// WithCreditLimit overrides the card limit assigned to every payment.
func WithCreditLimit(limit decimal.Decimal) Option {
	return func(a *Analyzer) {
		a.creditLimit = &limit
	}
}

// WithoutCreditLimit leaves CreditCardLimit unset.
func WithoutCreditLimit() Option {
	return func(a *Analyzer) {
		a.creditLimit = nil
	}
}

func NewAnalyzer(history interfaces.HistoryProvider, opts ...Option) *Analyzer {
	limit := DefaultCreditLimit
	a := &Analyzer{
		history:          history,
		merchantCategory: DefaultMerchantCategory,
		creditLimit:      &limit,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Build returns the amount context for a payment by userEmail.
// History is read in chronological order; the current payment is not part of it.
func (a *Analyzer) Build(userEmail string, currentAmount decimal.Decimal, currentCurrency string) models.AmountContext {
	var previous []decimal.Decimal
	if a.history != nil {
		for _, tx := range a.history.TransactionsByEmail(userEmail) {
			previous = append(previous, tx.Amount)
		}
	}

	mean, stdDev := meanAndStdDev(previous)

	ctx := models.AmountContext{
		Amount:                 currentAmount,
		Currency:               currentCurrency,
		PreviousAmounts:        previous,
		UserAverageAmount:      mean,
		UserStandardDeviation:  stdDev,
		MerchantCategory:       a.merchantCategory,
		IsFirstTimeTransaction: len(previous) == 0,
		ReportingThreshold:     ReportingThreshold(currentCurrency),
	}
	if a.creditLimit != nil {
		limit := *a.creditLimit
		ctx.CreditCardLimit = &limit
	}
	return ctx
}

// ReportingThreshold returns the regulatory reporting threshold for currency.
func ReportingThreshold(currency string) decimal.Decimal {
	if t, ok := reportingThresholds[strings.ToUpper(currency)]; ok {
		return t
	}
	return DefaultReportingThreshold
}

// meanAndStdDev computes the mean and population standard deviation.
func meanAndStdDev(values []decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if len(values) == 0 {
		return decimal.Zero, decimal.Zero
	}
	n := decimal.NewFromInt(int64(len(values)))
	mean := decimal.Sum(values[0], values[1:]...).Div(n)

	variance := decimal.Zero
	for _, v := range values {
		d := v.Sub(mean)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(n)

	return mean, decimal.NewFromFloat(math.Sqrt(variance.InexactFloat64()))
}
