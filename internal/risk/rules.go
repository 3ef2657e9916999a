package risk

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/payment-router/internal/amount"
	"github.com/akylbek/payment-system/payment-router/internal/models"
)

// Predicate decides whether a rule fires. cfg is a snapshot taken at the
// start of the evaluation and must not be retained.
type Predicate func(data *models.FraudAnalysisData, cfg *Config) bool

// Rule is a single weighted fraud signal.
type Rule struct {
	Name        string
	Weight      decimal.Decimal
	Description string
	Predicate   Predicate
}

// historyWindow is how many recent amounts the pattern rules inspect.
const historyWindow = 5

var (
	one                 = decimal.NewFromInt(1)
	hundred             = decimal.NewFromInt(100)
	highValueAmount     = decimal.NewFromInt(1000)
	microAmount         = decimal.NewFromInt(10)
	postMicroAmount     = decimal.NewFromInt(100)
	firstTimeHighValue  = decimal.NewFromInt(500)
	nearLimitRatio      = decimal.RequireFromString("0.99")
	sequentialTolerance = decimal.NewFromInt(1)
	stdDevMultiplier    = decimal.NewFromInt(3)

	roundAmounts = []decimal.Decimal{
		decimal.NewFromInt(100), decimal.NewFromInt(500), decimal.NewFromInt(1000),
		decimal.NewFromInt(2000), decimal.NewFromInt(5000), decimal.NewFromInt(10000),
		decimal.NewFromInt(20000), decimal.NewFromInt(50000), decimal.NewFromInt(100000),
	}
	oddCents = map[int64]struct{}{0: {}, 1: {}, 99: {}}
)

func weight(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DefaultRules returns the standard rule table in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:        "large_amount",
			Weight:      weight("0.30"),
			Description: "Amount exceeds the large amount threshold",
			Predicate: func(d *models.FraudAnalysisData, cfg *Config) bool {
				return d.Amount.GreaterThan(cfg.LargeAmountThreshold)
			},
		},
		{
			Name:        "suspicious_domain",
			Weight:      weight("0.40"),
			Description: "Email domain matches a suspicious suffix",
			Predicate: func(d *models.FraudAnalysisData, cfg *Config) bool {
				return hasSuspiciousSuffix(d.Domain, cfg.SuspiciousDomains)
			},
		},
		{
			Name:        "test_domain",
			Weight:      weight("0.20"),
			Description: "Email domain looks like a test or example domain",
			Predicate: func(d *models.FraudAnalysisData, _ *Config) bool {
				domain := strings.ToLower(d.Domain)
				return strings.Contains(domain, "test") || strings.Contains(domain, "example")
			},
		},
		{
			Name:        "high_value_currency",
			Weight:      weight("0.10"),
			Description: "High value transaction",
			Predicate: func(d *models.FraudAnalysisData, _ *Config) bool {
				return d.Amount.GreaterThan(highValueAmount)
			},
		},
		{
			Name:        "suspicious_email_pattern",
			Weight:      weight("0.20"),
			Description: "Email address has an unusual shape",
			Predicate: func(d *models.FraudAnalysisData, _ *Config) bool {
				return SuspiciousEmail(d.Email)
			},
		},
		{
			Name:        "round_number_amount",
			Weight:      weight("0.15"),
			Description: "Amount is a common round denomination",
			Predicate: func(d *models.FraudAnalysisData, _ *Config) bool {
				for _, r := range roundAmounts {
					if d.Amount.Equal(r) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:        "gradual_amount_increase",
			Weight:      weight("0.25"),
			Description: "Recent amounts keep stepping up",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				recent := lastN(ac.PreviousAmounts, historyWindow)
				if len(recent) < 2 {
					return false
				}
				increases := 0
				for i := 1; i < len(recent); i++ {
					if recent[i].GreaterThan(recent[i-1]) {
						increases++
					}
				}
				return increases >= 3 && d.Amount.GreaterThan(recent[len(recent)-1])
			}),
		},
		{
			Name:        "under_reporting_threshold",
			Weight:      weight("0.30"),
			Description: "Amount sits just below the reporting threshold",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				floor := ac.ReportingThreshold.Mul(nearLimitRatio)
				return d.Amount.GreaterThanOrEqual(floor) && d.Amount.LessThan(ac.ReportingThreshold)
			}),
		},
		{
			Name:        "micro_to_large_transaction",
			Weight:      weight("0.20"),
			Description: "Large payment right after a micro payment",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				n := len(ac.PreviousAmounts)
				if n == 0 {
					return false
				}
				return ac.PreviousAmounts[n-1].LessThan(microAmount) && d.Amount.GreaterThan(postMicroAmount)
			}),
		},
		{
			Name:        "exceeds_historical_average",
			Weight:      weight("0.35"),
			Description: "Amount is more than three standard deviations above the user's average",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				limit := ac.UserAverageAmount.Add(ac.UserStandardDeviation.Mul(stdDevMultiplier))
				return d.Amount.GreaterThan(limit)
			}),
		},
		{
			Name:        "first_time_high_value",
			Weight:      weight("0.25"),
			Description: "First transaction for this user is high value",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				return ac.IsFirstTimeTransaction && d.Amount.GreaterThan(firstTimeHighValue)
			}),
		},
		{
			Name:        "inconsistent_merchant_category",
			Weight:      weight("0.20"),
			Description: "Amount is outside the merchant category's usual range",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				b, ok := amount.CategoryBand(ac.MerchantCategory)
				return ok && !b.Contains(d.Amount)
			}),
		},
		{
			Name:        "maximum_credit_limit",
			Weight:      weight("0.40"),
			Description: "Amount is at or near the card limit",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				if ac.CreditCardLimit == nil {
					return false
				}
				return d.Amount.GreaterThanOrEqual(ac.CreditCardLimit.Mul(nearLimitRatio))
			}),
		},
		{
			Name:        "odd_cent_patterns",
			Weight:      weight("0.10"),
			Description: "Cents component is .00, .01 or .99",
			Predicate: func(d *models.FraudAnalysisData, _ *Config) bool {
				cents := d.Amount.Mod(one).Mul(hundred).Round(0).IntPart()
				_, odd := oddCents[cents]
				return odd
			},
		},
		{
			Name:        "sequential_amount_testing",
			Weight:      weight("0.30"),
			Description: "Recent amounts differ by a dollar or less",
			Predicate: withContext(func(d *models.FraudAnalysisData, ac *models.AmountContext) bool {
				recent := lastN(ac.PreviousAmounts, historyWindow)
				if len(recent) < 2 {
					return false
				}
				near := 0
				for i := 1; i < len(recent); i++ {
					if recent[i].Sub(recent[i-1]).Abs().LessThanOrEqual(sequentialTolerance) {
						near++
					}
				}
				last := recent[len(recent)-1]
				return near >= 2 && d.Amount.Sub(last).Abs().LessThanOrEqual(sequentialTolerance)
			}),
		},
	}
}

// withContext adapts an amount-context check into a Predicate that never
// fires when the payment carries no amount context.
func withContext(fn func(*models.FraudAnalysisData, *models.AmountContext) bool) Predicate {
	return func(d *models.FraudAnalysisData, _ *Config) bool {
		if d.AmountContext == nil {
			return false
		}
		return fn(d, d.AmountContext)
	}
}

func lastN(values []decimal.Decimal, n int) []decimal.Decimal {
	if len(values) <= n {
		return values
	}
	return values[len(values)-n:]
}

func hasSuspiciousSuffix(domain string, suffixes []string) bool {
	if domain == "" {
		return false
	}
	domain = strings.ToLower(domain)
	for _, s := range suffixes {
		if s != "" && strings.HasSuffix(domain, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
