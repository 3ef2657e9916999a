package risk

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(DefaultConfig())
	require.NoError(t, err)
	return e
}

func payment(amount, email string) *models.FraudAnalysisData {
	return &models.FraudAnalysisData{
		Amount:    decimal.RequireFromString(amount),
		Currency:  "USD",
		Email:     email,
		Domain:    ExtractDomain(email),
		Timestamp: time.Now(),
	}
}

func amounts(values ...string) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.RequireFromString(v)
	}
	return out
}

func TestAnalyzeRisk_SuspiciousDomainIsBlocked(t *testing.T) {
	e := newTestEngine(t)

	result := e.AnalyzeRisk(payment("10000", "user@test.ru"))

	assert.Contains(t, result.TriggeredRules, "large_amount")
	assert.Contains(t, result.TriggeredRules, "suspicious_domain")
	assert.Contains(t, result.TriggeredRules, "test_domain")
	assert.GreaterOrEqual(t, result.RiskScore, 0.5)
	assert.Equal(t, 1.0, result.RiskScore)
	assert.True(t, result.IsHighRisk)
}

func TestAnalyzeRisk_TriggeredRulesFollowRegistrationOrder(t *testing.T) {
	e := newTestEngine(t)

	result := e.AnalyzeRisk(payment("10000", "user@test.ru"))

	assert.Equal(t, []string{
		"large_amount",
		"suspicious_domain",
		"test_domain",
		"high_value_currency",
		"round_number_amount",
		"odd_cent_patterns",
	}, result.TriggeredRules)
}

func TestAnalyzeRisk_CleanPaymentScoresZero(t *testing.T) {
	e := newTestEngine(t)

	result := e.AnalyzeRisk(payment("100.50", "user@trusted.com"))

	assert.Equal(t, 0.0, result.RiskScore)
	assert.NotNil(t, result.TriggeredRules)
	assert.Empty(t, result.TriggeredRules)
	assert.False(t, result.IsHighRisk)
}

func TestAnalyzeRisk_WeightsAreSummed(t *testing.T) {
	e := newTestEngine(t)

	result := e.AnalyzeRisk(payment("100.00", "user@trusted.com"))

	assert.Equal(t, []string{"round_number_amount", "odd_cent_patterns"}, result.TriggeredRules)
	assert.Equal(t, 0.25, result.RiskScore)
}

func TestAnalyzeRisk_OddCents(t *testing.T) {
	e := newTestEngine(t)

	assert.Contains(t, e.AnalyzeRisk(payment("100.00", "a@b.com")).TriggeredRules, "odd_cent_patterns")
	assert.Contains(t, e.AnalyzeRisk(payment("42.01", "a@b.com")).TriggeredRules, "odd_cent_patterns")
	assert.Contains(t, e.AnalyzeRisk(payment("42.99", "a@b.com")).TriggeredRules, "odd_cent_patterns")
	assert.NotContains(t, e.AnalyzeRisk(payment("100.50", "a@b.com")).TriggeredRules, "odd_cent_patterns")
}

func TestAnalyzeRisk_SequentialAndGradualPatterns(t *testing.T) {
	e := newTestEngine(t)

	data := payment("5.00", "user@trusted.com")
	data.AmountContext = &models.AmountContext{
		Amount:             data.Amount,
		Currency:           "USD",
		PreviousAmounts:    amounts("1.00", "2.00", "3.00", "4.00"),
		UserAverageAmount:  decimal.RequireFromString("2.5"),
		ReportingThreshold: decimal.NewFromInt(10000),
	}
	data.AmountContext.UserStandardDeviation = decimal.RequireFromString("1.118")

	result := e.AnalyzeRisk(data)

	assert.Contains(t, result.TriggeredRules, "sequential_amount_testing")
	assert.Contains(t, result.TriggeredRules, "gradual_amount_increase")
	assert.NotContains(t, result.TriggeredRules, "exceeds_historical_average")
}

func TestAnalyzeRisk_GradualIncreaseNeedsHigherCurrent(t *testing.T) {
	e := newTestEngine(t)

	data := payment("3.50", "user@trusted.com")
	data.AmountContext = &models.AmountContext{
		PreviousAmounts:    amounts("10", "20", "30", "40", "50"),
		UserAverageAmount:  decimal.NewFromInt(30),
		ReportingThreshold: decimal.NewFromInt(10000),
	}

	assert.NotContains(t, e.AnalyzeRisk(data).TriggeredRules, "gradual_amount_increase")
}

func TestAnalyzeRisk_AmountContextRules(t *testing.T) {
	limit := decimal.NewFromInt(2000)

	tests := []struct {
		name    string
		amount  string
		ctx     models.AmountContext
		rule    string
		trigger bool
	}{
		{
			name:    "just under reporting threshold",
			amount:  "9950",
			ctx:     models.AmountContext{ReportingThreshold: decimal.NewFromInt(10000), UserAverageAmount: decimal.NewFromInt(100000)},
			rule:    "under_reporting_threshold",
			trigger: true,
		},
		{
			name:    "at reporting threshold",
			amount:  "10000",
			ctx:     models.AmountContext{ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "under_reporting_threshold",
			trigger: false,
		},
		{
			name:    "micro then large",
			amount:  "150.25",
			ctx:     models.AmountContext{PreviousAmounts: amounts("0.99"), ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "micro_to_large_transaction",
			trigger: true,
		},
		{
			name:    "small then small",
			amount:  "50.25",
			ctx:     models.AmountContext{PreviousAmounts: amounts("0.99"), ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "micro_to_large_transaction",
			trigger: false,
		},
		{
			name:    "far above average",
			amount:  "500.25",
			ctx:     models.AmountContext{UserAverageAmount: decimal.NewFromInt(50), UserStandardDeviation: decimal.NewFromInt(10), ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "exceeds_historical_average",
			trigger: true,
		},
		{
			name:    "first time high value",
			amount:  "750.25",
			ctx:     models.AmountContext{IsFirstTimeTransaction: true, ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "first_time_high_value",
			trigger: true,
		},
		{
			name:    "returning user high value",
			amount:  "750.25",
			ctx:     models.AmountContext{IsFirstTimeTransaction: false, ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "first_time_high_value",
			trigger: false,
		},
		{
			name:    "grocery out of band",
			amount:  "450.25",
			ctx:     models.AmountContext{MerchantCategory: "grocery", ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "inconsistent_merchant_category",
			trigger: true,
		},
		{
			name:    "unknown category",
			amount:  "450.25",
			ctx:     models.AmountContext{MerchantCategory: "spaceships", ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "inconsistent_merchant_category",
			trigger: false,
		},
		{
			name:    "near credit limit",
			amount:  "1985.25",
			ctx:     models.AmountContext{CreditCardLimit: &limit, ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "maximum_credit_limit",
			trigger: true,
		},
		{
			name:    "no credit limit",
			amount:  "1985.25",
			ctx:     models.AmountContext{ReportingThreshold: decimal.NewFromInt(10000)},
			rule:    "maximum_credit_limit",
			trigger: false,
		},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := payment(tt.amount, "user@trusted.com")
			ctx := tt.ctx
			data.AmountContext = &ctx

			rules := e.AnalyzeRisk(data).TriggeredRules
			if tt.trigger {
				assert.Contains(t, rules, tt.rule)
			} else {
				assert.NotContains(t, rules, tt.rule)
			}
		})
	}
}

func TestAnalyzeRisk_NoAmountContextSkipsHistoryRules(t *testing.T) {
	e := newTestEngine(t)

	result := e.AnalyzeRisk(payment("9950.25", "user@trusted.com"))

	assert.Equal(t, []string{"large_amount", "high_value_currency"}, result.TriggeredRules)
}

func TestAnalyzeRisk_MalformedEmail(t *testing.T) {
	e := newTestEngine(t)

	data := payment("-20", "not-an-email")
	assert.Empty(t, data.Domain)

	result := e.AnalyzeRisk(data)
	assert.NotContains(t, result.TriggeredRules, "suspicious_domain")
	assert.NotContains(t, result.TriggeredRules, "test_domain")
}

func TestAnalyzeRisk_ScoreBounds(t *testing.T) {
	e := newTestEngine(t)
	limit := decimal.NewFromInt(100)

	emails := []string{"user@test.ru", "12345@example.tk", "a..b@x.com", "ok@fine.org", "", "@"}
	for i := -5; i < 40; i++ {
		for _, email := range emails {
			data := payment(fmt.Sprintf("%d.99", i*731), email)
			data.AmountContext = &models.AmountContext{
				PreviousAmounts:        amounts("1", "2", "3", "4", "5"),
				IsFirstTimeTransaction: i%2 == 0,
				MerchantCategory:       "gas",
				CreditCardLimit:        &limit,
				ReportingThreshold:     decimal.NewFromInt(10000),
			}

			result := e.AnalyzeRisk(data)
			assert.GreaterOrEqual(t, result.RiskScore, 0.0)
			assert.LessOrEqual(t, result.RiskScore, 1.0)
			assert.Equal(t, result.RiskScore >= DefaultThreshold, result.IsHighRisk)
		}
	}
}

func TestUpdateConfig_AppliesToExistingRules(t *testing.T) {
	e := newTestEngine(t)
	data := payment("150.50", "user@trusted.com")
	require.NotContains(t, e.AnalyzeRisk(data).TriggeredRules, "large_amount")

	lower := decimal.NewFromInt(100)
	cfg, err := e.UpdateConfig(ConfigUpdate{LargeAmountThreshold: &lower})
	require.NoError(t, err)
	assert.True(t, cfg.LargeAmountThreshold.Equal(lower))
	assert.Equal(t, DefaultThreshold, cfg.Threshold)

	assert.Contains(t, e.AnalyzeRisk(data).TriggeredRules, "large_amount")
}

func TestUpdateConfig_ThresholdChangesHighRisk(t *testing.T) {
	e := newTestEngine(t)
	data := payment("100.00", "user@trusted.com")
	require.False(t, e.AnalyzeRisk(data).IsHighRisk)

	threshold := 0.25
	_, err := e.UpdateConfig(ConfigUpdate{Threshold: &threshold})
	require.NoError(t, err)

	assert.True(t, e.AnalyzeRisk(data).IsHighRisk)
}

func TestUpdateConfig_SuspiciousDomains(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.UpdateConfig(ConfigUpdate{SuspiciousDomains: []string{" Evil.COM ", ""}})
	require.NoError(t, err)

	assert.Equal(t, []string{"evil.com"}, e.Config().SuspiciousDomains)
	assert.Contains(t, e.AnalyzeRisk(payment("12.50", "x@mail.evil.com")).TriggeredRules, "suspicious_domain")
	assert.NotContains(t, e.AnalyzeRisk(payment("12.50", "x@mail.ru")).TriggeredRules, "suspicious_domain")
}

func TestUpdateConfig_RejectsInvalid(t *testing.T) {
	e := newTestEngine(t)

	bad := 1.5
	_, err := e.UpdateConfig(ConfigUpdate{Threshold: &bad})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	nan := math.NaN()
	_, err = e.UpdateConfig(ConfigUpdate{Threshold: &nan})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	negative := decimal.NewFromInt(-1)
	_, err = e.UpdateConfig(ConfigUpdate{LargeAmountThreshold: &negative})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Equal(t, DefaultThreshold, e.Config().Threshold)
	assert.True(t, e.Config().LargeAmountThreshold.Equal(DefaultLargeAmountThreshold))
}

func TestConfigSnapshotIsIsolated(t *testing.T) {
	e := newTestEngine(t)

	cfg := e.Config()
	cfg.SuspiciousDomains[0] = "changed"

	assert.Equal(t, DefaultSuspiciousDomains[0], e.Config().SuspiciousDomains[0])
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Threshold = -0.1

	_, err := NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	cfg.Threshold = math.NaN()
	_, err = NewEngine(cfg)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestRegister_DuplicateName(t *testing.T) {
	e := newTestEngine(t)

	err := e.Register(DefaultRules()[0])
	assert.ErrorIs(t, err, ErrDuplicateRule)
	assert.Len(t, e.Rules(), 15)
}

func TestRules_DefaultOrder(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, []string{
		"large_amount",
		"suspicious_domain",
		"test_domain",
		"high_value_currency",
		"suspicious_email_pattern",
		"round_number_amount",
		"gradual_amount_increase",
		"under_reporting_threshold",
		"micro_to_large_transaction",
		"exceeds_historical_average",
		"first_time_high_value",
		"inconsistent_merchant_category",
		"maximum_credit_limit",
		"odd_cent_patterns",
		"sequential_amount_testing",
	}, e.Rules())
}
