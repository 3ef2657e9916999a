package amount

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

type stubHistory map[string][]*models.Transaction

func (s stubHistory) TransactionsByEmail(email string) []*models.Transaction {
	return s[email]
}

func history(values ...string) []*models.Transaction {
	out := make([]*models.Transaction, len(values))
	for i, v := range values {
		out[i] = &models.Transaction{Amount: decimal.RequireFromString(v)}
	}
	return out
}

func TestBuild_EmptyHistory(t *testing.T) {
	a := NewAnalyzer(stubHistory{})

	ctx := a.Build("new@user.com", decimal.NewFromInt(50), "USD")

	assert.Empty(t, ctx.PreviousAmounts)
	assert.True(t, ctx.IsFirstTimeTransaction)
	assert.True(t, ctx.UserAverageAmount.IsZero())
	assert.True(t, ctx.UserStandardDeviation.IsZero())
	assert.Equal(t, DefaultMerchantCategory, ctx.MerchantCategory)
	require.NotNil(t, ctx.CreditCardLimit)
	assert.True(t, ctx.CreditCardLimit.Equal(DefaultCreditLimit))
	assert.True(t, ctx.ReportingThreshold.Equal(decimal.NewFromInt(10000)))
	assert.True(t, ctx.Amount.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "USD", ctx.Currency)
}

func TestBuild_MeanAndPopulationStdDev(t *testing.T) {
	a := NewAnalyzer(stubHistory{
		"u@x.com": history("2", "4", "4", "4", "5", "5", "7", "9"),
	})

	ctx := a.Build("u@x.com", decimal.NewFromInt(3), "EUR")

	assert.False(t, ctx.IsFirstTimeTransaction)
	assert.Len(t, ctx.PreviousAmounts, 8)
	assert.True(t, ctx.UserAverageAmount.Equal(decimal.NewFromInt(5)))
	assert.True(t, ctx.UserStandardDeviation.Equal(decimal.NewFromInt(2)))
}

func TestBuild_PreservesChronologicalOrder(t *testing.T) {
	a := NewAnalyzer(stubHistory{"u@x.com": history("1.00", "2.00", "3.00")})

	ctx := a.Build("u@x.com", decimal.NewFromInt(4), "USD")

	require.Len(t, ctx.PreviousAmounts, 3)
	assert.True(t, ctx.PreviousAmounts[0].Equal(decimal.NewFromInt(1)))
	assert.True(t, ctx.PreviousAmounts[2].Equal(decimal.NewFromInt(3)))
}

func TestBuild_Overrides(t *testing.T) {
	a := NewAnalyzer(nil, WithMerchantCategory("travel"), WithCreditLimit(decimal.NewFromInt(2500)))
	ctx := a.Build("u@x.com", decimal.NewFromInt(10), "usd")
	assert.Equal(t, "travel", ctx.MerchantCategory)
	assert.True(t, ctx.CreditCardLimit.Equal(decimal.NewFromInt(2500)))

	a = NewAnalyzer(nil, WithoutCreditLimit())
	assert.Nil(t, a.Build("u@x.com", decimal.NewFromInt(10), "USD").CreditCardLimit)
}

func TestBuild_CreditLimitIsCopied(t *testing.T) {
	a := NewAnalyzer(nil)

	first := a.Build("u@x.com", decimal.NewFromInt(10), "USD")
	*first.CreditCardLimit = decimal.NewFromInt(1)

	second := a.Build("u@x.com", decimal.NewFromInt(10), "USD")
	assert.True(t, second.CreditCardLimit.Equal(DefaultCreditLimit))
}

func TestReportingThreshold(t *testing.T) {
	for _, c := range []string{"USD", "EUR", "GBP", "CAD", "AUD", "gbp", "JPY", ""} {
		assert.True(t, ReportingThreshold(c).Equal(decimal.NewFromInt(10000)), c)
	}
}

func TestCategoryBand(t *testing.T) {
	b, ok := CategoryBand("gas")
	require.True(t, ok)
	assert.True(t, b.Contains(decimal.NewFromInt(20)))
	assert.True(t, b.Contains(decimal.NewFromInt(100)))
	assert.False(t, b.Contains(decimal.RequireFromString("100.01")))
	assert.False(t, b.Contains(decimal.NewFromInt(5)))

	_, ok = CategoryBand("unknown")
	assert.False(t, ok)
}
