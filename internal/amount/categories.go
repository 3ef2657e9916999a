package amount

import "github.com/shopspring/decimal"

// Band is the typical amount range for a merchant category.
type Band struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

func band(min, max int64) Band {
	return Band{Min: decimal.NewFromInt(min), Max: decimal.NewFromInt(max)}
}

var categoryBands = map[string]Band{
	"grocery":       band(10, 200),
	"gas":           band(20, 100),
	"restaurant":    band(5, 150),
	"retail":        band(10, 1000),
	"electronics":   band(50, 5000),
	"jewelry":       band(100, 10000),
	"travel":        band(100, 5000),
	"utilities":     band(20, 500),
	"subscription":  band(5, 100),
	"digital_goods": band(1, 200),
}

// CategoryBand looks up the amount band for a merchant category.
func CategoryBand(category string) (Band, bool) {
	b, ok := categoryBands[category]
	return b, ok
}

// Contains reports whether amount lies within the band, bounds inclusive.
func (b Band) Contains(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(b.Min) && amount.LessThanOrEqual(b.Max)
}
