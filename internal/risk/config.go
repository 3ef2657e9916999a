package risk

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidConfig = errors.New("invalid risk config")
	ErrDuplicateRule = errors.New("duplicate rule name")
)

const DefaultThreshold = 0.5

var (
	DefaultLargeAmountThreshold = decimal.NewFromInt(5000)
	DefaultSuspiciousDomains    = []string{
		".ru", ".tk", ".ml", ".ga", ".cf", ".xyz",
		"tempmail.com", "mailinator.com", "guerrillamail.com", "10minutemail.com",
	}
)

// Config holds the tunable parameters every rule reads at evaluation time.
type Config struct {
	Threshold            float64         `json:"threshold"`
	LargeAmountThreshold decimal.Decimal `json:"largeAmountThreshold"`
	SuspiciousDomains    []string        `json:"suspiciousDomains"`
	// RapidFireWindow enables the rapid_fire_attempts rule when positive.
	RapidFireWindow time.Duration `json:"rapidFireWindow"`
}

func DefaultConfig() Config {
	return Config{
		Threshold:            DefaultThreshold,
		LargeAmountThreshold: DefaultLargeAmountThreshold,
		SuspiciousDomains:    append([]string(nil), DefaultSuspiciousDomains...),
	}
}

func (c Config) Validate() error {
	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("%w: threshold %v outside [0,1]", ErrInvalidConfig, c.Threshold)
	}
	if c.LargeAmountThreshold.IsNegative() {
		return fmt.Errorf("%w: largeAmountThreshold must be >= 0", ErrInvalidConfig)
	}
	if c.RapidFireWindow < 0 {
		return fmt.Errorf("%w: rapidFireWindow must be >= 0", ErrInvalidConfig)
	}
	return nil
}

func (c Config) clone() Config {
	c.SuspiciousDomains = append([]string(nil), c.SuspiciousDomains...)
	return c
}

// ConfigUpdate is a partial config; nil fields keep their current value.
type ConfigUpdate struct {
	Threshold            *float64         `json:"threshold,omitempty"`
	LargeAmountThreshold *decimal.Decimal `json:"largeAmountThreshold,omitempty"`
	SuspiciousDomains    []string         `json:"suspiciousDomains,omitempty"`
	RapidFireWindow      *time.Duration   `json:"rapidFireWindow,omitempty"`
}

// Merge returns c with every non-nil field of u applied.
func (c Config) Merge(u ConfigUpdate) Config {
	out := c.clone()
	if u.Threshold != nil {
		out.Threshold = *u.Threshold
	}
	if u.LargeAmountThreshold != nil {
		out.LargeAmountThreshold = *u.LargeAmountThreshold
	}
	if u.SuspiciousDomains != nil {
		domains := make([]string, 0, len(u.SuspiciousDomains))
		for _, d := range u.SuspiciousDomains {
			if d = strings.TrimSpace(d); d != "" {
				domains = append(domains, strings.ToLower(d))
			}
		}
		out.SuspiciousDomains = domains
	}
	if u.RapidFireWindow != nil {
		out.RapidFireWindow = *u.RapidFireWindow
	}
	return out
}
