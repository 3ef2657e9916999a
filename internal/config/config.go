// Package config loads service configuration from the environment
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/payment-router/internal/amount"
	"github.com/akylbek/payment-system/payment-router/internal/risk"
)

const (
	DefaultPort            = "8082"
	DefaultExplainTimeout  = 5 * time.Second
	DefaultExplainCacheTTL = time.Hour
)

type Config struct {
	Port           string
	DatabaseURL    string // optional write-only archive
	RedisURL       string // optional explanation cache
	KafkaBrokers   string // optional decision events and request intake
	NatsURL        string // optional remote explainer
	JaegerEndpoint string

	ExplainTimeout  time.Duration
	ExplainCacheTTL time.Duration

	MerchantCategory string
	CreditCardLimit  *decimal.Decimal // nil disables the card limit rule

	Risk risk.Config
}

// Load reads configuration from environment variables, after loading a
// .env file if one is present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:             getEnv("PORT", DefaultPort),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		KafkaBrokers:     os.Getenv("KAFKA_BROKERS"),
		NatsURL:          os.Getenv("NATS_URL"),
		JaegerEndpoint:   os.Getenv("JAEGER_ENDPOINT"),
		MerchantCategory: getEnv("MERCHANT_CATEGORY", amount.DefaultMerchantCategory),
		Risk:             risk.DefaultConfig(),
	}

	var err error
	if cfg.ExplainTimeout, err = getEnvDuration("EXPLAIN_TIMEOUT", DefaultExplainTimeout); err != nil {
		return nil, err
	}
	if cfg.ExplainCacheTTL, err = getEnvDuration("EXPLAIN_CACHE_TTL", DefaultExplainCacheTTL); err != nil {
		return nil, err
	}
	if cfg.Risk.RapidFireWindow, err = getEnvDuration("RAPID_FIRE_WINDOW", 0); err != nil {
		return nil, err
	}

	if v := os.Getenv("RISK_THRESHOLD"); v != "" {
		if cfg.Risk.Threshold, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("RISK_THRESHOLD: %w", err)
		}
	}
	if v := os.Getenv("LARGE_AMOUNT_THRESHOLD"); v != "" {
		if cfg.Risk.LargeAmountThreshold, err = decimal.NewFromString(v); err != nil {
			return nil, fmt.Errorf("LARGE_AMOUNT_THRESHOLD: %w", err)
		}
	}
	if v, ok := os.LookupEnv("SUSPICIOUS_DOMAINS"); ok {
		cfg.Risk.SuspiciousDomains = splitList(v)
	}

	limit := amount.DefaultCreditLimit
	cfg.CreditCardLimit = &limit
	if v, ok := os.LookupEnv("CREDIT_CARD_LIMIT"); ok {
		if strings.TrimSpace(v) == "" || strings.EqualFold(v, "none") {
			cfg.CreditCardLimit = nil
		} else {
			parsed, err := decimal.NewFromString(v)
			if err != nil {
				return nil, fmt.Errorf("CREDIT_CARD_LIMIT: %w", err)
			}
			cfg.CreditCardLimit = &parsed
		}
	}

	if err := cfg.Risk.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// AnalyzerOptions translates the amount defaults into analyzer options.
func (c *Config) AnalyzerOptions() []amount.Option {
	opts := []amount.Option{amount.WithMerchantCategory(c.MerchantCategory)}
	if c.CreditCardLimit == nil {
		return append(opts, amount.WithoutCreditLimit())
	}
	return append(opts, amount.WithCreditLimit(*c.CreditCardLimit))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}
	return out
}
