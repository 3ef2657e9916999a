package explain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-router/internal/interfaces"
	"github.com/akylbek/payment-system/payment-router/internal/models"
	"github.com/akylbek/payment-system/payment-router/internal/telemetry"
)

const DefaultCacheTTL = time.Hour

// CachedExplainer memoizes explanations in Redis. Identical scoring
// inputs produce the same cache key.
type CachedExplainer struct {
	next  interfaces.Explainer
	redis redis.Cmdable
	ttl   time.Duration
}

func NewCachedExplainer(next interfaces.Explainer, client redis.Cmdable, ttl time.Duration) *CachedExplainer {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedExplainer{next: next, redis: client, ttl: ttl}
}

func (c *CachedExplainer) Explain(ctx context.Context, data *models.FraudAnalysisData, result models.RiskResult, provider models.Provider, status models.Status) (string, error) {
	key := CacheKey(data, result, provider, status)

	cached, err := c.redis.Get(ctx, key).Result()
	if err == nil && cached != "" {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		telemetry.Logger.Warn("Explanation cache read failed", zap.String("key", key), zap.Error(err))
	}

	text, err := c.next.Explain(ctx, data, result, provider, status)
	if err != nil {
		return "", err
	}

	if err := c.redis.Set(ctx, key, text, c.ttl).Err(); err != nil {
		telemetry.Logger.Warn("Explanation cache write failed", zap.String("key", key), zap.Error(err))
	}
	return text, nil
}

// CacheKey hashes the inputs that determine an explanation.
func CacheKey(data *models.FraudAnalysisData, result models.RiskResult, provider models.Provider, status models.Status) string {
	var b strings.Builder
	if data != nil {
		fmt.Fprintf(&b, "%s|%s|%s|", data.Amount.String(), strings.ToUpper(data.Currency), data.Domain)
	}
	fmt.Fprintf(&b, "%.2f|%t|%s|%s|%s", result.RiskScore, result.IsHighRisk, strings.Join(result.TriggeredRules, ","), provider, status)

	sum := sha256.Sum256([]byte(b.String()))
	return "explanation:" + hex.EncodeToString(sum[:])
}
