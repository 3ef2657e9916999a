package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

var (
	PaymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_router",
			Name:      "payments_total",
			Help:      "Payments processed by routed provider and status.",
		},
		[]string{"provider", "status"},
	)

	RiskScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "payment_router",
			Name:      "risk_score",
			Help:      "Distribution of computed risk scores.",
			Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
	)

	RuleTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment_router",
			Name:      "rule_triggers_total",
			Help:      "Times each fraud rule fired.",
		},
		[]string{"rule"},
	)

	ExplanationFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "payment_router",
			Name:      "explanation_fallbacks_total",
			Help:      "Payments explained with the local fallback text.",
		},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payment_router",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		PaymentsTotal,
		RiskScore,
		RuleTriggersTotal,
		ExplanationFallbacksTotal,
		HTTPRequestDuration,
	)
}

// ObservePayment records the outcome of one routed payment.
func ObservePayment(tx *models.Transaction, triggered []string) {
	PaymentsTotal.WithLabelValues(string(tx.Provider), string(tx.Status)).Inc()
	RiskScore.Observe(tx.RiskScore)
	for _, rule := range triggered {
		RuleTriggersTotal.WithLabelValues(rule).Inc()
	}
}

func ObserveHTTPRequest(method, path string, status int, d time.Duration) {
	if path == "" {
		path = "unmatched"
	}
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(d.Seconds())
}
