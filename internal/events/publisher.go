// Package events publishes routing decisions to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

const DecisionTopic = "payment.decision"

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// DecisionEvent is the message body for a routing decision.
type DecisionEvent struct {
	TransactionID  string          `json:"transaction_id"`
	Email          string          `json:"email"`
	Provider       models.Provider `json:"provider"`
	Status         models.Status   `json:"status"`
	RiskScore      float64         `json:"risk_score"`
	TriggeredRules []string        `json:"triggered_rules"`
	Timestamp      time.Time       `json:"timestamp"`
}

type KafkaPublisher struct {
	writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

// NewWriter builds the Kafka writer for the decision topic.
func NewWriter(brokers string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers),
		Topic:    DecisionTopic,
		Balancer: &kafka.LeastBytes{},
	}
}

// PublishDecision writes one event keyed by transaction id.
func (p *KafkaPublisher) PublishDecision(ctx context.Context, tx *models.Transaction) error {
	event := DecisionEvent{
		TransactionID: tx.ID,
		Email:         tx.Email,
		Provider:      tx.Provider,
		Status:        tx.Status,
		RiskScore:     tx.RiskScore,
		Timestamp:     tx.Timestamp,
	}
	if tx.Metadata != nil {
		event.TriggeredRules = tx.Metadata.TriggeredRules
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode decision event: %w", err)
	}

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(tx.ID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("publish decision %s: %w", tx.ID, err)
	}
	return nil
}
