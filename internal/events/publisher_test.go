package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublishDecision(t *testing.T) {
	w := &recordingWriter{}
	p := NewKafkaPublisher(w)
	tx := &models.Transaction{
		ID:        "tx-1",
		Email:     "a@b.com",
		Provider:  models.ProviderPaypal,
		Status:    models.StatusSuccess,
		RiskScore: 0.3,
		Timestamp: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Metadata:  &models.TransactionMetadata{TriggeredRules: []string{"round_number_amount"}},
	}

	require.NoError(t, p.PublishDecision(context.Background(), tx))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "tx-1", string(w.msgs[0].Key))

	var event DecisionEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, "tx-1", event.TransactionID)
	assert.Equal(t, models.ProviderPaypal, event.Provider)
	assert.Equal(t, []string{"round_number_amount"}, event.TriggeredRules)
	assert.True(t, tx.Timestamp.Equal(event.Timestamp))
}

func TestPublishDecision_WriterError(t *testing.T) {
	p := NewKafkaPublisher(&recordingWriter{err: errors.New("broker down")})

	err := p.PublishDecision(context.Background(), &models.Transaction{ID: "tx-2"})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewWriter(t *testing.T) {
	w := NewWriter("localhost:9092")
	defer w.Close()
	assert.Equal(t, DecisionTopic, w.Topic)
}
