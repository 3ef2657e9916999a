package explain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

const DefaultSubject = "payment.explain"

var ErrEmptyExplanation = errors.New("explainer returned empty explanation")

// Request is the payload sent to the explanation service.
type Request struct {
	Data     *models.FraudAnalysisData `json:"data"`
	Result   models.RiskResult         `json:"result"`
	Provider models.Provider           `json:"provider"`
	Status   models.Status             `json:"status"`
}

// Response is the explanation service reply.
type Response struct {
	Explanation string `json:"explanation"`
	Error       string `json:"error,omitempty"`
}

// NATSExplainer asks a remote text-generation worker for an explanation
// over NATS request/reply.
type NATSExplainer struct {
	nc      *nats.Conn
	subject string
}

func NewNATSExplainer(nc *nats.Conn, subject string) *NATSExplainer {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATSExplainer{nc: nc, subject: subject}
}

// Explain blocks until a reply arrives or ctx is done.
func (e *NATSExplainer) Explain(ctx context.Context, data *models.FraudAnalysisData, result models.RiskResult, provider models.Provider, status models.Status) (string, error) {
	payload, err := json.Marshal(Request{Data: data, Result: result, Provider: provider, Status: status})
	if err != nil {
		return "", fmt.Errorf("encode explain request: %w", err)
	}

	msg, err := e.nc.RequestWithContext(ctx, e.subject, payload)
	if err != nil {
		return "", fmt.Errorf("explain request: %w", err)
	}

	return decodeResponse(msg.Data)
}

func decodeResponse(raw []byte) (string, error) {
	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode explain response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("explainer: %s", resp.Error)
	}
	text := strings.TrimSpace(resp.Explanation)
	if text == "" {
		return "", ErrEmptyExplanation
	}
	return text, nil
}
