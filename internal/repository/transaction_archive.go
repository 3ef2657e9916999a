package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

// TransactionArchive keeps a write-only audit copy of routing decisions.
// The in-memory ledger never reads it back.
type TransactionArchive struct {
	db *sql.DB
}

func NewTransactionArchive(db *sql.DB) *TransactionArchive {
	return &TransactionArchive{db: db}
}

func (r *TransactionArchive) InitDB() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS routed_transactions (
			id VARCHAR(64) PRIMARY KEY,
			amount NUMERIC(20, 4) NOT NULL,
			currency CHAR(3) NOT NULL,
			email VARCHAR(320) NOT NULL,
			source VARCHAR(255),
			provider VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			risk_score NUMERIC(4, 2) NOT NULL,
			triggered_rules TEXT[],
			is_high_risk BOOLEAN NOT NULL DEFAULT FALSE,
			explanation TEXT,
			metadata JSONB,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_routed_transactions_email ON routed_transactions(LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_routed_transactions_status ON routed_transactions(status)`,
	}

	for _, query := range queries {
		if _, err := r.db.Exec(query); err != nil {
			return err
		}
	}

	return nil
}

func (r *TransactionArchive) Insert(ctx context.Context, tx *models.Transaction) error {
	var (
		rules    []string
		highRisk bool
		metadata sql.NullString
	)
	if tx.Metadata != nil {
		rules = tx.Metadata.TriggeredRules
		highRisk = tx.Metadata.IsHighRisk
		encoded, err := json.Marshal(tx.Metadata)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		metadata = sql.NullString{String: string(encoded), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO routed_transactions
			(id, amount, currency, email, source, provider, status, risk_score,
			 triggered_rules, is_high_risk, explanation, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO NOTHING
	`, tx.ID, tx.Amount.String(), tx.Currency, tx.Email, tx.Source, string(tx.Provider), string(tx.Status),
		tx.RiskScore, pq.Array(rules), highRisk, tx.Explanation, metadata, tx.Timestamp)
	return err
}
