// Package ledger keeps the in-memory, append-only record of routing
// decisions and answers lookups, filtered queries and aggregate stats.
package ledger

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

var ErrNotFound = errors.New("transaction not found")

// Ledger is safe for concurrent use. Every transaction handed out is a copy.
type Ledger struct {
	mu      sync.RWMutex
	entries []*models.Transaction
	now     func() time.Time
}

func New() *Ledger {
	return &Ledger{now: time.Now}
}

// Create builds a transaction with a fresh id and the current time.
// It does not add it to the ledger.
func (l *Ledger) Create(f models.TransactionFields) *models.Transaction {
	tx := &models.Transaction{
		ID:          uuid.NewString(),
		Amount:      f.Amount,
		Currency:    f.Currency,
		Email:       f.Email,
		Source:      f.Source,
		Provider:    f.Provider,
		Status:      f.Status,
		RiskScore:   f.RiskScore,
		Explanation: f.Explanation,
		Timestamp:   l.now(),
		Metadata:    f.Metadata,
	}
	return tx.Clone()
}

// Append adds tx to the end of the ledger as-is.
func (l *Ledger) Append(tx *models.Transaction) {
	c := tx.Clone()
	l.mu.Lock()
	l.entries = append(l.entries, c)
	l.mu.Unlock()
}

func (l *Ledger) Get(id string) (*models.Transaction, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, tx := range l.entries {
		if tx.ID == id {
			return tx.Clone(), true
		}
	}
	return nil, false
}

// All returns a snapshot of every transaction in insertion order.
func (l *Ledger) All() []*models.Transaction {
	return l.filter(func(*models.Transaction) bool { return true })
}

// ByEmail matches email exactly, ignoring case.
func (l *Ledger) ByEmail(email string) []*models.Transaction {
	return l.filter(func(tx *models.Transaction) bool {
		return strings.EqualFold(tx.Email, email)
	})
}

// TransactionsByEmail returns a payer's history oldest first.
func (l *Ledger) TransactionsByEmail(email string) []*models.Transaction {
	return l.ByEmail(email)
}

func (l *Ledger) ByStatus(status models.Status) []*models.Transaction {
	return l.filter(func(tx *models.Transaction) bool {
		return tx.Status == status
	})
}

// ByDateRange returns entries with start <= timestamp <= end. An inverted
// range yields nothing.
func (l *Ledger) ByDateRange(start, end time.Time) []*models.Transaction {
	if start.After(end) {
		return []*models.Transaction{}
	}
	return l.filter(func(tx *models.Transaction) bool {
		return !tx.Timestamp.Before(start) && !tx.Timestamp.After(end)
	})
}

// Stats aggregates counts and amounts over the whole ledger.
func (l *Ledger) Stats() models.TransactionStats {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stats := models.TransactionStats{
		Total:         len(l.entries),
		ByStatus:      make(map[models.Status]int),
		ByProvider:    make(map[models.Provider]int),
		TotalAmount:   decimal.Zero,
		AverageAmount: decimal.Zero,
	}
	for _, tx := range l.entries {
		stats.ByStatus[tx.Status]++
		stats.ByProvider[tx.Provider]++
		stats.TotalAmount = stats.TotalAmount.Add(tx.Amount)
	}
	if stats.Total > 0 {
		stats.AverageAmount = stats.TotalAmount.Div(decimal.NewFromInt(int64(stats.Total)))
	}
	return stats
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Clear removes every transaction.
func (l *Ledger) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

func (l *Ledger) filter(keep func(*models.Transaction) bool) []*models.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*models.Transaction, 0, len(l.entries))
	for _, tx := range l.entries {
		if keep(tx) {
			out = append(out, tx.Clone())
		}
	}
	return out
}
