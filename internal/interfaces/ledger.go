package interfaces

import (
	"github.com/akylbek/payment-system/payment-router/internal/models"
)

// HistoryProvider supplies a payer's prior transactions, oldest first.
type HistoryProvider interface {
	TransactionsByEmail(email string) []*models.Transaction
}
