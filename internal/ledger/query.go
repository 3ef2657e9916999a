package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/akylbek/payment-system/payment-router/internal/models"
)

type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByAmount    SortField = "amount"
	SortByRiskScore SortField = "riskScore"
	SortByEmail     SortField = "email"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Filter narrows, orders and pages a query. Zero values are ignored.
type Filter struct {
	Email     string // case-insensitive substring
	Status    models.Status
	Provider  models.Provider
	StartDate *time.Time
	EndDate   *time.Time
	SortBy    SortField
	SortOrder SortOrder
	// Page is 1-based. Paging only applies when Page and Limit are both set.
	Page  int
	Limit int
}

// ParseSortField validates a sort key from an external caller.
func ParseSortField(s string) (SortField, error) {
	switch f := SortField(s); f {
	case "", SortByTimestamp, SortByAmount, SortByRiskScore, SortByEmail:
		return f, nil
	}
	return "", fmt.Errorf("unsupported sort field %q", s)
}

// ParseSortOrder validates a sort order from an external caller.
func ParseSortOrder(s string) (SortOrder, error) {
	switch o := SortOrder(strings.ToLower(s)); o {
	case "", SortAsc, SortDesc:
		return o, nil
	}
	return "", fmt.Errorf("unsupported sort order %q", s)
}

// Query applies f's filters in order, then sorts, then pages. Pages past
// the end come back empty.
func (l *Ledger) Query(f Filter) []*models.Transaction {
	email := strings.ToLower(f.Email)
	results := l.filter(func(tx *models.Transaction) bool {
		if email != "" && !strings.Contains(strings.ToLower(tx.Email), email) {
			return false
		}
		if f.Status != "" && tx.Status != f.Status {
			return false
		}
		if f.Provider != "" && tx.Provider != f.Provider {
			return false
		}
		if f.StartDate != nil && tx.Timestamp.Before(*f.StartDate) {
			return false
		}
		if f.EndDate != nil && tx.Timestamp.After(*f.EndDate) {
			return false
		}
		return true
	})

	sortTransactions(results, f.SortBy, f.SortOrder)

	if f.Page > 0 && f.Limit > 0 {
		// (Page-1)*Limit can overflow, so compare page counts first.
		pages := len(results) / f.Limit
		if len(results)%f.Limit != 0 {
			pages++
		}
		if f.Page > pages {
			return []*models.Transaction{}
		}
		start := (f.Page - 1) * f.Limit
		end := start + f.Limit
		if end > len(results) {
			end = len(results)
		}
		results = results[start:end]
	}
	return results
}

func sortTransactions(txs []*models.Transaction, by SortField, order SortOrder) {
	if by == "" {
		by, order = SortByTimestamp, SortDesc
	}
	// Anything but an explicit ascending order sorts descending.
	desc := order != SortAsc

	sort.SliceStable(txs, func(i, j int) bool {
		c := compare(txs[i], txs[j], by)
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compare(a, b *models.Transaction, by SortField) int {
	switch by {
	case SortByAmount:
		return a.Amount.Cmp(b.Amount)
	case SortByRiskScore:
		switch {
		case a.RiskScore < b.RiskScore:
			return -1
		case a.RiskScore > b.RiskScore:
			return 1
		}
		return 0
	case SortByEmail:
		return strings.Compare(a.Email, b.Email)
	default:
		return a.Timestamp.Compare(b.Timestamp)
	}
}
