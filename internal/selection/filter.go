package selection

import (
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
)

// TransactionType is the direction of a transaction.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// Valid reports whether the type is known.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Filter restricts a transaction list. Zero values do not filter.
//
// Filters are compared with ==, every field must stay comparable.
type Filter struct {
	AccountID     uuid.UUID       `json:"accountId"`     // Only transactions of this account
	CategoryID    uuid.UUID       `json:"categoryId"`    // Only transactions in this category
	Uncategorized bool            `json:"uncategorized"` // Only transactions without category. Takes precedence over CategoryID
	FromDate      string          `json:"fromDate"`      // Transactions on or after this date, YYYY-MM-DD
	UntilDate     string          `json:"untilDate"`     // Transactions on or before this date, YYYY-MM-DD
	Search        string          `json:"search"`        // Description contains this
	Type          TransactionType `json:"type"`          // Only transactions of this type
}

// InMonth returns a copy of the filter restricted to the month of the cursor.
func (f Filter) InMonth(c types.MonthCursor) Filter {
	f.FromDate, f.UntilDate = c.DateRange()
	return f
}

// Page selects a window of a list.
type Page struct {
	Offset int
	Limit  int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Normalize applies the default and maximum page size.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}

	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}

	if p.Offset < 0 {
		p.Offset = 0
	}

	return p
}
