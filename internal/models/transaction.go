package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/envelope-zero/tracker/internal/money"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxDescriptionLength is the maximum length of a transaction description in bytes.
const MaxDescriptionLength = 500

// Transaction is money flowing in or out of an account.
//
// Amounts are signed: income is positive, expenses are negative.
type Transaction struct {
	DefaultModel
	AccountID   uuid.UUID  `gorm:"type:uuid;index"`
	Account     Account    `json:"-"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index"`
	Category    *Category  `json:"-"`
	Date        time.Time  `gorm:"index"` // Always 00:00 UTC
	Amount      int64
	Description string
	Type        selection.TransactionType
	ImportHash  string `gorm:"index"` // SHA256 hash of the imported CSV record for duplicate detection
}

func (t Transaction) Self() string {
	return "Transaction"
}

// AfterFind enforces dates to be in UTC.
func (t *Transaction) AfterFind(tx *gorm.DB) (err error) {
	err = t.Timestamps.AfterFind(tx)
	if err != nil {
		return err
	}

	t.Date = t.Date.In(time.UTC)
	return nil
}

// BeforeSave
//   - truncates the date to the day in UTC
//   - validates the type and makes the sign of the amount match it
//   - trims whitespace and caps the description length
func (t *Transaction) BeforeSave(_ *gorm.DB) (err error) {
	t.Description = strings.TrimSpace(t.Description)
	t.Description = TruncateDescription(t.Description)
	t.ImportHash = strings.TrimSpace(t.ImportHash)

	// Ensure that the Category ID is nil and not a pointer to a nil UUID
	if t.CategoryID != nil && *t.CategoryID == uuid.Nil {
		t.CategoryID = nil
	}

	if t.Date.IsZero() {
		t.Date = time.Now()
	}
	t.Date = Day(t.Date)

	if t.Amount == 0 {
		return ErrTransactionAmountZero
	}

	if t.Type == "" {
		t.Type = selection.Expense
		if t.Amount > 0 {
			t.Type = selection.Income
		}
	}

	switch t.Type {
	case selection.Income:
		t.Amount = money.Abs(t.Amount)
	case selection.Expense:
		t.Amount = -money.Abs(t.Amount)
	default:
		return ErrTransactionType
	}

	return nil
}

// TruncateDescription cuts s to at most MaxDescriptionLength bytes
// without splitting a multi-byte character.
func TruncateDescription(s string) string {
	if len(s) <= MaxDescriptionLength {
		return s
	}

	cut := MaxDescriptionLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Day returns midnight UTC of the day t falls on in its location.
func Day(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
