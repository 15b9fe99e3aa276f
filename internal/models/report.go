package models

import (
	"context"
	"time"

	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportFilter restricts the transactions aggregated in a report.
type ReportFilter struct {
	FromDate  time.Time // Zero for no lower bound
	UntilDate time.Time // Zero for no upper bound
	Type      selection.TransactionType
}

func (f ReportFilter) scope(db *gorm.DB) *gorm.DB {
	if !f.FromDate.IsZero() {
		db = db.Where("transactions.date >= ?", Day(f.FromDate))
	}

	if !f.UntilDate.IsZero() {
		db = db.Where("transactions.date <= ?", Day(f.UntilDate))
	}

	if f.Type != "" {
		db = db.Where("transactions.type = ?", f.Type)
	}

	return db
}

// CategoryReport is the total of all transactions in a category.
type CategoryReport struct {
	CategoryID   *uuid.UUID `json:"categoryId" example:"9a0dcb53-ba5f-4d02-ab06-8e4e0c1b5e4e"` // ID of the category, null for uncategorized transactions
	CategoryName *string    `json:"categoryName" example:"Groceries"`
	Colour       *string    `json:"colour" example:"#4CAF50"`
	Total        int64      `json:"total" example:"-43120"` // Sum of the transaction amounts in cents
	Count        int64      `json:"count" example:"12"`     // Number of transactions
}

// AccountReport is the total of all transactions of an account.
type AccountReport struct {
	AccountID   uuid.UUID   `json:"accountId" example:"1e3c5b2a-3a7f-4a0c-9c0d-2f8b8f1f3c11"`
	AccountName string      `json:"accountName" example:"Current account"`
	AccountType AccountType `json:"accountType" example:"checking"`
	Total       int64       `json:"total" example:"125000"`
	Count       int64       `json:"count" example:"31"`
}

// ReportByCategory aggregates transactions by category, ordered by name.
// Uncategorized transactions are reported last.
func (s *Store) ReportByCategory(ctx context.Context, f ReportFilter) ([]CategoryReport, error) {
	reports := []CategoryReport{}
	err := s.db.WithContext(ctx).Table("transactions").
		Select("transactions.category_id AS category_id, categories.name AS category_name, categories.colour AS colour, SUM(transactions.amount) AS total, COUNT(*) AS count").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id").
		Scopes(f.scope).
		Group("transactions.category_id, categories.name, categories.colour").
		Order("categories.name IS NULL, categories.name ASC").
		Scan(&reports).Error

	return reports, err
}

// ReportByAccount aggregates transactions by account, ordered by name.
func (s *Store) ReportByAccount(ctx context.Context, f ReportFilter) ([]AccountReport, error) {
	reports := []AccountReport{}
	err := s.db.WithContext(ctx).Table("transactions").
		Select("transactions.account_id AS account_id, accounts.name AS account_name, accounts.type AS account_type, SUM(transactions.amount) AS total, COUNT(*) AS count").
		Joins("JOIN accounts ON accounts.id = transactions.account_id").
		Scopes(f.scope).
		Group("transactions.account_id, accounts.name, accounts.type").
		Order("accounts.name ASC").
		Scan(&reports).Error

	return reports, err
}
