package models

import (
	"strings"

	"gorm.io/gorm"
)

// AccountType is the kind of an account.
type AccountType string

const (
	Checking AccountType = "checking"
	Savings  AccountType = "savings"
	Credit   AccountType = "credit"
	Cash     AccountType = "cash"
)

// Account represents an asset account, e.g. a bank account.
type Account struct {
	DefaultModel
	Name     string      `gorm:"uniqueIndex:account_name"`
	Type     AccountType `gorm:"default:checking"`
	OnBudget bool        // Transactions of on budget accounts count for the budget
	Note     string
}

func (a Account) Self() string {
	return "Account"
}

// BeforeSave trims whitespace and validates the account type.
func (a *Account) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Note = strings.TrimSpace(a.Note)

	if a.Type == "" {
		a.Type = Checking
	}

	switch a.Type {
	case Checking, Savings, Credit, Cash:
		return nil
	default:
		return ErrAccountTypeInvalid
	}
}
