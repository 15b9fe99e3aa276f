package models

import (
	"errors"

	"github.com/envelope-zero/tracker/internal/budget"
)

var (
	ErrGeneral          = errors.New("an error occurred on the server during your request")
	ErrResourceNotFound = budget.ErrNotFound
)

var (
	ErrAccountNameNotUnique  = errors.New("the account name must be unique")
	ErrAccountTypeInvalid    = errors.New("the account type must be one of checking, savings, credit or cash")
	ErrAccountInUse          = errors.New("accounts with transactions cannot be deleted")
	ErrCategoryNameNotUnique = errors.New("the category name must be unique")
	ErrCategoryNameEmpty     = errors.New("the category name must not be empty")
	ErrColourInvalid         = errors.New("the colour must be a hex colour like #4CAF50")
	ErrTransactionType       = errors.New("the transaction type must be income or expense")
	ErrTransactionAmountZero = errors.New("the transaction amount must not be 0")
	ErrMatchRuleEmpty        = errors.New("the match rule must not be empty")
	ErrImportHashNotUnique   = errors.New("a transaction with this import hash already exists")
)
