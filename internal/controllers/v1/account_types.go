package v1

import (
	"fmt"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/gin-gonic/gin"
)

// AccountEditable represents all user configurable parameters
type AccountEditable struct {
	Name     string             `json:"name" example:"Current account" default:""`        // Name of the account
	Type     models.AccountType `json:"type" example:"checking" default:"checking"`       // One of checking, savings, credit or cash
	OnBudget *bool              `json:"onBudget" example:"true" default:"true"`           // Do transactions of the account count for the budget?
	Note     string             `json:"note" example:"Joint account with Sam" default:""` // A longer description for the account
}

func (editable AccountEditable) model() models.Account {
	onBudget := true
	if editable.OnBudget != nil {
		onBudget = *editable.OnBudget
	}

	return models.Account{
		Name:     editable.Name,
		Type:     editable.Type,
		OnBudget: onBudget,
		Note:     editable.Note,
	}
}

// AccountCreate is the data for a new account.
type AccountCreate struct {
	AccountEditable
	StartingBalance string `json:"startingBalance" example:"1250.00" default:""` // Decimal balance of the account when it is created
}

type AccountLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/accounts/af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`                      // The account itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?account=af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"` // Transactions of the account
}

type Account struct {
	models.DefaultModel
	AccountEditable
	Links AccountLinks `json:"links"`

	// These fields are computed
	Balance          int64  `json:"balance" example:"125000"`             // Sum of all transactions, in cents
	BalanceFormatted string `json:"balanceFormatted" example:"£1,250.00"` // Balance for display
	HasTransactions  bool   `json:"hasTransactions" example:"true"`       // Accounts with transactions cannot be deleted
}

func (co Controller) newAccount(c *gin.Context, model models.Account) (Account, error) {
	url := c.GetString(string(models.DBContextURL))

	balance, err := co.Store.Balance(c.Request.Context(), model.ID)
	if err != nil {
		return Account{}, err
	}

	used, err := co.Store.AccountsWithTransactions(c.Request.Context(), model.ID)
	if err != nil {
		return Account{}, err
	}

	onBudget := model.OnBudget
	return Account{
		DefaultModel: model.DefaultModel,
		AccountEditable: AccountEditable{
			Name:     model.Name,
			Type:     model.Type,
			OnBudget: &onBudget,
			Note:     model.Note,
		},
		Links: AccountLinks{
			Self:         fmt.Sprintf("%s/v1/accounts/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?account=%s", url, model.ID),
		},
		Balance:          balance,
		BalanceFormatted: co.Formatter.Format(balance),
		HasTransactions:  used[model.ID],
	}, nil
}

type AccountListResponse struct {
	Data       []Account   `json:"data"`                                                          // List of accounts
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type AccountCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []AccountResponse `json:"data"`                                                          // List of created Accounts
}

func (a *AccountCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	a.Data = append(a.Data, AccountResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type AccountResponse struct {
	Data  *Account `json:"data"`                                                          // Data for the account
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this transaction
}

type AccountQueryFilter struct {
	Name     string             `form:"name" filterField:"false"`   // Fuzzy filter for the account name
	Note     string             `form:"note" filterField:"false"`   // Fuzzy filter for the note
	Type     models.AccountType `form:"type"`                       // Filter by account type
	OnBudget bool               `form:"onBudget"`                   // Is the account on-budget?
	Search   string             `form:"search" filterField:"false"` // By string in name or note
	Offset   uint               `form:"offset" filterField:"false"` // The offset of the first Account returned. Defaults to 0.
	Limit    int                `form:"limit" filterField:"false"`  // Maximum number of Accounts to return. Defaults to 50.
}

func (f AccountQueryFilter) model() models.Account {
	return models.Account{
		Type:     f.Type,
		OnBudget: f.OnBudget,
	}
}
