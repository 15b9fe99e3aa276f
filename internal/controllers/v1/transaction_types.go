package v1

import (
	"fmt"
	"time"

	"github.com/envelope-zero/tracker/internal/importer"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/envelope-zero/tracker/internal/types"
	ez_uuid "github.com/envelope-zero/tracker/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionEditable represents all user configurable parameters
type TransactionEditable struct {
	Date        time.Time                 `json:"date" example:"2024-06-12T00:00:00Z"`                                  // Date of the transaction. Time is ignored, the date is stored in UTC
	Amount      int64                     `json:"amount" example:"-1450"`                                               // Amount in cents. The sign follows the type
	Description string                    `json:"description" example:"Weekly groceries" default:""`                    // Description of the transaction
	Type        selection.TransactionType `json:"type" example:"expense"`                                               // income or expense. Derived from the sign of the amount when empty
	AccountID   uuid.UUID                 `json:"accountId" example:"af892e10-7e0a-4fb8-b1bc-4b6d88401ed2"`             // ID of the account
	CategoryID  *uuid.UUID                `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f" default:""` // ID of the category, null for uncategorized
}

func (editable TransactionEditable) model() models.Transaction {
	return models.Transaction{
		Date:        editable.Date,
		Amount:      editable.Amount,
		Description: editable.Description,
		Type:        editable.Type,
		AccountID:   editable.AccountID,
		CategoryID:  editable.CategoryID,
	}
}

type TransactionLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/transactions/d430d7c3-d14c-4712-9336-ee56965a6673"` // The transaction itself
}

type Transaction struct {
	models.DefaultModel
	TransactionEditable
	Links TransactionLinks `json:"links"`

	AmountFormatted string `json:"amountFormatted" example:"-£14.50"` // Amount for display
	Imported        bool   `json:"imported" example:"false"`          // Was the transaction created by a CSV import?
}

func (co Controller) newTransaction(c *gin.Context, model models.Transaction) Transaction {
	url := c.GetString(string(models.DBContextURL))

	return Transaction{
		DefaultModel: model.DefaultModel,
		TransactionEditable: TransactionEditable{
			Date:        model.Date,
			Amount:      model.Amount,
			Description: model.Description,
			Type:        model.Type,
			AccountID:   model.AccountID,
			CategoryID:  model.CategoryID,
		},
		Links: TransactionLinks{
			Self: fmt.Sprintf("%s/v1/transactions/%s", url, model.ID),
		},
		AmountFormatted: co.Formatter.Format(model.Amount),
		Imported:        model.ImportHash != "",
	}
}

type TransactionListResponse struct {
	Data       []Transaction `json:"data"`                                                          // List of transactions
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination   `json:"pagination"`                                                    // Pagination information
}

type TransactionCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []TransactionResponse `json:"data"`                                                          // List of created Transactions
}

func (t *TransactionCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	t.Data = append(t.Data, TransactionResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type TransactionResponse struct {
	Data  *Transaction `json:"data"`                                                          // Data for the transaction
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this transaction
}

type TransactionQueryFilter struct {
	Account   ez_uuid.UUID              `form:"account"`   // Only transactions of this account
	Category  ez_uuid.Reference         `form:"category"`  // Only transactions in this category. "none" for uncategorized transactions
	Month     types.Month               `form:"month"`     // Only transactions in this month, YYYY-MM. Takes precedence over fromDate and untilDate
	FromDate  string                    `form:"fromDate"`  // Transactions on or after this date, YYYY-MM-DD
	UntilDate string                    `form:"untilDate"` // Transactions on or before this date, YYYY-MM-DD
	Search    string                    `form:"search"`    // Description contains this text
	Type      selection.TransactionType `form:"type"`      // income or expense
	Offset    uint                      `form:"offset"`    // The offset of the first Transaction returned. Defaults to 0.
	Limit     int                       `form:"limit"`     // Maximum number of Transactions to return. Defaults to 50.
}

func (f TransactionQueryFilter) filter() selection.Filter {
	filter := selection.Filter{
		AccountID:     f.Account.UUID,
		CategoryID:    f.Category.UUID.UUID,
		Uncategorized: f.Category.None,
		FromDate:      f.FromDate,
		UntilDate:     f.UntilDate,
		Search:        f.Search,
		Type:          f.Type,
	}

	if !f.Month.IsZero() {
		filter = filter.InMonth(types.CursorOf(f.Month))
	}

	return filter
}

// TransactionBulkCategory changes the category of many transactions at once.
type TransactionBulkCategory struct {
	Selection  selection.Selection `json:"selection"`                                                // The selected transactions. {"mode": "all"} selects every transaction matching the filter
	Filter     selection.Filter    `json:"filter"`                                                   // Filter the selection was made with. Only used when everything is selected
	CategoryID *uuid.UUID          `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // The new category, null to remove the category
}

type TransactionBulkCategoryResponse struct {
	Data  *BulkCategoryResult `json:"data"`                                                          // Result of the update
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type BulkCategoryResult struct {
	Updated int64 `json:"updated" example:"12"` // Number of transactions that were updated
}

type ImportResponse struct {
	Data  *importer.Result `json:"data"`                              // Result of the import
	Error *string          `json:"error" example:"the file is empty"` // The error, if any occurred
}
