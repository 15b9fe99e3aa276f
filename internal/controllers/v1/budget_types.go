package v1

import (
	"fmt"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BudgetLinks struct {
	Self            string  `json:"self" example:"https://example.com/api/v1/budget/2024-06"`                             // The budget for the month
	Previous        string  `json:"previous" example:"https://example.com/api/v1/budget/2024-05"`                         // The budget for the previous month
	Next            *string `json:"next" example:"https://example.com/api/v1/budget/2024-07"`                             // The budget for the next month. null when the month is as far in the future as allowed
	Allocations     string  `json:"allocations" example:"https://example.com/api/v1/budget/2024-06/allocations"`          // Set the assigned amounts for this month
	FundUnderfunded string  `json:"fundUnderfunded" example:"https://example.com/api/v1/budget/2024-06/fund-underfunded"` // Fund all underfunded categories
	Transactions    string  `json:"transactions" example:"https://example.com/api/v1/transactions?month=2024-06"`         // Transactions in this month
}

// BudgetRow is the budget of one category with amounts formatted for display.
type BudgetRow struct {
	budget.Row
	AssignedFormatted    string  `json:"assignedFormatted" example:"£250.00"`
	ActivityFormatted    string  `json:"activityFormatted" example:"-£182.30"`
	AvailableFormatted   string  `json:"availableFormatted" example:"£67.70"`
	UnderfundedFormatted *string `json:"underfundedFormatted" example:"£0.00"`
}

// Budget is the budget snapshot of a month.
type Budget struct {
	Month                 types.Month `json:"month" example:"2024-06"`
	Income                int64       `json:"income" example:"320000"`               // Income in this month, in cents
	TotalAssigned         int64       `json:"totalAssigned" example:"300000"`        // Sum of all assigned amounts
	ReadyToAssign         int64       `json:"readyToAssign" example:"20000"`         // Income minus total assigned
	TotalUnderfunded      int64       `json:"totalUnderfunded" example:"4500"`       // Sum of all underfunded amounts
	UncategorizedExpenses int64       `json:"uncategorizedExpenses" example:"3"`     // Number of expenses without category

	IncomeFormatted           string `json:"incomeFormatted" example:"£3,200.00"`
	TotalAssignedFormatted    string `json:"totalAssignedFormatted" example:"£3,000.00"`
	ReadyToAssignFormatted    string `json:"readyToAssignFormatted" example:"£200.00"`
	TotalUnderfundedFormatted string `json:"totalUnderfundedFormatted" example:"£45.00"`

	Rows []BudgetRow `json:"rows"`

	// Navigation
	CanAdvance bool        `json:"canAdvance" example:"true"` // Can the client move on to the next month?
	FromDate   string      `json:"fromDate" example:"2024-06-01"`
	UntilDate  string      `json:"untilDate" example:"2024-06-30"`
	Links      BudgetLinks `json:"links"`
}

func (co Controller) newBudget(c *gin.Context, snapshot budget.Snapshot) Budget {
	url := c.GetString(string(models.DBContextURL))
	cursor := types.CursorOf(snapshot.Month)
	canAdvance := cursor.CanAdvance(co.Now(), co.MaxMonthsAhead)
	from, until := cursor.DateRange()

	var next *string
	if canAdvance {
		n := fmt.Sprintf("%s/v1/budget/%s", url, cursor.Next())
		next = &n
	}

	rows := make([]BudgetRow, 0, len(snapshot.Rows))
	for _, row := range snapshot.Rows {
		var underfunded *string
		if row.Underfunded != nil {
			u := co.Formatter.Format(*row.Underfunded)
			underfunded = &u
		}

		rows = append(rows, BudgetRow{
			Row:                  row,
			AssignedFormatted:    co.Formatter.Format(row.Assigned),
			ActivityFormatted:    co.Formatter.Format(row.Activity),
			AvailableFormatted:   co.Formatter.Format(row.Available),
			UnderfundedFormatted: underfunded,
		})
	}

	return Budget{
		Month:                     snapshot.Month,
		Income:                    snapshot.Income,
		TotalAssigned:             snapshot.TotalAssigned,
		ReadyToAssign:             snapshot.ReadyToAssign,
		TotalUnderfunded:          snapshot.TotalUnderfunded,
		UncategorizedExpenses:     snapshot.UncategorizedExpenses,
		IncomeFormatted:           co.Formatter.Format(snapshot.Income),
		TotalAssignedFormatted:    co.Formatter.Format(snapshot.TotalAssigned),
		ReadyToAssignFormatted:    co.Formatter.Format(snapshot.ReadyToAssign),
		TotalUnderfundedFormatted: co.Formatter.Format(snapshot.TotalUnderfunded),
		Rows:                      rows,
		CanAdvance:                canAdvance,
		FromDate:                  from,
		UntilDate:                 until,
		Links: BudgetLinks{
			Self:            fmt.Sprintf("%s/v1/budget/%s", url, cursor),
			Previous:        fmt.Sprintf("%s/v1/budget/%s", url, cursor.Previous()),
			Next:            next,
			Allocations:     fmt.Sprintf("%s/v1/budget/%s/allocations", url, cursor),
			FundUnderfunded: fmt.Sprintf("%s/v1/budget/%s/fund-underfunded", url, cursor),
			Transactions:    fmt.Sprintf("%s/v1/transactions?month=%s", url, cursor),
		},
	}
}

type BudgetResponse struct {
	Data  *Budget `json:"data"`                                                             // The budget of the month
	Error *string `json:"error" example:"the month is further in the future than allowed"` // The error, if any occurred
}

// AllocationEditable is the amount assigned to a category.
type AllocationEditable struct {
	Amount string `json:"amount" example:"+25.00"` // Decimal amount. With a leading + or -, the amount is added to the currently assigned amount
}

// BulkAllocationEditable is the amount assigned to one of many categories.
type BulkAllocationEditable struct {
	CategoryID uuid.UUID `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the category
	Amount     string    `json:"amount" example:"250.00"`                                   // Decimal amount to assign
}

type AverageQuery struct {
	Window int `form:"window" example:"3"` // Number of months before the month to average over. Defaults to 3
}

type Average struct {
	CategoryID       uuid.UUID   `json:"categoryId" example:"3b1ea324-d438-4419-882a-2fc91d71772f"` // ID of the category
	Month            types.Month `json:"month" example:"2024-06"`                                   // The month the average is calculated for
	Window           int         `json:"window" example:"3"`                                        // Number of months averaged over at most
	Average          int64       `json:"average" example:"18230"`                                   // Average absolute activity per month, in cents
	AverageFormatted string      `json:"averageFormatted" example:"£182.30"`
}

type AverageResponse struct {
	Data  *Average `json:"data"`                                                          // The average
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}
