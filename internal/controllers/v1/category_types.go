package v1

import (
	"fmt"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/gin-gonic/gin"
)

// CategoryEditable represents all user configurable parameters
type CategoryEditable struct {
	Name   string `json:"name" example:"Groceries" default:""`                  // Name of the category
	Colour string `json:"colour" example:"#4CAF50" default:"#6B7280"`          // Display colour in #RRGGBB format
	Note   string `json:"note" example:"Food and household items" default:""` // Notes about the category
	Hidden bool   `json:"hidden" example:"false" default:"false"`              // Hidden categories only show in the budget when they have money
}

func (editable CategoryEditable) model() models.Category {
	return models.Category{
		Name:   editable.Name,
		Colour: editable.Colour,
		Note:   editable.Note,
		Hidden: editable.Hidden,
	}
}

type CategoryLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f"`                       // The category itself
	Transactions string `json:"transactions" example:"https://example.com/api/v1/transactions?category=3b1ea324-d438-4419-882a-2fc91d71772f"` // Transactions in this category
	Target       string `json:"target" example:"https://example.com/api/v1/categories/3b1ea324-d438-4419-882a-2fc91d71772f/target"`           // Target of the category
}

type Category struct {
	models.DefaultModel
	CategoryEditable
	Links CategoryLinks `json:"links"`

	// These fields are computed
	Target *budget.Target `json:"target"` // The target active in the current month
}

func (co Controller) newCategory(c *gin.Context, model models.Category) (Category, error) {
	url := c.GetString(string(models.DBContextURL))

	target, err := co.Store.Target(c.Request.Context(), model.ID, types.MonthOf(co.Now()))
	if err != nil {
		return Category{}, err
	}

	return Category{
		DefaultModel: model.DefaultModel,
		CategoryEditable: CategoryEditable{
			Name:   model.Name,
			Colour: model.Colour,
			Note:   model.Note,
			Hidden: model.Hidden,
		},
		Links: CategoryLinks{
			Self:         fmt.Sprintf("%s/v1/categories/%s", url, model.ID),
			Transactions: fmt.Sprintf("%s/v1/transactions?category=%s", url, model.ID),
			Target:       fmt.Sprintf("%s/v1/categories/%s/target", url, model.ID),
		},
		Target: target,
	}, nil
}

type CategoryListResponse struct {
	Data       []Category  `json:"data"`                                                          // List of Categories
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type CategoryCreateResponse struct {
	Data  []CategoryResponse `json:"data"`                                                          // List of the created Categories or their respective error
	Error *string            `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

func (c *CategoryCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	c.Data = append(c.Data, CategoryResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type CategoryResponse struct {
	Data  *Category `json:"data"`                                                          // Data for the Category
	Error *string   `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
}

type CategoryQueryFilter struct {
	Name   string `form:"name" filterField:"false"`   // By name
	Note   string `form:"note" filterField:"false"`   // By note
	Hidden bool   `form:"hidden"`                     // Is the Category hidden?
	Search string `form:"search" filterField:"false"` // By string in name or note
	Offset uint   `form:"offset" filterField:"false"` // The offset of the first Category returned. Defaults to 0.
	Limit  int    `form:"limit" filterField:"false"`  // Maximum number of Categories to return. Defaults to 50.
}

func (f CategoryQueryFilter) model() models.Category {
	return models.Category{
		Hidden: f.Hidden,
	}
}

// TargetEditable is the target of a category.
type TargetEditable struct {
	Type   budget.TargetType `json:"type" example:"savings_balance"` // One of monthly_savings, savings_balance and spending_by_date
	Amount int64             `json:"amount" example:"120000"`        // Target amount in cents
	Date   *types.Month      `json:"date" example:"2025-06"`         // Month the target must be reached by. Required for savings_balance and spending_by_date
}

func (editable TargetEditable) target(month types.Month) budget.Target {
	return budget.Target{
		Type:          editable.Type,
		Amount:        editable.Amount,
		Date:          editable.Date,
		EffectiveFrom: month,
	}
}

type TargetResponse struct {
	Data  *budget.Target `json:"data"`                                                  // The target
	Error *string        `json:"error" example:"the target is invalid: unknown type"` // The error, if any occurred
}
