package v1

import (
	"net/http"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/money"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/gin-gonic/gin"
)

// RegisterBudgetRoutes registers the routes for the monthly budget with
// the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/:month", co.OptionsBudget)
	r.GET("/:month", co.GetBudget)

	r.OPTIONS("/:month/allocations", co.OptionsAllocations)
	r.PUT("/:month/allocations", co.SetAllocations)

	r.OPTIONS("/:month/allocations/:categoryId", co.OptionsAllocations)
	r.PUT("/:month/allocations/:categoryId", co.SetAllocation)

	r.OPTIONS("/:month/fund-underfunded", co.OptionsFundUnderfunded)
	r.POST("/:month/fund-underfunded", co.FundUnderfunded)

	r.OPTIONS("/:month/average/:categoryId", co.OptionsAverage)
	r.GET("/:month/average/:categoryId", co.GetAverage)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budget
// @Success		204
// @Param			month	path	string	true	"The month in YYYY-MM format"
// @Router			/v1/budget/{month} [options]
func (co Controller) OptionsBudget(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budget
// @Success		204
// @Param			month	path	string	true	"The month in YYYY-MM format"
// @Router			/v1/budget/{month}/allocations [options]
func (co Controller) OptionsAllocations(c *gin.Context) {
	httputil.OptionsPut(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budget
// @Success		204
// @Param			month	path	string	true	"The month in YYYY-MM format"
// @Router			/v1/budget/{month}/fund-underfunded [options]
func (co Controller) OptionsFundUnderfunded(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Budget
// @Success		204
// @Param			month		path	string	true	"The month in YYYY-MM format"
// @Param			categoryId	path	string	true	"ID of the category"
// @Router			/v1/budget/{month}/average/{categoryId} [options]
func (co Controller) OptionsAverage(c *gin.Context) {
	httputil.OptionsGet(c)
}

// month binds the month from the URI and checks that it is not further
// in the future than allowed.
func (co Controller) month(c *gin.Context) (types.Month, error) {
	var uri URIMonth
	err := c.ShouldBindUri(&uri)
	if err != nil {
		return types.Month{}, err
	}

	if co.MaxMonthsAhead != nil && uri.Month.After(types.MonthOf(co.Now()).AddDate(0, *co.MaxMonthsAhead)) {
		return types.Month{}, errMonthAhead
	}

	return uri.Month, nil
}

// respond writes the budget for a snapshot or the error.
func (co Controller) respond(c *gin.Context, snapshot budget.Snapshot, err error) {
	if err != nil {
		s := err.Error()
		c.JSON(status(err), BudgetResponse{
			Error: &s,
		})
		return
	}

	data := co.newBudget(c, snapshot)
	c.JSON(http.StatusOK, BudgetResponse{Data: &data})
}

// @Summary		Get budget
// @Description	Returns the budget of a month with all categories
// @Tags			Budget
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		500		{object}	BudgetResponse
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/budget/{month} [get]
func (co Controller) GetBudget(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	snapshot, err := co.Engine.GetBudgetSnapshot(c.Request.Context(), month)
	co.respond(c, snapshot, err)
}

// @Summary		Set allocation
// @Description	Sets the amount assigned to a category in a month. With a leading "+" or "-", the amount is added to the currently assigned amount. The result is never negative.
// @Tags			Budget
// @Accept			json
// @Produce		json
// @Success		200			{object}	BudgetResponse
// @Failure		400			{object}	BudgetResponse
// @Failure		404			{object}	BudgetResponse
// @Failure		500			{object}	BudgetResponse
// @Param			month		path		string				true	"The month in YYYY-MM format"
// @Param			categoryId	path		string				true	"ID of the category"
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/budget/{month}/allocations/{categoryId} [put]
func (co Controller) SetAllocation(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	var uri URIMonthCategory
	err = c.ShouldBindUri(&uri)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	var data AllocationEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	current, err := co.Engine.GetBudgetSnapshot(c.Request.Context(), month)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	// Categories without a row have nothing assigned yet
	row, _ := current.Row(uri.CategoryID.UUID)
	amount := money.ResolveRelativeInput(data.Amount, row.Assigned)

	snapshot, err := co.Engine.Allocate(c.Request.Context(), month, uri.CategoryID.UUID, amount)
	co.respond(c, snapshot, err)
}

// @Summary		Set allocations
// @Description	Sets the amounts assigned to multiple categories in a month. Either all allocations are set or none.
// @Tags			Budget
// @Accept			json
// @Produce		json
// @Success		200			{object}	BudgetResponse
// @Failure		400			{object}	BudgetResponse
// @Failure		404			{object}	BudgetResponse
// @Failure		500			{object}	BudgetResponse
// @Param			month		path		string						true	"The month in YYYY-MM format"
// @Param			allocations	body		[]BulkAllocationEditable	true	"Allocations"
// @Router			/v1/budget/{month}/allocations [put]
func (co Controller) SetAllocations(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	var data []BulkAllocationEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	allocations := make([]budget.Allocation, 0, len(data))
	for _, a := range data {
		allocations = append(allocations, budget.Allocation{
			CategoryID: a.CategoryID,
			Amount:     money.ParseDecimal(a.Amount),
		})
	}

	snapshot, err := co.Engine.BulkAllocate(c.Request.Context(), month, allocations)
	co.respond(c, snapshot, err)
}

// @Summary		Fund underfunded categories
// @Description	Assigns the underfunded amount to every category that needs money for its target. Fails without changes when there is not enough money ready to assign.
// @Tags			Budget
// @Produce		json
// @Success		200		{object}	BudgetResponse
// @Failure		400		{object}	BudgetResponse
// @Failure		422		{object}	BudgetResponse
// @Failure		500		{object}	BudgetResponse
// @Param			month	path		string	true	"The month in YYYY-MM format"
// @Router			/v1/budget/{month}/fund-underfunded [post]
func (co Controller) FundUnderfunded(c *gin.Context) {
	month, err := co.month(c)
	if err != nil {
		co.respond(c, budget.Snapshot{}, err)
		return
	}

	snapshot, err := co.Engine.FundAllUnderfunded(c.Request.Context(), month)
	co.respond(c, snapshot, err)
}

// @Summary		Get average activity
// @Description	Returns the average absolute activity of a category per month in the months before the month
// @Tags			Budget
// @Produce		json
// @Success		200			{object}	AverageResponse
// @Failure		400			{object}	AverageResponse
// @Failure		404			{object}	AverageResponse
// @Failure		500			{object}	AverageResponse
// @Param			month		path		string	true	"The month in YYYY-MM format"
// @Param			categoryId	path		string	true	"ID of the category"
// @Param			window		query		int		false	"Number of months to average over. Defaults to 3"
// @Router			/v1/budget/{month}/average/{categoryId} [get]
func (co Controller) GetAverage(c *gin.Context) {
	var uri URIMonthCategory
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AverageResponse{
			Error: &s,
		})
		return
	}

	var query AverageQuery
	err = c.ShouldBindQuery(&query)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AverageResponse{
			Error: &s,
		})
		return
	}

	if query.Window <= 0 {
		query.Window = budget.DefaultAverageWindow
	}

	average, err := co.Engine.GetCategoryAverage(c.Request.Context(), uri.CategoryID.UUID, uri.Month, query.Window)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AverageResponse{
			Error: &s,
		})
		return
	}

	c.JSON(http.StatusOK, AverageResponse{
		Data: &Average{
			CategoryID:       uri.CategoryID.UUID,
			Month:            uri.Month,
			Window:           query.Window,
			Average:          average,
			AverageFormatted: co.Formatter.Format(average),
		},
	})
}
