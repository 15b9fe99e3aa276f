package v1

import (
	"net/http"
	"time"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/gin-gonic/gin"
)

type ReportQuery struct {
	FromDate  string                    `form:"fromDate"`  // Only transactions on or after this date, YYYY-MM-DD
	UntilDate string                    `form:"untilDate"` // Only transactions on or before this date, YYYY-MM-DD
	Type      selection.TransactionType `form:"type"`      // Only transactions of this type
}

func (q ReportQuery) filter() (models.ReportFilter, error) {
	var (
		f   models.ReportFilter
		err error
	)

	if q.FromDate != "" {
		f.FromDate, err = time.Parse(time.DateOnly, q.FromDate)
		if err != nil {
			return models.ReportFilter{}, errInvalidDate
		}
	}

	if q.UntilDate != "" {
		f.UntilDate, err = time.Parse(time.DateOnly, q.UntilDate)
		if err != nil {
			return models.ReportFilter{}, errInvalidDate
		}
	}

	if q.Type != "" && !q.Type.Valid() {
		return models.ReportFilter{}, models.ErrTransactionType
	}
	f.Type = q.Type

	return f, nil
}

type CategoryReportResponse struct {
	Data  []models.CategoryReport `json:"data"`                                                     // Totals per category
	Error *string                 `json:"error" example:"dates must be in the format YYYY-MM-DD"` // The error, if any occurred
}

type AccountReportResponse struct {
	Data  []models.AccountReport `json:"data"`                                                     // Totals per account
	Error *string                `json:"error" example:"dates must be in the format YYYY-MM-DD"` // The error, if any occurred
}

// RegisterReportRoutes registers the routes for reports with
// the RouterGroup that is passed.
func (co Controller) RegisterReportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/by-category", co.OptionsReport)
	r.GET("/by-category", co.GetCategoryReport)
	r.OPTIONS("/by-account", co.OptionsReport)
	r.GET("/by-account", co.GetAccountReport)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Reports
// @Success		204
// @Router			/v1/reports/by-category [options]
// @Router			/v1/reports/by-account [options]
func (co Controller) OptionsReport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Report by category
// @Description	Returns the sum and number of transactions per category. Uncategorized transactions are reported last.
// @Tags			Reports
// @Produce		json
// @Success		200			{object}	CategoryReportResponse
// @Failure		400			{object}	CategoryReportResponse
// @Failure		500			{object}	CategoryReportResponse
// @Param			fromDate	query		string	false	"Only transactions on or after this date, YYYY-MM-DD"
// @Param			untilDate	query		string	false	"Only transactions on or before this date, YYYY-MM-DD"
// @Param			type		query		string	false	"Only transactions of this type, income or expense"
// @Router			/v1/reports/by-category [get]
func (co Controller) GetCategoryReport(c *gin.Context) {
	var query ReportQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryReportResponse{Error: &s})
		return
	}

	filter, err := query.filter()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryReportResponse{Error: &s})
		return
	}

	reports, err := co.Store.ReportByCategory(c.Request.Context(), filter)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), CategoryReportResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, CategoryReportResponse{Data: reports})
}

// @Summary		Report by account
// @Description	Returns the sum and number of transactions per account
// @Tags			Reports
// @Produce		json
// @Success		200			{object}	AccountReportResponse
// @Failure		400			{object}	AccountReportResponse
// @Failure		500			{object}	AccountReportResponse
// @Param			fromDate	query		string	false	"Only transactions on or after this date, YYYY-MM-DD"
// @Param			untilDate	query		string	false	"Only transactions on or before this date, YYYY-MM-DD"
// @Param			type		query		string	false	"Only transactions of this type, income or expense"
// @Router			/v1/reports/by-account [get]
func (co Controller) GetAccountReport(c *gin.Context) {
	var query ReportQuery
	err := c.ShouldBindQuery(&query)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountReportResponse{Error: &s})
		return
	}

	filter, err := query.filter()
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountReportResponse{Error: &s})
		return
	}

	reports, err := co.Store.ReportByAccount(c.Request.Context(), filter)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AccountReportResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, AccountReportResponse{Data: reports})
}
