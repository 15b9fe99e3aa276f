package v1

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/importer"
	"github.com/envelope-zero/tracker/internal/importer/parser/csvimport"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/selection"
	ez_uuid "github.com/envelope-zero/tracker/internal/uuid"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// RegisterTransactionRoutes registers the routes for transactions with
// the RouterGroup that is passed.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsTransactionList)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransactions)
	}

	// Transaction with ID
	{
		r.OPTIONS("/:id", co.OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
		r.PATCH("/:id", co.UpdateTransaction)
		r.DELETE("/:id", co.DeleteTransaction)
	}

	// Bulk operations
	{
		r.OPTIONS("/bulk-category", co.OptionsTransactionBulkCategory)
		r.PUT("/bulk-category", co.SetTransactionsCategory)
		r.OPTIONS("/import", co.OptionsTransactionImport)
		r.POST("/import", co.ImportTransactions)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions [options]
func (co Controller) OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [options]
func (co Controller) OptionsTransactionDetail(c *gin.Context) {
	resourceOptionsDetail(co, c, models.Transaction{})
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/bulk-category [options]
func (co Controller) OptionsTransactionBulkCategory(c *gin.Context) {
	httputil.OptionsPut(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Transactions
// @Success		204
// @Router			/v1/transactions/import [options]
func (co Controller) OptionsTransactionImport(c *gin.Context) {
	httputil.OptionsPost(c)
}

// checkReferences verifies that the account and category of a transaction exist.
func (co Controller) checkReferences(ctx context.Context, transaction models.Transaction) error {
	err := co.DB.WithContext(ctx).First(&models.Account{}, transaction.AccountID).Error
	if err != nil {
		return err
	}

	if transaction.CategoryID == nil {
		return nil
	}

	return co.DB.WithContext(ctx).First(&models.Category{}, *transaction.CategoryID).Error
}

// @Summary		Create transactions
// @Description	Creates transactions from the list of submitted transaction data. The response code is the highest response code number that a single transaction creation would have caused. If it is not equal to 201, at least one transaction has an error.
// @Tags			Transactions
// @Produce		json
// @Success		201				{object}	TransactionCreateResponse
// @Failure		400				{object}	TransactionCreateResponse
// @Failure		404				{object}	TransactionCreateResponse
// @Failure		500				{object}	TransactionCreateResponse
// @Param			transactions	body		[]TransactionEditable	true	"Transactions"
// @Router			/v1/transactions [post]
func (co Controller) CreateTransactions(c *gin.Context) {
	var editables []TransactionEditable

	err := httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), TransactionCreateResponse{
			Error: &e,
		})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := TransactionCreateResponse{}

	for _, editable := range editables {
		transaction := editable.model()

		err = co.checkReferences(c.Request.Context(), transaction)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = co.DB.Create(&transaction).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		data := co.newTransaction(c, transaction)
		r.Data = append(r.Data, TransactionResponse{Data: &data})
	}

	co.Engine.Invalidate(c.Request.Context())
	c.JSON(status, r)
}

// @Summary		Get transactions
// @Description	Returns a list of transactions, newest first
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionListResponse
// @Failure		400	{object}	TransactionListResponse
// @Failure		500	{object}	TransactionListResponse
// @Router			/v1/transactions [get]
// @Param			account		query	string	false	"Filter by account ID"
// @Param			category	query	string	false	"Filter by category ID. Use 'none' for uncategorized transactions"
// @Param			month		query	string	false	"Transactions in this month, YYYY-MM"
// @Param			fromDate	query	string	false	"Transactions on or after this date, YYYY-MM-DD"
// @Param			untilDate	query	string	false	"Transactions on or before this date, YYYY-MM-DD"
// @Param			search		query	string	false	"Search for this text in the description"
// @Param			type		query	string	false	"Filter by type, income or expense"
// @Param			offset		query	uint	false	"The offset of the first Transaction returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of Transactions to return. Defaults to 50."
func (co Controller) GetTransactions(c *gin.Context) {
	var filter TransactionQueryFilter
	err := c.ShouldBind(&filter)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	if filter.Type != "" && !filter.Type.Valid() {
		s := models.ErrTransactionType.Error()
		c.JSON(http.StatusBadRequest, TransactionListResponse{
			Error: &s,
		})
		return
	}

	page := selection.Page{Offset: int(filter.Offset), Limit: filter.Limit}.Normalize()
	result, err := co.Store.ListTransactions(c.Request.Context(), filter.filter(), page)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionListResponse{
			Error: &s,
		})
		return
	}

	data := make([]Transaction, 0, len(result.Items))
	for _, transaction := range result.Items {
		data = append(data, co.newTransaction(c, transaction))
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Total:  result.Total,
			Offset: filter.Offset,
			Limit:  page.Limit,
		},
	})
}

// @Summary		Get transaction
// @Description	Returns a specific transaction
// @Tags			Transactions
// @Produce		json
// @Success		200	{object}	TransactionResponse
// @Failure		400	{object}	TransactionResponse
// @Failure		404	{object}	TransactionResponse
// @Failure		500	{object}	TransactionResponse
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	var transaction models.Transaction
	err = co.DB.First(&transaction, uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	data := co.newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &data})
}

// @Summary		Update transaction
// @Description	Updates an existing transaction. Only values to be updated need to be specified.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200			{object}	TransactionResponse
// @Failure		400			{object}	TransactionResponse
// @Failure		404			{object}	TransactionResponse
// @Failure		500			{object}	TransactionResponse
// @Param			id			path		URIID				true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Param			transaction	body		TransactionEditable	true	"Transaction"
// @Router			/v1/transactions/{id} [patch]
func (co Controller) UpdateTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	var transaction models.Transaction
	err = co.DB.First(&transaction, uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	updateFields, err := httputil.GetBodyFields(c, TransactionEditable{})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	var data TransactionEditable
	err = httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	merge(&transaction, data.model(), updateFields)

	// A changed amount without type follows the sign of the new amount
	if data.Type == "" && data.Amount != 0 {
		transaction.Type = ""
	}

	err = co.checkReferences(c.Request.Context(), transaction)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	err = co.DB.Omit(clause.Associations).Save(&transaction).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionResponse{
			Error: &s,
		})
		return
	}

	co.Engine.Invalidate(c.Request.Context())

	r := co.newTransaction(c, transaction)
	c.JSON(http.StatusOK, TransactionResponse{Data: &r})
}

// @Summary		Delete transaction
// @Description	Deletes a transaction
// @Tags			Transactions
// @Success		204
// @Failure		400	{object}	httpError
// @Failure		404	{object}	httpError
// @Failure		500	{object}	httpError
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/transactions/{id} [delete]
func (co Controller) DeleteTransaction(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	var transaction models.Transaction
	err = co.DB.First(&transaction, uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	err = co.DB.Delete(&transaction).Error
	if err != nil {
		c.JSON(status(err), httpError{
			Error: err.Error(),
		})
		return
	}

	co.Engine.Invalidate(c.Request.Context())
	c.JSON(http.StatusNoContent, nil)
}

// @Summary		Set category of transactions
// @Description	Sets the category of the selected transactions. When the selection mode is "all", every transaction matching the filter is updated, including those not loaded by the client.
// @Tags			Transactions
// @Accept			json
// @Produce		json
// @Success		200		{object}	TransactionBulkCategoryResponse
// @Failure		400		{object}	TransactionBulkCategoryResponse
// @Failure		404		{object}	TransactionBulkCategoryResponse
// @Failure		500		{object}	TransactionBulkCategoryResponse
// @Param			request	body		TransactionBulkCategory	true	"Selection and new category"
// @Router			/v1/transactions/bulk-category [put]
func (co Controller) SetTransactionsCategory(c *gin.Context) {
	var data TransactionBulkCategory
	err := httputil.BindData(c, &data)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionBulkCategoryResponse{
			Error: &s,
		})
		return
	}

	updated, err := selection.BulkRecategorize(c.Request.Context(), co.Store, data.Selection, data.Filter, data.CategoryID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), TransactionBulkCategoryResponse{
			Error: &s,
		})
		return
	}

	if updated > 0 {
		co.Engine.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusOK, TransactionBulkCategoryResponse{
		Data: &BulkCategoryResult{Updated: updated},
	})
}

type ImportQuery struct {
	Account ez_uuid.UUID `form:"account"` // ID of the account to import the transactions for
}

// getUploadedFile returns the form file and handles potential errors.
func getUploadedFile(c *gin.Context, suffix string) (multipart.File, error) {
	formFile, err := c.FormFile("file")
	if formFile == nil {
		return nil, errNoFilePost
	}

	if err != nil {
		return nil, err
	}

	if !strings.HasSuffix(strings.ToLower(formFile.Filename), suffix) {
		return nil, fmt.Errorf("%w: %s", errWrongFileSuffix, suffix)
	}

	return formFile.Open()
}

// @Summary		Import transactions
// @Description	Imports transactions from a CSV file with the columns date, description, amount and optionally type and category. Rows that were imported before are skipped. Transactions without a known category are categorized by the match rules.
// @Tags			Transactions
// @Accept			multipart/form-data
// @Produce		json
// @Success		201		{object}	ImportResponse
// @Failure		400		{object}	ImportResponse
// @Failure		404		{object}	ImportResponse
// @Failure		500		{object}	ImportResponse
// @Param			file	formData	file	true	"File to import"
// @Param			account	query		string	true	"ID of the account to import the transactions for"
// @Router			/v1/transactions/import [post]
func (co Controller) ImportTransactions(c *gin.Context) {
	var query ImportQuery
	err := c.ShouldBindQuery(&query)
	if err == nil && query.Account == ez_uuid.Nil {
		err = errAccountNotSet
	}
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportResponse{
			Error: &s,
		})
		return
	}

	f, err := getUploadedFile(c, ".csv")
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportResponse{
			Error: &s,
		})
		return
	}
	defer f.Close()

	transactions, err := csvimport.Parse(f, query.Account.UUID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportResponse{
			Error: &s,
		})
		return
	}

	result, err := importer.Create(c.Request.Context(), co.DB, query.Account.UUID, transactions)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ImportResponse{
			Error: &s,
		})
		return
	}

	if result.Imported > 0 {
		co.Engine.Invalidate(c.Request.Context())
	}

	c.JSON(http.StatusCreated, ImportResponse{Data: &result})
}
