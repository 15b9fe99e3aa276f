package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/envelope-zero/tracker/internal/budget"
	v1 "github.com/envelope-zero/tracker/internal/controllers/v1"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/envelope-zero/tracker/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCategoriesDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestCategoriesDBClosed() {
	suite.CloseDB()

	suite.createTestCategory(suite.T(), v1.CategoryEditable{}, http.StatusInternalServerError)

	r := test.Request(suite.T(), suite.controller, http.MethodGet, "http://example.com/v1/categories", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusInternalServerError)
}

// TestCategoriesOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestCategoriesOptions() {
	id := suite.createTestCategory(suite.T(), v1.CategoryEditable{}).Data.ID

	tests := []struct {
		name   string
		path   string
		status int
		allow  string
	}{
		{"List", "http://example.com/v1/categories", http.StatusNoContent, "OPTIONS, GET, POST"},
		{"Detail", fmt.Sprintf("http://example.com/v1/categories/%s", id), http.StatusNoContent, "OPTIONS, GET, PATCH, DELETE"},
		{"Target", fmt.Sprintf("http://example.com/v1/categories/%s/target", id), http.StatusNoContent, "OPTIONS, PUT, DELETE"},
		{"No category with this ID", fmt.Sprintf("http://example.com/v1/categories/%s", uuid.New()), http.StatusNotFound, ""},
		{"Not a valid UUID", "http://example.com/v1/categories/NotParseableAsUUID", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)
			assert.Equal(t, tt.allow, r.Header().Get("allow"))
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesCreate() {
	tests := []struct {
		name       string
		categories []v1.CategoryEditable
		status     int
		errors     []string
	}{
		{
			"Default colour",
			[]v1.CategoryEditable{{Name: "Groceries"}},
			http.StatusCreated,
			[]string{""},
		},
		{
			"Colour is upper-cased",
			[]v1.CategoryEditable{{Name: "Rent", Colour: "#4caf50"}},
			http.StatusCreated,
			[]string{""},
		},
		{
			"Invalid colour",
			[]v1.CategoryEditable{{Name: "Holiday", Colour: "green"}},
			http.StatusBadRequest,
			[]string{models.ErrColourInvalid.Error()},
		},
		{
			"Duplicate name",
			[]v1.CategoryEditable{{Name: "Fuel"}, {Name: "Fuel"}},
			http.StatusBadRequest,
			[]string{"", models.ErrCategoryNameNotUnique.Error()},
		},
		{
			"Empty name",
			[]v1.CategoryEditable{{Name: "  "}},
			http.StatusBadRequest,
			[]string{models.ErrCategoryNameEmpty.Error()},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodPost, "http://example.com/v1/categories", tt.categories)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.CategoryCreateResponse
			test.DecodeResponse(t, &r, &response)
			require.Len(t, response.Data, len(tt.errors))

			for i, e := range tt.errors {
				if e != "" {
					assert.Equal(t, e, *response.Data[i].Error)
				}
			}
		})
	}

	r := test.Request(suite.T(), suite.controller, http.MethodGet, "http://example.com/v1/categories?name=Groceries", "")
	var groceries v1.CategoryListResponse
	test.DecodeResponse(suite.T(), &r, &groceries)
	require.Len(suite.T(), groceries.Data, 1)
	assert.Equal(suite.T(), models.DefaultColour, groceries.Data[0].Colour)

	r = test.Request(suite.T(), suite.controller, http.MethodGet, "http://example.com/v1/categories?name=Rent", "")
	var rent v1.CategoryListResponse
	test.DecodeResponse(suite.T(), &r, &rent)
	require.Len(suite.T(), rent.Data, 1)
	assert.Equal(suite.T(), "#4CAF50", rent.Data[0].Colour)
}

func (suite *TestSuiteStandard) TestCategoriesGetFilter() {
	_ = suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries", Note: "Supermarket"})
	_ = suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Gifts", Hidden: true})
	_ = suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Rent"})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"All", "", 3},
		{"Name", "name=g", 2},
		{"Hidden", "hidden=true", 1},
		{"Not hidden", "hidden=false", 2},
		{"Search", "search=market", 1},
		{"Empty note", "note=", 2},
		{"Offset", "offset=1", 2},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodGet, fmt.Sprintf("http://example.com/v1/categories?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.CategoryListResponse
			test.DecodeResponse(t, &r, &response)
			assert.Len(t, response.Data, tt.len)
		})
	}
}

func (suite *TestSuiteStandard) TestCategoriesGetSingle() {
	c := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries"})

	r := test.Request(suite.T(), suite.controller, http.MethodGet, c.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), "Groceries", response.Data.Name)
	assert.Nil(suite.T(), response.Data.Target)

	r = test.Request(suite.T(), suite.controller, http.MethodGet, fmt.Sprintf("http://example.com/v1/categories/%s", uuid.New()), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestCategoriesUpdate() {
	c := suite.createTestCategory(suite.T(), v1.CategoryEditable{Name: "Groceries", Note: "Weekly shop"})

	r := test.Request(suite.T(), suite.controller, http.MethodPatch, c.Data.Links.Self, map[string]any{
		"hidden": true,
		"colour": "#ff0000",
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.True(suite.T(), response.Data.Hidden)
	assert.Equal(suite.T(), "#FF0000", response.Data.Colour)
	assert.Equal(suite.T(), "Weekly shop", response.Data.Note)

	r = test.Request(suite.T(), suite.controller, http.MethodPatch, c.Data.Links.Self, map[string]any{"colour": "red"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	r = test.Request(suite.T(), suite.controller, http.MethodPatch, c.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}

func (suite *TestSuiteStandard) TestCategoriesDelete() {
	c := suite.createTestCategory(suite.T(), v1.CategoryEditable{})
	tr := suite.createTestTransaction(suite.T(), v1.TransactionEditable{Amount: -1500, CategoryID: &c.Data.ID})
	_ = suite.createTestMatchRule(suite.T(), v1.MatchRuleEditable{Match: "*bakery*", CategoryID: c.Data.ID})

	r := test.Request(suite.T(), suite.controller, http.MethodDelete, c.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), suite.controller, http.MethodGet, c.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	// The transaction stays, but is uncategorized
	r = test.Request(suite.T(), suite.controller, http.MethodGet, tr.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var transaction v1.TransactionResponse
	test.DecodeResponse(suite.T(), &r, &transaction)
	assert.Nil(suite.T(), transaction.Data.CategoryID)

	r = test.Request(suite.T(), suite.controller, http.MethodGet, "http://example.com/v1/match-rules", "")
	var rules v1.MatchRuleListResponse
	test.DecodeResponse(suite.T(), &r, &rules)
	assert.Len(suite.T(), rules.Data, 0, "Match rules for the category must be deleted")

	r = test.Request(suite.T(), suite.controller, http.MethodDelete, c.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestCategoriesTarget() {
	c := suite.createTestCategory(suite.T(), v1.CategoryEditable{})
	date := types.NewMonth(2024, 12)
	past := types.NewMonth(2024, 3)

	tests := []struct {
		name   string
		query  string
		body   any
		status int
	}{
		{"No month", "", v1.TargetEditable{Type: budget.MonthlySavings, Amount: 10000}, http.StatusBadRequest},
		{"Invalid month", "?month=June", v1.TargetEditable{Type: budget.MonthlySavings, Amount: 10000}, http.StatusBadRequest},
		{"Unknown type", "?month=2024-06", v1.TargetEditable{Type: "weekly", Amount: 10000}, http.StatusBadRequest},
		{"Zero amount", "?month=2024-06", v1.TargetEditable{Type: budget.MonthlySavings}, http.StatusBadRequest},
		{"Date missing", "?month=2024-06", v1.TargetEditable{Type: budget.SavingsBalance, Amount: 10000}, http.StatusBadRequest},
		{"Date in the past", "?month=2024-06", v1.TargetEditable{Type: budget.SpendingByDate, Amount: 10000, Date: &past}, http.StatusBadRequest},
		{"Empty body", "?month=2024-06", "", http.StatusBadRequest},
		{"Savings balance", "?month=2024-06", v1.TargetEditable{Type: budget.SavingsBalance, Amount: 60000, Date: &date}, http.StatusOK},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodPut, c.Data.Links.Target+tt.query, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}

	r := test.Request(suite.T(), suite.controller, http.MethodGet, c.Data.Links.Self, "")
	var response v1.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data.Target)
	assert.Equal(suite.T(), budget.SavingsBalance, response.Data.Target.Type)
	assert.Equal(suite.T(), int64(60000), response.Data.Target.Amount)
	assert.Equal(suite.T(), "2024-06", response.Data.Target.EffectiveFrom.String())

	// Removing the target from July on keeps it for June
	r = test.Request(suite.T(), suite.controller, http.MethodDelete, c.Data.Links.Target+"?month=2024-07", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), suite.controller, http.MethodGet, c.Data.Links.Self, "")
	test.DecodeResponse(suite.T(), &r, &response)
	assert.NotNil(suite.T(), response.Data.Target)

	r = test.Request(suite.T(), suite.controller, http.MethodDelete, c.Data.Links.Target+"?month=2024-06", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	response = v1.CategoryResponse{}
	r = test.Request(suite.T(), suite.controller, http.MethodGet, c.Data.Links.Self, "")
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Nil(suite.T(), response.Data.Target)
}

func (suite *TestSuiteStandard) TestCategoriesTargetNotFound() {
	path := fmt.Sprintf("http://example.com/v1/categories/%s/target?month=2024-06", uuid.New())

	r := test.Request(suite.T(), suite.controller, http.MethodPut, path, v1.TargetEditable{Type: budget.MonthlySavings, Amount: 5000})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), suite.controller, http.MethodDelete, path, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}
