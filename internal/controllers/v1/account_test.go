package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	v1 "github.com/envelope-zero/tracker/internal/controllers/v1"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/test"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestAccountsDBClosed verifies that errors are processed correctly when
// the database is closed.
func (suite *TestSuiteStandard) TestAccountsDBClosed() {
	tests := []struct {
		name string             // Name of the test
		test func(t *testing.T) // Code to run
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				suite.createTestAccount(t, v1.AccountCreate{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				recorder := test.Request(t, suite.controller, http.MethodGet, "http://example.com/v1/accounts", "")
				test.AssertHTTPStatus(t, &recorder, http.StatusInternalServerError)

				var response v1.AccountListResponse
				test.DecodeResponse(t, &recorder, &response)
				assert.Contains(t, *response.Error, models.ErrGeneral.Error())
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}

// TestAccountsOptions verifies that OPTIONS requests are handled correctly.
func (suite *TestSuiteStandard) TestAccountsOptions() {
	tests := []struct {
		name   string
		id     string // path at the Accounts endpoint to test
		status int    // Expected HTTP status code
	}{
		{"No account with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Account exists", suite.createTestAccount(suite.T(), v1.AccountCreate{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/accounts", tt.id)
			r := test.Request(t, suite.controller, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "OPTIONS, GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsCreate() {
	onBudget := false

	tests := []struct {
		name     string
		accounts []v1.AccountCreate
		status   int
		errors   []string // Errors for the single accounts, empty for none
	}{
		{
			"Two accounts",
			[]v1.AccountCreate{
				{AccountEditable: v1.AccountEditable{Name: "Current account"}},
				{AccountEditable: v1.AccountEditable{Name: "Rainy day", Type: models.Savings, OnBudget: &onBudget}},
			},
			http.StatusCreated,
			[]string{"", ""},
		},
		{
			"Duplicate name",
			[]v1.AccountCreate{
				{AccountEditable: v1.AccountEditable{Name: "Wallet"}},
				{AccountEditable: v1.AccountEditable{Name: "Wallet"}},
			},
			http.StatusBadRequest,
			[]string{"", models.ErrAccountNameNotUnique.Error()},
		},
		{
			"Invalid type",
			[]v1.AccountCreate{
				{AccountEditable: v1.AccountEditable{Name: "Broker", Type: "stocks"}},
			},
			http.StatusBadRequest,
			[]string{models.ErrAccountTypeInvalid.Error()},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodPost, "http://example.com/v1/accounts", tt.accounts)
			test.AssertHTTPStatus(t, &r, tt.status)

			var response v1.AccountCreateResponse
			test.DecodeResponse(t, &r, &response)
			require.Len(t, response.Data, len(tt.errors))

			for i, e := range tt.errors {
				if e == "" {
					assert.Nil(t, response.Data[i].Error)
					assert.Equal(t, tt.accounts[i].Name, response.Data[i].Data.Name)
					continue
				}

				assert.Equal(t, e, *response.Data[i].Error)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsCreateStartingBalance() {
	a := suite.createTestAccount(suite.T(), v1.AccountCreate{StartingBalance: "1250.50"})

	assert.Equal(suite.T(), int64(125050), a.Data.Balance)
	assert.Equal(suite.T(), "£1,250.50", a.Data.BalanceFormatted)
	assert.True(suite.T(), a.Data.HasTransactions)
	assert.True(suite.T(), *a.Data.OnBudget, "Accounts are on budget by default")

	r := test.Request(suite.T(), suite.controller, http.MethodGet, a.Data.Links.Transactions, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var transactions v1.TransactionListResponse
	test.DecodeResponse(suite.T(), &r, &transactions)
	require.Len(suite.T(), transactions.Data, 1)
	assert.Equal(suite.T(), models.StartingBalanceDescription, transactions.Data[0].Description)
}

// TestAccountsGetSingle verifies that requests for the resource endpoints are
// handled correctly.
func (suite *TestSuiteStandard) TestAccountsGetSingle() {
	a := suite.createTestAccount(suite.T(), v1.AccountCreate{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing account", a.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET ID nil", uuid.Nil.String(), http.StatusNotFound, http.MethodGet},
		{"GET No account with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"PATCH No account with this ID", uuid.New().String(), http.StatusNotFound, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
		{"DELETE No account with this ID", uuid.New().String(), http.StatusNotFound, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, tt.method, fmt.Sprintf("http://example.com/v1/accounts/%s", tt.id), "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsGetFilter() {
	onBudget := false

	_ = suite.createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Current account", Note: "Joint"}})
	_ = suite.createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Savings", Type: models.Savings, OnBudget: &onBudget}})
	_ = suite.createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Credit card", Type: models.Credit}})

	tests := []struct {
		name  string
		query string
		len   int
		total int64
	}{
		{"All", "", 3, 3},
		{"Name", "name=account", 1, 1},
		{"Empty note", "note=", 2, 2},
		{"Type", "type=savings", 1, 1},
		{"On budget", "onBudget=true", 2, 2},
		{"Off budget", "onBudget=false", 1, 1},
		{"Search", "search=joint", 1, 1},
		{"Limit", "limit=2", 2, 3},
		{"Offset", "offset=2", 1, 3},
		{"Limit 0", "limit=0", 0, 3},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodGet, fmt.Sprintf("http://example.com/v1/accounts?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var response v1.AccountListResponse
			test.DecodeResponse(t, &r, &response)

			assert.Len(t, response.Data, tt.len)
			assert.Equal(t, tt.total, response.Pagination.Total)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsUpdate() {
	a := suite.createTestAccount(suite.T(), v1.AccountCreate{AccountEditable: v1.AccountEditable{Name: "Current account", Note: "Old note"}})

	r := test.Request(suite.T(), suite.controller, http.MethodPatch, a.Data.Links.Self, map[string]any{
		"note":     "",
		"onBudget": false,
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.AccountResponse
	test.DecodeResponse(suite.T(), &r, &updated)

	assert.Equal(suite.T(), "Current account", updated.Data.Name, "Fields not in the body must not change")
	assert.Equal(suite.T(), "", updated.Data.Note)
	assert.False(suite.T(), *updated.Data.OnBudget)
}

func (suite *TestSuiteStandard) TestAccountsUpdateFails() {
	a := suite.createTestAccount(suite.T(), v1.AccountCreate{})
	other := suite.createTestAccount(suite.T(), v1.AccountCreate{})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Empty body", "", http.StatusBadRequest},
		{"Broken body", `{ "name": 2 `, http.StatusBadRequest},
		{"Invalid type", map[string]any{"type": "stocks"}, http.StatusBadRequest},
		{"Duplicate name", map[string]any{"name": other.Data.Name}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, suite.controller, http.MethodPatch, a.Data.Links.Self, tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAccountsDelete() {
	unused := suite.createTestAccount(suite.T(), v1.AccountCreate{})
	used := suite.createTestAccount(suite.T(), v1.AccountCreate{StartingBalance: "10"})

	r := test.Request(suite.T(), suite.controller, http.MethodDelete, unused.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), suite.controller, http.MethodGet, unused.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)

	r = test.Request(suite.T(), suite.controller, http.MethodDelete, used.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response struct{ Error string }
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), models.ErrAccountInUse.Error(), response.Error)
}
