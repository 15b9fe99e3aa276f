package models_test

import (
	"context"
	"time"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
)

var june = types.NewMonth(2024, time.June)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (suite *TestSuiteStandard) TestStoreMonthData() {
	store := models.NewStore(models.DB)

	account := suite.createTestAccount(models.Account{OnBudget: true})
	tracking := suite.createTestAccount(models.Account{Type: models.Savings})
	groceries := suite.createTestCategory(models.Category{Name: "Groceries"})
	rent := suite.createTestCategory(models.Category{Name: "Rent"})
	_ = suite.createTestCategory(models.Category{Name: "Archived", Hidden: true})

	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: 320000})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -4500, CategoryID: &groceries.ID})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -1500, CategoryID: &groceries.ID})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -800})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -99999, CategoryID: &rent.ID, Date: date(2024, time.May, 31)})
	suite.createTestTransaction(models.Transaction{AccountID: tracking.ID, Amount: 50000})

	err := store.SetAllocations(context.Background(), june, []budget.Allocation{
		{CategoryID: groceries.ID, Amount: 25000},
		{CategoryID: rent.ID, Amount: 100000},
	})
	suite.Require().Nil(err)

	data, err := store.MonthData(context.Background(), june)
	suite.Require().Nil(err)

	suite.Assert().Equal(int64(320000), data.Income)
	suite.Assert().Equal(int64(1), data.UncategorizedExpenses)
	suite.Require().Len(data.Rows, 2, "Hidden categories without money must not be included")

	suite.Assert().Equal("Groceries", data.Rows[0].Name)
	suite.Assert().Equal(int64(25000), data.Rows[0].Assigned)
	suite.Assert().Equal(int64(-6000), data.Rows[0].Activity)
	suite.Assert().Equal(models.DefaultColour, data.Rows[0].Colour)

	suite.Assert().Equal("Rent", data.Rows[1].Name)
	suite.Assert().Equal(int64(100000), data.Rows[1].Assigned)
	suite.Assert().Equal(int64(0), data.Rows[1].Activity)
}

func (suite *TestSuiteStandard) TestStoreSetAllocations() {
	store := models.NewStore(models.DB)
	c := suite.createTestCategory(models.Category{})

	err := store.SetAllocations(context.Background(), june, []budget.Allocation{{CategoryID: c.ID, Amount: 1000}})
	suite.Require().Nil(err)

	err = store.SetAllocations(context.Background(), june, []budget.Allocation{{CategoryID: c.ID, Amount: 2500}})
	suite.Require().Nil(err)

	var allocations []models.Allocation
	suite.Require().Nil(models.DB.Find(&allocations).Error)
	suite.Require().Len(allocations, 1, "Allocations must be updated, not duplicated")
	suite.Assert().Equal(int64(2500), allocations[0].Amount)
	suite.Assert().True(allocations[0].Month.Equal(june))

	err = store.SetAllocations(context.Background(), june, []budget.Allocation{{CategoryID: c.ID, Amount: 0}})
	suite.Require().Nil(err)

	suite.Require().Nil(models.DB.Find(&allocations).Error)
	suite.Assert().Len(allocations, 0, "Allocating 0 must remove the allocation")
}

func (suite *TestSuiteStandard) TestStoreSetAllocationsAtomic() {
	store := models.NewStore(models.DB)
	c := suite.createTestCategory(models.Category{})

	err := store.SetAllocations(context.Background(), june, []budget.Allocation{
		{CategoryID: c.ID, Amount: 1000},
		{CategoryID: uuid.New(), Amount: 1000},
	})
	suite.Assert().NotNil(err, "Allocation to a category that does not exist must fail")

	var count int64
	suite.Require().Nil(models.DB.Model(&models.Allocation{}).Count(&count).Error)
	suite.Assert().Equal(int64(0), count, "No allocation must be stored when one fails")
}

func (suite *TestSuiteStandard) TestStoreEnsureCategories() {
	store := models.NewStore(models.DB)
	c := suite.createTestCategory(models.Category{})

	suite.Assert().Nil(store.EnsureCategories(context.Background(), c.ID, c.ID))
	suite.Assert().Nil(store.EnsureCategories(context.Background()))

	err := store.EnsureCategories(context.Background(), c.ID, uuid.New())
	suite.Assert().ErrorIs(err, budget.ErrNotFound)
}

func (suite *TestSuiteStandard) TestStoreTargetHistory() {
	store := models.NewStore(models.DB)
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	may := types.NewMonth(2024, time.May)
	december := types.NewMonth(2024, time.December)

	_, err := store.SetTarget(ctx, c.ID, budget.Target{Type: budget.MonthlySavings, Amount: 5000, EffectiveFrom: may})
	suite.Require().Nil(err)

	t, err := store.SetTarget(ctx, c.ID, budget.Target{Type: budget.SavingsBalance, Amount: 60000, Date: &december, EffectiveFrom: june})
	suite.Require().Nil(err)
	suite.Assert().Equal(budget.SavingsBalance, t.Type)

	target, err := store.Target(ctx, c.ID, may)
	suite.Require().Nil(err)
	suite.Require().NotNil(target)
	suite.Assert().Equal(budget.MonthlySavings, target.Type, "Past months must keep their target")

	target, err = store.Target(ctx, c.ID, june.AddDate(0, 2))
	suite.Require().Nil(err)
	suite.Require().NotNil(target)
	suite.Assert().Equal(int64(60000), target.Amount)
	suite.Assert().True(target.Date.Equal(december))

	// Setting a target in the same month replaces it
	_, err = store.SetTarget(ctx, c.ID, budget.Target{Type: budget.MonthlySavings, Amount: 7000, EffectiveFrom: june})
	suite.Require().Nil(err)

	var count int64
	suite.Require().Nil(models.DB.Model(&models.CategoryTarget{}).Count(&count).Error)
	suite.Assert().Equal(int64(2), count)

	err = store.RemoveTarget(ctx, c.ID, june.AddDate(0, 1))
	suite.Require().Nil(err)

	target, err = store.Target(ctx, c.ID, june.AddDate(0, 1))
	suite.Require().Nil(err)
	suite.Assert().Nil(target)

	target, err = store.Target(ctx, c.ID, june)
	suite.Require().Nil(err)
	suite.Require().NotNil(target)
	suite.Assert().Equal(int64(7000), target.Amount)
}

func (suite *TestSuiteStandard) TestStoreCumulativeAssigned() {
	store := models.NewStore(models.DB)
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	may := types.NewMonth(2024, time.May)
	december := types.NewMonth(2024, time.December)

	for _, m := range []types.Month{may.AddDate(0, -1), may, june} {
		suite.Require().Nil(store.SetAllocations(ctx, m, []budget.Allocation{{CategoryID: c.ID, Amount: 1000}}))
	}

	_, err := store.SetTarget(ctx, c.ID, budget.Target{Type: budget.SavingsBalance, Amount: 7000, Date: &december, EffectiveFrom: may})
	suite.Require().Nil(err)

	data, err := store.MonthData(ctx, june)
	suite.Require().Nil(err)
	suite.Require().Len(data.Rows, 1)
	suite.Require().NotNil(data.Rows[0].Target)
	suite.Assert().Equal(int64(2000), data.Rows[0].AssignedSinceTarget, "Only allocations since the target took effect must be counted")
}

func (suite *TestSuiteStandard) TestStoreActivity() {
	store := models.NewStore(models.DB)
	account := suite.createTestAccount(models.Account{OnBudget: true})
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	_, ok, err := store.FirstActivity(ctx, c.ID)
	suite.Require().Nil(err)
	suite.Assert().False(ok)

	suite.createTestTransaction(models.Transaction{AccountID: account.ID, CategoryID: &c.ID, Amount: -1000, Date: date(2024, time.March, 3)})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, CategoryID: &c.ID, Amount: -2000, Date: date(2024, time.March, 30)})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, CategoryID: &c.ID, Amount: 500, Date: date(2024, time.May, 1)})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, CategoryID: &c.ID, Amount: -9000, Date: date(2024, time.June, 1)})

	first, ok, err := store.FirstActivity(ctx, c.ID)
	suite.Require().Nil(err)
	suite.Assert().True(ok)
	suite.Assert().Equal("2024-03", first.String())

	activity, err := store.ActivityByMonth(ctx, c.ID, types.NewMonth(2024, time.March), types.NewMonth(2024, time.May))
	suite.Require().Nil(err)
	suite.Assert().Equal(map[string]int64{"2024-03": -3000, "2024-05": 500}, activity)

	average, err := budget.NewEngine(store, nil).GetCategoryAverage(ctx, c.ID, june, 3)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(1167), average)
}

func (suite *TestSuiteStandard) TestStoreListTransactions() {
	store := models.NewStore(models.DB)
	account := suite.createTestAccount(models.Account{OnBudget: true})
	other := suite.createTestAccount(models.Account{OnBudget: true})
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -1000, Description: "Corner Shop", CategoryID: &c.ID, Date: date(2024, time.June, 1)})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -2000, Description: "SUPERMARKET", Date: date(2024, time.June, 30)})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: 300000, Description: "Salary", Date: date(2024, time.July, 1)})
	suite.createTestTransaction(models.Transaction{AccountID: other.ID, Amount: -500, Description: "Supermarket", Date: date(2024, time.May, 31)})

	tests := []struct {
		name   string
		filter selection.Filter
		page   selection.Page
		total  int64
		first  string
	}{
		{"All", selection.Filter{}, selection.Page{}, 4, "Salary"},
		{"Account", selection.Filter{AccountID: other.ID}, selection.Page{}, 1, "Supermarket"},
		{"Category", selection.Filter{CategoryID: c.ID}, selection.Page{}, 1, "Corner Shop"},
		{"Uncategorized", selection.Filter{Uncategorized: true}, selection.Page{}, 3, "Salary"},
		{"Month", selection.Filter{}.InMonth(types.CursorOf(june)), selection.Page{}, 2, "SUPERMARKET"},
		{"Search is case insensitive", selection.Filter{Search: "market"}, selection.Page{}, 2, "SUPERMARKET"},
		{"Type", selection.Filter{Type: selection.Income}, selection.Page{}, 1, "Salary"},
		{"Paging", selection.Filter{}, selection.Page{Offset: 1, Limit: 2}, 4, "SUPERMARKET"},
		{"Invalid date does not filter", selection.Filter{FromDate: "June"}, selection.Page{}, 4, "Salary"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			result, err := store.ListTransactions(ctx, tt.filter, tt.page)
			suite.Require().Nil(err)
			suite.Assert().Equal(tt.total, result.Total)
			suite.Require().NotEmpty(result.Items)
			suite.Assert().Equal(tt.first, result.Items[0].Description)

			if tt.page.Limit > 0 {
				suite.Assert().LessOrEqual(len(result.Items), tt.page.Limit)
			}
		})
	}
}

func (suite *TestSuiteStandard) TestStoreSetCategory() {
	store := models.NewStore(models.DB)
	account := suite.createTestAccount(models.Account{OnBudget: true})
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	t1 := suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -1000, Description: "Bakery"})
	t2 := suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -2000, Description: "Butcher"})
	_ = suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -3000, Description: "Bakery", Date: date(2024, time.July, 2)})

	count, err := store.SetCategoryByIDs(ctx, []uuid.UUID{t1.ID, t2.ID}, &c.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(2), count)

	var transaction models.Transaction
	suite.Require().Nil(models.DB.First(&transaction, t2.ID).Error)
	suite.Require().NotNil(transaction.CategoryID)
	suite.Assert().Equal(c.ID, *transaction.CategoryID)
	suite.Assert().Equal(int64(-2000), transaction.Amount)

	count, err = store.SetCategoryMatching(ctx, selection.Filter{Search: "bakery"}, nil)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(2), count)

	count, err = store.SetCategoryMatching(ctx, selection.Filter{}, &c.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(3), count)

	_, err = store.SetCategoryByIDs(ctx, []uuid.UUID{t1.ID}, &account.ID)
	suite.Assert().ErrorIs(err, budget.ErrNotFound)
}

func (suite *TestSuiteStandard) TestStoreDeleteCategory() {
	store := models.NewStore(models.DB)
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	transaction := suite.createTestTransaction(models.Transaction{Amount: -1000, CategoryID: &c.ID})
	suite.Require().Nil(store.SetAllocations(ctx, june, []budget.Allocation{{CategoryID: c.ID, Amount: 1000}}))
	_, err := store.SetTarget(ctx, c.ID, budget.Target{Type: budget.MonthlySavings, Amount: 1000, EffectiveFrom: june})
	suite.Require().Nil(err)
	suite.Require().Nil(models.DB.Create(&models.MatchRule{CategoryID: c.ID, Match: "*"}).Error)

	suite.Require().Nil(store.DeleteCategory(ctx, c))

	var reloaded models.Transaction
	suite.Require().Nil(models.DB.First(&reloaded, transaction.ID).Error)
	suite.Assert().Nil(reloaded.CategoryID)

	for _, model := range []any{&models.Allocation{}, &models.CategoryTarget{}, &models.MatchRule{}, &models.Category{}} {
		var count int64
		suite.Require().Nil(models.DB.Model(model).Count(&count).Error)
		suite.Assert().Equal(int64(0), count, "%T must be deleted", model)
	}
}

func (suite *TestSuiteStandard) TestStoreBalanceAndReports() {
	store := models.NewStore(models.DB)
	account := suite.createTestAccount(models.Account{Name: "Current", OnBudget: true})
	c := suite.createTestCategory(models.Category{Name: "Fuel"})
	ctx := context.Background()

	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: 10000})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -2500, CategoryID: &c.ID})
	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -1500, CategoryID: &c.ID, Date: date(2024, time.January, 1)})

	balance, err := store.Balance(ctx, account.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(6000), balance)

	categories, err := store.ReportByCategory(ctx, models.ReportFilter{FromDate: date(2024, time.June, 1)})
	suite.Require().Nil(err)
	suite.Require().Len(categories, 2)
	suite.Assert().Equal("Fuel", *categories[0].CategoryName)
	suite.Assert().Equal(int64(-2500), categories[0].Total)
	suite.Assert().Equal(int64(1), categories[0].Count)
	suite.Assert().Nil(categories[1].CategoryID, "Uncategorized transactions must be reported last")

	accounts, err := store.ReportByAccount(ctx, models.ReportFilter{Type: selection.Expense})
	suite.Require().Nil(err)
	suite.Require().Len(accounts, 1)
	suite.Assert().Equal("Current", accounts[0].AccountName)
	suite.Assert().Equal(int64(-4000), accounts[0].Total)
	suite.Assert().Equal(int64(2), accounts[0].Count)
}

func (suite *TestSuiteStandard) TestStoreEngine() {
	store := models.NewStore(models.DB)
	account := suite.createTestAccount(models.Account{OnBudget: true})
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: 20000})

	engine := budget.NewEngine(store, nil)
	_, err := engine.SetCategoryTarget(ctx, c.ID, june, budget.Target{Type: budget.MonthlySavings, Amount: 15000})
	suite.Require().Nil(err)

	s, err := engine.FundAllUnderfunded(ctx, june)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(15000), s.TotalAssigned)
	suite.Assert().Equal(int64(5000), s.ReadyToAssign)
	suite.Assert().Equal(int64(0), s.TotalUnderfunded)
	suite.Assert().Nil(s.Check())
}

func (suite *TestSuiteStandard) TestStoreDBClosed() {
	store := models.NewStore(models.DB)
	suite.CloseDB()

	_, err := store.MonthData(context.Background(), june)
	suite.Assert().ErrorIs(err, models.ErrGeneral)

	_, err = store.ListTransactions(context.Background(), selection.Filter{}, selection.Page{})
	suite.Assert().ErrorIs(err, models.ErrGeneral)

	err = store.SetAllocations(context.Background(), june, []budget.Allocation{{CategoryID: uuid.New(), Amount: 100}})
	suite.Assert().ErrorIs(err, models.ErrGeneral, "Transactions that cannot be started fail with ErrGeneral")
}

func (suite *TestSuiteStandard) TestStoreAccounts() {
	store := models.NewStore(models.DB)
	ctx := context.Background()

	withBalance := models.Account{Name: "Current", OnBudget: true}
	suite.Require().Nil(store.CreateAccount(ctx, &withBalance, 12050))

	empty := models.Account{Name: "Savings", Type: models.Savings}
	suite.Require().Nil(store.CreateAccount(ctx, &empty, 0))

	balance, err := store.Balance(ctx, withBalance.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(12050), balance)

	var starting models.Transaction
	suite.Require().Nil(models.DB.Where("account_id = ?", withBalance.ID).First(&starting).Error)
	suite.Assert().Equal(models.StartingBalanceDescription, starting.Description)
	suite.Assert().Equal(selection.Income, starting.Type)

	used, err := store.AccountsWithTransactions(ctx, withBalance.ID, empty.ID)
	suite.Require().Nil(err)
	suite.Assert().True(used[withBalance.ID])
	suite.Assert().False(used[empty.ID])

	suite.Assert().ErrorIs(store.DeleteAccount(ctx, withBalance), models.ErrAccountInUse)
	suite.Assert().Nil(store.DeleteAccount(ctx, empty))

	var count int64
	suite.Require().Nil(models.DB.Model(&models.Account{}).Count(&count).Error)
	suite.Assert().Equal(int64(1), count)

	duplicate := models.Account{Name: "Current"}
	suite.Assert().ErrorIs(store.CreateAccount(ctx, &duplicate, 100), models.ErrAccountNameNotUnique)

	var transactions int64
	suite.Require().Nil(models.DB.Model(&models.Transaction{}).Count(&transactions).Error)
	suite.Assert().Equal(int64(1), transactions, "Starting balances of accounts that cannot be created are not stored")
}

func (suite *TestSuiteStandard) TestStoreTransactionView() {
	store := models.NewStore(models.DB)
	account := suite.createTestAccount(models.Account{OnBudget: true})
	c := suite.createTestCategory(models.Category{})
	ctx := context.Background()

	for _, amount := range []int64{-100, -200, -300} {
		suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: amount, Description: "Coffee"})
	}
	july := suite.createTestTransaction(models.Transaction{AccountID: account.ID, Amount: -400, Description: "Coffee", Date: date(2024, time.July, 1)})

	loader := selection.NewLoader(store.ListTransactions)
	view := selection.NewView(selection.Filter{AccountID: account.ID})
	view.SetMonth(types.CursorOf(june))

	page, err := loader.Load(ctx, view.Filter(), selection.Page{Limit: 2})
	suite.Require().Nil(err)
	suite.Assert().Len(page.Items, 2)
	suite.Assert().Equal(int64(3), page.Total)

	view.ToggleAll()
	suite.Assert().Equal(int64(3), view.Selection().Count(page.Total))

	updated, err := selection.BulkRecategorize(ctx, store, view.Selection(), view.Filter(), &c.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(3), updated, "Everything matching the filter is updated, not only the loaded page")

	var reloaded models.Transaction
	suite.Require().Nil(models.DB.First(&reloaded, july.ID).Error)
	suite.Assert().Nil(reloaded.CategoryID, "Transactions outside the month are not selected")

	view.SetMonth(types.CursorOf(june.AddDate(0, 1)))
	suite.Assert().Equal(selection.None, view.Selection().Mode(), "Changing the month clears the selection")
}
