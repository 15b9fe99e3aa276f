package importer_test

import (
	"context"
	"strings"
	"time"

	"github.com/envelope-zero/tracker/internal/importer"
	"github.com/envelope-zero/tracker/internal/importer/parser/csvimport"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/google/uuid"
)

const statement = `date,description,amount,type,category
2024-06-01,Salary,2500.00,income,
2024-06-03,Tesco Metro,-12.34,,
2024-06-04,Costa Coffee,-3.20,,Eating Out
2024-06-05,Rent,-950,,
`

func (suite *TestSuiteStandard) createAccount() models.Account {
	account := models.Account{Name: "Current", OnBudget: true}
	suite.Require().Nil(models.DB.Create(&account).Error)
	return account
}

func (suite *TestSuiteStandard) createCategory(name string) models.Category {
	category := models.Category{Name: name}
	suite.Require().Nil(models.DB.Create(&category).Error)
	return category
}

func (suite *TestSuiteStandard) parse(accountID uuid.UUID, input string) []importer.Transaction {
	transactions, err := csvimport.Parse(strings.NewReader(input), accountID)
	suite.Require().Nil(err)
	return transactions
}

func (suite *TestSuiteStandard) TestCreate() {
	account := suite.createAccount()
	groceries := suite.createCategory("Groceries")
	eatingOut := suite.createCategory("Eating Out")

	rules := []models.MatchRule{
		{CategoryID: eatingOut.ID, Priority: 2, Match: "*"},
		{CategoryID: groceries.ID, Priority: 1, Match: "tesco*"},
	}
	suite.Require().Nil(models.DB.Create(&rules).Error)

	result, err := importer.Create(context.Background(), models.DB, account.ID, suite.parse(account.ID, statement))
	suite.Require().Nil(err)

	suite.Assert().Equal(importer.Result{Imported: 4, Skipped: 0, Categorized: 4}, result)

	var transactions []models.Transaction
	suite.Require().Nil(models.DB.Order("date ASC").Find(&transactions).Error)
	suite.Require().Len(transactions, 4)

	salary := transactions[0]
	suite.Assert().Equal(selection.Income, salary.Type)
	suite.Assert().Equal(int64(250000), salary.Amount)
	suite.Assert().Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), salary.Date)
	suite.Assert().Equal(account.ID, salary.AccountID)

	tesco := transactions[1]
	suite.Assert().Equal(selection.Expense, tesco.Type)
	suite.Assert().Equal(int64(-1234), tesco.Amount)
	suite.Require().NotNil(tesco.CategoryID)
	suite.Assert().Equal(groceries.ID, *tesco.CategoryID, "Rules with lower priority values win")

	costa := transactions[2]
	suite.Require().NotNil(costa.CategoryID)
	suite.Assert().Equal(eatingOut.ID, *costa.CategoryID, "Category names are resolved")

	suite.Assert().NotEmpty(transactions[3].ImportHash)
}

func (suite *TestSuiteStandard) TestCreateCategoryNameCase() {
	account := suite.createAccount()
	groceries := suite.createCategory("Groceries")

	input := "date,description,amount,category\n2024-06-03,Tesco,-1,  GROCERIES \n2024-06-04,Aldi,-1,Unknown\n"

	result, err := importer.Create(context.Background(), models.DB, account.ID, suite.parse(account.ID, input))
	suite.Require().Nil(err)
	suite.Assert().Equal(2, result.Imported)
	suite.Assert().Equal(1, result.Categorized, "Unknown category names leave the transaction uncategorized")

	var tesco models.Transaction
	suite.Require().Nil(models.DB.Where("description = ?", "Tesco").First(&tesco).Error)
	suite.Require().NotNil(tesco.CategoryID)
	suite.Assert().Equal(groceries.ID, *tesco.CategoryID)
}

func (suite *TestSuiteStandard) TestCreateSkipsDuplicates() {
	account := suite.createAccount()
	other := models.Account{Name: "Savings", OnBudget: true}
	suite.Require().Nil(models.DB.Create(&other).Error)

	result, err := importer.Create(context.Background(), models.DB, account.ID, suite.parse(account.ID, statement))
	suite.Require().Nil(err)
	suite.Assert().Equal(4, result.Imported)

	again := statement + "2024-06-06,Bus,-2.50,,\n2024-06-06,Bus,-2.50,,\n"
	result, err = importer.Create(context.Background(), models.DB, account.ID, suite.parse(account.ID, again))
	suite.Require().Nil(err)
	suite.Assert().Equal(1, result.Imported)
	suite.Assert().Equal(5, result.Skipped, "Rows already imported and repeated rows are skipped")

	result, err = importer.Create(context.Background(), models.DB, other.ID, suite.parse(other.ID, statement))
	suite.Require().Nil(err)
	suite.Assert().Equal(4, result.Imported, "Duplicates are detected per account")

	var count int64
	suite.Require().Nil(models.DB.Model(&models.Transaction{}).Count(&count).Error)
	suite.Assert().Equal(int64(9), count)
}

func (suite *TestSuiteStandard) TestCreateEmpty() {
	account := suite.createAccount()

	result, err := importer.Create(context.Background(), models.DB, account.ID, nil)
	suite.Require().Nil(err)
	suite.Assert().Equal(importer.Result{}, result)
}

func (suite *TestSuiteStandard) TestCreateUnknownAccount() {
	_, err := importer.Create(context.Background(), models.DB, uuid.New(), suite.parse(uuid.New(), statement))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestCreateDBClosed() {
	account := suite.createAccount()
	transactions := suite.parse(account.ID, statement)

	sqlDB, err := models.DB.DB()
	suite.Require().Nil(err)
	sqlDB.Close()

	_, err = importer.Create(context.Background(), models.DB, account.ID, transactions)
	suite.Assert().ErrorIs(err, models.ErrGeneral)
}
