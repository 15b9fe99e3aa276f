package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists the budget and the transactions in the database.
type Store struct {
	db *gorm.DB
}

// NewStore returns a Store using db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// total is the result of an aggregating query.
type total struct {
	CategoryID uuid.UUID
	Total      int64
}

// onBudget restricts a transaction query to transactions of on budget accounts.
func onBudget(db *gorm.DB) *gorm.DB {
	return db.Joins("JOIN accounts ON accounts.id = transactions.account_id").Where("accounts.on_budget = ?", true)
}

// inMonths restricts a transaction query to the months from first to last.
func inMonths(first, last types.Month) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("transactions.date >= ? AND transactions.date < ?", first.FirstDay(), last.AddDate(0, 1).FirstDay())
	}
}

// MonthData returns the state of all categories in the month.
//
// Hidden categories are only included when money is assigned to them or
// they have activity in the month.
func (s *Store) MonthData(ctx context.Context, month types.Month) (budget.MonthData, error) {
	db := s.db.WithContext(ctx)

	var categories []Category
	err := db.Order("name ASC").Find(&categories).Error
	if err != nil {
		return budget.MonthData{}, err
	}

	var allocations []Allocation
	err = db.Where("month = ?", month).Find(&allocations).Error
	if err != nil {
		return budget.MonthData{}, err
	}

	assigned := make(map[uuid.UUID]int64, len(allocations))
	for _, a := range allocations {
		assigned[a.CategoryID] = a.Amount
	}

	var activities []total
	err = db.Model(&Transaction{}).
		Scopes(onBudget, inMonths(month, month)).
		Select("transactions.category_id AS category_id, COALESCE(SUM(transactions.amount), 0) AS total").
		Where("transactions.category_id IS NOT NULL").
		Group("transactions.category_id").
		Scan(&activities).Error
	if err != nil {
		return budget.MonthData{}, err
	}

	activity := make(map[uuid.UUID]int64, len(activities))
	for _, a := range activities {
		activity[a.CategoryID] = a.Total
	}

	var income total
	err = db.Model(&Transaction{}).
		Scopes(onBudget, inMonths(month, month)).
		Select("COALESCE(SUM(transactions.amount), 0) AS total").
		Where("transactions.type = ?", selection.Income).
		Scan(&income).Error
	if err != nil {
		return budget.MonthData{}, err
	}

	var uncategorized int64
	err = db.Model(&Transaction{}).
		Scopes(onBudget, inMonths(month, month)).
		Where("transactions.type = ? AND transactions.category_id IS NULL", selection.Expense).
		Count(&uncategorized).Error
	if err != nil {
		return budget.MonthData{}, err
	}

	targets, err := s.activeTargets(db, month)
	if err != nil {
		return budget.MonthData{}, err
	}

	data := budget.MonthData{
		Income:                income.Total,
		UncategorizedExpenses: uncategorized,
		Rows:                  make([]budget.RowInput, 0, len(categories)),
	}

	for _, c := range categories {
		row := budget.RowInput{
			CategoryID: c.ID,
			Name:       c.Name,
			Colour:     c.Colour,
			Assigned:   assigned[c.ID],
			Activity:   activity[c.ID],
		}

		if c.Hidden && row.Assigned == 0 && row.Activity == 0 {
			continue
		}

		if t, ok := targets[c.ID]; ok {
			target := t.Target()
			row.Target = &target

			if target.Type.HasDate() {
				row.AssignedSinceTarget, err = s.assignedBetween(db, c.ID, target.EffectiveFrom, month)
				if err != nil {
					return budget.MonthData{}, err
				}
			}
		}

		data.Rows = append(data.Rows, row)
	}

	return data, nil
}

// activeTargets returns the targets active in the month by category ID.
func (s *Store) activeTargets(db *gorm.DB, month types.Month) (map[uuid.UUID]CategoryTarget, error) {
	var targets []CategoryTarget
	err := db.
		Where("effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)", month, month).
		Order("effective_from ASC").
		Find(&targets).Error
	if err != nil {
		return nil, err
	}

	byCategory := make(map[uuid.UUID]CategoryTarget, len(targets))
	for _, t := range targets {
		byCategory[t.CategoryID] = t
	}

	return byCategory, nil
}

// assignedBetween sums the amounts assigned to the category from the month
// first up to and including the month last.
func (s *Store) assignedBetween(db *gorm.DB, categoryID uuid.UUID, first, last types.Month) (int64, error) {
	var sum total
	err := db.Model(&Allocation{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("category_id = ? AND month >= ? AND month <= ?", categoryID, first, last).
		Scan(&sum).Error

	return sum.Total, err
}

// EnsureCategories returns an error wrapping ErrResourceNotFound if any of
// the categories does not exist.
func (s *Store) EnsureCategories(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	var found []uuid.UUID
	err := s.db.WithContext(ctx).Model(&Category{}).Where("id IN ?", ids).Pluck("id", &found).Error
	if err != nil {
		return err
	}

	for _, id := range ids {
		if !slices.Contains(found, id) {
			return fmt.Errorf("%w category with ID %s", ErrResourceNotFound, id)
		}
	}

	return nil
}

// SetAllocations stores the allocations for the month in one transaction.
//
// An amount of 0 removes the allocation.
func (s *Store) SetAllocations(ctx context.Context, month types.Month, allocations []budget.Allocation) error {
	return Atomic(ctx, s.db, func(tx *gorm.DB) error {
		for _, a := range allocations {
			if a.Amount == 0 {
				err := tx.Where("category_id = ? AND month = ?", a.CategoryID, month).Delete(&Allocation{}).Error
				if err != nil {
					return err
				}
				continue
			}

			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "category_id"}, {Name: "month"}},
				DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
			}).Create(&Allocation{
				CategoryID: a.CategoryID,
				Month:      month,
				Amount:     a.Amount,
			}).Error
			if err != nil {
				return err
			}
		}

		return nil
	})
}

// endTargets ends all targets of the category at month.
//
// Targets starting in month or later are deleted, the target active
// before month ends with it.
func endTargets(tx *gorm.DB, categoryID uuid.UUID, month types.Month) error {
	err := tx.Where("category_id = ? AND effective_from >= ?", categoryID, month).Delete(&CategoryTarget{}).Error
	if err != nil {
		return err
	}

	return tx.Model(&CategoryTarget{}).
		Where("category_id = ? AND (effective_to IS NULL OR effective_to > ?)", categoryID, month).
		Update("effective_to", month).Error
}

// SetTarget replaces the target of the category from target.EffectiveFrom on.
func (s *Store) SetTarget(ctx context.Context, categoryID uuid.UUID, target budget.Target) (budget.Target, error) {
	t := CategoryTarget{
		CategoryID:    categoryID,
		Type:          target.Type,
		Amount:        target.Amount,
		Date:          target.Date,
		EffectiveFrom: target.EffectiveFrom,
	}

	err := Atomic(ctx, s.db, func(tx *gorm.DB) error {
		err := endTargets(tx, categoryID, target.EffectiveFrom)
		if err != nil {
			return err
		}

		return tx.Create(&t).Error
	})
	if err != nil {
		return budget.Target{}, err
	}

	return t.Target(), nil
}

// RemoveTarget removes the target of the category from month on.
func (s *Store) RemoveTarget(ctx context.Context, categoryID uuid.UUID, month types.Month) error {
	return Atomic(ctx, s.db, func(tx *gorm.DB) error {
		return endTargets(tx, categoryID, month)
	})
}

// Target returns the target of the category active in month.
func (s *Store) Target(ctx context.Context, categoryID uuid.UUID, month types.Month) (*budget.Target, error) {
	var targets []CategoryTarget
	err := s.db.WithContext(ctx).
		Where("category_id = ? AND effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)", categoryID, month, month).
		Limit(1).
		Find(&targets).Error
	if err != nil || len(targets) == 0 {
		return nil, err
	}

	t := targets[0].Target()
	return &t, nil
}

// ActivityByMonth returns the activity of the category per month.
func (s *Store) ActivityByMonth(ctx context.Context, categoryID uuid.UUID, from, until types.Month) (map[string]int64, error) {
	var transactions []struct {
		Date   time.Time
		Amount int64
	}

	err := s.db.WithContext(ctx).Model(&Transaction{}).
		Scopes(onBudget, inMonths(from, until)).
		Select("transactions.date AS date, transactions.amount AS amount").
		Where("transactions.category_id = ?", categoryID).
		Scan(&transactions).Error
	if err != nil {
		return nil, err
	}

	activity := make(map[string]int64)
	for _, t := range transactions {
		activity[types.MonthOf(t.Date.UTC()).String()] += t.Amount
	}

	return activity, nil
}

// FirstActivity returns the month of the first transaction of the category.
func (s *Store) FirstActivity(ctx context.Context, categoryID uuid.UUID) (types.Month, bool, error) {
	var first []Transaction
	err := s.db.WithContext(ctx).
		Scopes(onBudget).
		Where("transactions.category_id = ?", categoryID).
		Order("transactions.date ASC").
		Limit(1).
		Find(&first).Error
	if err != nil || len(first) == 0 {
		return types.Month{}, false, err
	}

	return types.MonthOf(first[0].Date), true, nil
}

// filterTransactions applies the filter to a transaction query.
//
// Dates that cannot be parsed do not filter.
func filterTransactions(f selection.Filter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.AccountID != uuid.Nil {
			db = db.Where("transactions.account_id = ?", f.AccountID)
		}

		if f.Uncategorized {
			db = db.Where("transactions.category_id IS NULL")
		} else if f.CategoryID != uuid.Nil {
			db = db.Where("transactions.category_id = ?", f.CategoryID)
		}

		if from, err := time.Parse(time.DateOnly, f.FromDate); err == nil {
			db = db.Where("transactions.date >= ?", from)
		}

		if until, err := time.Parse(time.DateOnly, f.UntilDate); err == nil {
			db = db.Where("transactions.date <= ?", until)
		}

		if f.Search != "" {
			db = db.Where("LOWER(transactions.description) LIKE ?", "%"+strings.ToLower(f.Search)+"%")
		}

		if f.Type != "" {
			db = db.Where("transactions.type = ?", f.Type)
		}

		return db
	}
}

// ListTransactions returns one page of the transactions matching the filter,
// newest first, and the number of all matching transactions.
func (s *Store) ListTransactions(ctx context.Context, f selection.Filter, p selection.Page) (selection.Result[Transaction], error) {
	p = p.Normalize()
	db := s.db.WithContext(ctx).Model(&Transaction{}).Scopes(filterTransactions(f)).Session(&gorm.Session{})

	var count int64
	err := db.Count(&count).Error
	if err != nil {
		return selection.Result[Transaction]{}, err
	}

	var transactions []Transaction
	err = db.
		Order("transactions.date DESC, transactions.created_at DESC").
		Offset(p.Offset).
		Limit(p.Limit).
		Find(&transactions).Error
	if err != nil {
		return selection.Result[Transaction]{}, err
	}

	return selection.Result[Transaction]{Items: transactions, Total: count}, nil
}

// SetCategoryByIDs sets the category of the transactions with the given IDs.
func (s *Store) SetCategoryByIDs(ctx context.Context, ids []uuid.UUID, categoryID *uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	return s.setCategory(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("transactions.id IN ?", ids)
	}, categoryID)
}

// SetCategoryMatching sets the category of all transactions matching the filter.
func (s *Store) SetCategoryMatching(ctx context.Context, f selection.Filter, categoryID *uuid.UUID) (int64, error) {
	return s.setCategory(ctx, filterTransactions(f), categoryID)
}

func (s *Store) setCategory(ctx context.Context, scope func(*gorm.DB) *gorm.DB, categoryID *uuid.UUID) (int64, error) {
	if categoryID != nil {
		err := s.EnsureCategories(ctx, *categoryID)
		if err != nil {
			return 0, err
		}
	}

	// Hooks validate complete transactions, this only changes one column
	result := s.db.WithContext(ctx).
		Session(&gorm.Session{SkipHooks: true, AllowGlobalUpdate: true}).
		Model(&Transaction{}).
		Scopes(scope).
		Update("category_id", categoryID)

	return result.RowsAffected, result.Error
}

// DeleteCategory deletes the category with its allocations and targets.
// Its transactions become uncategorized.
func (s *Store) DeleteCategory(ctx context.Context, category Category) error {
	return Atomic(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Session(&gorm.Session{SkipHooks: true}).
			Model(&Transaction{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}

		err = tx.Where("category_id = ?", category.ID).Delete(&Allocation{}).Error
		if err != nil {
			return err
		}

		err = tx.Where("category_id = ?", category.ID).Delete(&CategoryTarget{}).Error
		if err != nil {
			return err
		}

		err = tx.Where("category_id = ?", category.ID).Delete(&MatchRule{}).Error
		if err != nil {
			return err
		}

		return tx.Delete(&category).Error
	})
}

// Balance returns the sum of all transactions of the account.
func (s *Store) Balance(ctx context.Context, accountID uuid.UUID) (int64, error) {
	var sum total
	err := s.db.WithContext(ctx).Model(&Transaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("account_id = ?", accountID).
		Scan(&sum).Error

	return sum.Total, err
}

// StartingBalanceDescription is the description of the transaction
// created for the starting balance of an account.
const StartingBalanceDescription = "Starting balance"

// CreateAccount creates the account. A non-zero starting balance is booked
// as a transaction on the current day.
func (s *Store) CreateAccount(ctx context.Context, account *Account, startingBalance int64) error {
	return Atomic(ctx, s.db, func(tx *gorm.DB) error {
		err := tx.Create(account).Error
		if err != nil {
			return err
		}

		if startingBalance == 0 {
			return nil
		}

		return tx.Create(&Transaction{
			AccountID:   account.ID,
			Amount:      startingBalance,
			Description: StartingBalanceDescription,
			Date:        time.Now(),
		}).Error
	})
}

// DeleteAccount deletes the account if it has no transactions.
func (s *Store) DeleteAccount(ctx context.Context, account Account) error {
	return Atomic(ctx, s.db, func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Transaction{}).Where("account_id = ?", account.ID).Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return ErrAccountInUse
		}

		return tx.Delete(&account).Error
	})
}

// AccountsWithTransactions returns which of the accounts have transactions.
func (s *Store) AccountsWithTransactions(ctx context.Context, ids ...uuid.UUID) (map[uuid.UUID]bool, error) {
	used := make(map[uuid.UUID]bool, len(ids))
	if len(ids) == 0 {
		return used, nil
	}

	var found []uuid.UUID
	err := s.db.WithContext(ctx).Model(&Transaction{}).
		Distinct("account_id").
		Where("account_id IN ?", ids).
		Pluck("account_id", &found).Error
	if err != nil {
		return nil, err
	}

	for _, id := range found {
		used[id] = true
	}

	return used, nil
}
