package budget

import (
	"context"
	"fmt"
	"sync"

	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// DefaultAverageWindow is the number of months averaged by GetCategoryAverage
// when no window is given.
const DefaultAverageWindow = 3

// Store persists the budget.
type Store interface {
	// MonthData returns the stored state of all categories for the month.
	MonthData(ctx context.Context, month types.Month) (MonthData, error)

	// EnsureCategories returns an error wrapping ErrNotFound if any of the
	// categories does not exist.
	EnsureCategories(ctx context.Context, ids ...uuid.UUID) error

	// SetAllocations stores all allocations for the month or none of them.
	SetAllocations(ctx context.Context, month types.Month, allocations []Allocation) error

	// SetTarget replaces the target of the category from month on.
	SetTarget(ctx context.Context, categoryID uuid.UUID, target Target) (Target, error)

	// RemoveTarget removes the target of the category from month on.
	RemoveTarget(ctx context.Context, categoryID uuid.UUID, month types.Month) error

	// ActivityByMonth returns the activity of the category for each month in
	// [from, until] that has transactions, keyed by the month formatted as YYYY-MM.
	ActivityByMonth(ctx context.Context, categoryID uuid.UUID, from, until types.Month) (map[string]int64, error)

	// FirstActivity returns the first month with a transaction for the category.
	FirstActivity(ctx context.Context, categoryID uuid.UUID) (types.Month, bool, error)
}

// Cache holds derived snapshots.
type Cache interface {
	Get(ctx context.Context, month types.Month) (Snapshot, bool)
	Set(ctx context.Context, snapshot Snapshot)

	// Invalidate drops all cached snapshots.
	Invalidate(ctx context.Context)
}

// Engine reads and changes the budget.
//
// Changes are serialized with snapshot derivation so that a snapshot
// derived before a change is never cached after it.
type Engine struct {
	store Store
	cache Cache

	mu    sync.RWMutex
	fills singleflight.Group
}

// NewEngine returns an Engine. The cache is optional.
func NewEngine(store Store, cache Cache) *Engine {
	if cache == nil {
		cache = noCache{}
	}

	return &Engine{
		store: store,
		cache: cache,
	}
}

// GetBudgetSnapshot returns the budget for the month.
//
// Concurrent calls for the same month that miss the cache derive the
// snapshot only once.
func (e *Engine) GetBudgetSnapshot(ctx context.Context, month types.Month) (Snapshot, error) {
	if s, ok := e.cache.Get(ctx, month); ok {
		return s, nil
	}

	v, err, _ := e.fills.Do(month.String(), func() (any, error) {
		e.mu.RLock()
		defer e.mu.RUnlock()

		s, err := e.snapshot(ctx, month)
		if err != nil {
			return Snapshot{}, err
		}

		e.cache.Set(ctx, s)
		return s, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return v.(Snapshot), nil
}

// snapshot derives the snapshot from the store without consulting the cache.
func (e *Engine) snapshot(ctx context.Context, month types.Month) (Snapshot, error) {
	data, err := e.store.MonthData(ctx, month)
	if err != nil {
		return Snapshot{}, err
	}

	return Derive(month, data), nil
}

// write runs fn exclusively and drops all cached snapshots if it succeeds.
func (e *Engine) write(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}

	e.cache.Invalidate(ctx)
	return nil
}

// Allocate sets the amount assigned to a category in the month and returns
// the updated snapshot.
func (e *Engine) Allocate(ctx context.Context, month types.Month, categoryID uuid.UUID, amount int64) (Snapshot, error) {
	return e.BulkAllocate(ctx, month, []Allocation{{CategoryID: categoryID, Amount: amount}})
}

// BulkAllocate sets the assigned amounts of multiple categories at once.
//
// Either all allocations are stored or none. If a category occurs more
// than once, the last allocation for it is used.
func (e *Engine) BulkAllocate(ctx context.Context, month types.Month, allocations []Allocation) (Snapshot, error) {
	err := e.write(ctx, func() error {
		return e.setAllocations(ctx, month, allocations)
	})
	if err != nil {
		return Snapshot{}, err
	}

	return e.GetBudgetSnapshot(ctx, month)
}

func (e *Engine) setAllocations(ctx context.Context, month types.Month, allocations []Allocation) error {
	ids := make([]uuid.UUID, 0, len(allocations))
	for _, a := range allocations {
		if a.Amount < 0 {
			return fmt.Errorf("%w: %d for category %s", ErrInvalidAmount, a.Amount, a.CategoryID)
		}
		ids = append(ids, a.CategoryID)
	}

	if err := e.store.EnsureCategories(ctx, ids...); err != nil {
		return err
	}

	if err := e.store.SetAllocations(ctx, month, dedupe(allocations)); err != nil {
		return err
	}

	log.Debug().Str("month", month.String()).Int("allocations", len(allocations)).Msg("allocated")
	return nil
}

// FundAllUnderfunded assigns the underfunded amount to every underfunded
// category in one step.
//
// If ready to assign does not cover the total underfunded amount, nothing
// is changed and ErrInsufficientReadyToAssign is returned.
func (e *Engine) FundAllUnderfunded(ctx context.Context, month types.Month) (Snapshot, error) {
	err := e.write(ctx, func() error {
		s, err := e.snapshot(ctx, month)
		if err != nil {
			return err
		}

		plan, err := s.FundingPlan()
		if err != nil || len(plan) == 0 {
			return err
		}

		return e.setAllocations(ctx, month, plan)
	})
	if err != nil {
		return Snapshot{}, err
	}

	return e.GetBudgetSnapshot(ctx, month)
}

// SetCategoryTarget sets the target of a category from month on.
//
// An existing target is replaced, months before month keep their target.
func (e *Engine) SetCategoryTarget(ctx context.Context, categoryID uuid.UUID, month types.Month, target Target) (Target, error) {
	if err := target.Validate(month); err != nil {
		return Target{}, err
	}

	var t Target
	err := e.write(ctx, func() error {
		if err := e.store.EnsureCategories(ctx, categoryID); err != nil {
			return err
		}

		var err error
		t, err = e.store.SetTarget(ctx, categoryID, target.normalize(month))
		return err
	})
	if err != nil {
		return Target{}, err
	}

	log.Debug().Str("month", month.String()).Str("category", categoryID.String()).Str("type", string(t.Type)).Msg("target set")
	return t, nil
}

// RemoveCategoryTarget removes the target of a category from month on.
func (e *Engine) RemoveCategoryTarget(ctx context.Context, categoryID uuid.UUID, month types.Month) error {
	err := e.write(ctx, func() error {
		if err := e.store.EnsureCategories(ctx, categoryID); err != nil {
			return err
		}

		return e.store.RemoveTarget(ctx, categoryID, month)
	})
	if err != nil {
		return err
	}

	log.Debug().Str("month", month.String()).Str("category", categoryID.String()).Msg("target removed")
	return nil
}

// GetCategoryAverage returns the average absolute activity of the category
// in the window months before month.
//
// Only months since the first transaction of the category are taken into
// account, a category without history averages to 0.
func (e *Engine) GetCategoryAverage(ctx context.Context, categoryID uuid.UUID, month types.Month, window int) (int64, error) {
	if window <= 0 {
		window = DefaultAverageWindow
	}

	if err := e.store.EnsureCategories(ctx, categoryID); err != nil {
		return 0, err
	}

	first, ok, err := e.store.FirstActivity(ctx, categoryID)
	if err != nil {
		return 0, err
	}

	from := month.AddDate(0, -window)
	if !ok || !first.Before(month) {
		return 0, nil
	}

	if from.Before(first) {
		from = first
	}

	until := month.AddDate(0, -1)
	activity, err := e.store.ActivityByMonth(ctx, categoryID, from, until)
	if err != nil {
		return 0, err
	}

	months := types.MonthsBetween(from, until) + 1

	var sum int64
	for m := from; !m.After(until); m = m.AddDate(0, 1) {
		a := activity[m.String()]
		if a < 0 {
			a = -a
		}
		sum += a
	}

	return (sum + int64(months)/2) / int64(months), nil
}

// Invalidate drops cached snapshots after changes the engine does not
// know about, e.g. new transactions.
func (e *Engine) Invalidate(ctx context.Context) {
	_ = e.write(ctx, func() error { return nil })
}

// dedupe keeps the last allocation for every category.
func dedupe(allocations []Allocation) []Allocation {
	index := make(map[uuid.UUID]int, len(allocations))
	result := make([]Allocation, 0, len(allocations))

	for _, a := range allocations {
		if i, ok := index[a.CategoryID]; ok {
			result[i] = a
			continue
		}

		index[a.CategoryID] = len(result)
		result = append(result, a)
	}

	return result
}

type noCache struct{}

func (noCache) Get(context.Context, types.Month) (Snapshot, bool) { return Snapshot{}, false }
func (noCache) Set(context.Context, Snapshot)                     {}
func (noCache) Invalidate(context.Context)                        {}
