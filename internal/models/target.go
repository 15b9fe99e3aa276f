package models

import (
	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
)

// CategoryTarget is the target of a category for a range of months.
//
// A target applies to all months m with EffectiveFrom <= m < EffectiveTo.
// A nil EffectiveTo means the target is still active.
type CategoryTarget struct {
	DefaultModel
	CategoryID    uuid.UUID `gorm:"type:uuid;index"`
	Category      Category  `json:"-"`
	Type          budget.TargetType
	Amount        int64
	Date          *types.Month
	EffectiveFrom types.Month
	EffectiveTo   *types.Month
}

func (t CategoryTarget) Self() string {
	return "Category Target"
}

// Target returns the budget representation of the target.
func (t CategoryTarget) Target() budget.Target {
	return budget.Target{
		Type:          t.Type,
		Amount:        t.Amount,
		Date:          t.Date,
		EffectiveFrom: t.EffectiveFrom,
	}
}
