package budget

import (
	"fmt"

	"github.com/envelope-zero/tracker/internal/types"
)

// TargetType is the kind of goal a category works towards.
type TargetType string

const (
	MonthlySavings TargetType = "monthly_savings"  // Assign the amount every month
	SavingsBalance TargetType = "savings_balance"  // Accumulate the amount by the target month
	SpendingByDate TargetType = "spending_by_date" // Have the amount ready to spend by the target month
)

// HasDate reports whether targets of this type require a target month.
func (t TargetType) HasDate() bool {
	return t == SavingsBalance || t == SpendingByDate
}

// Valid reports whether the type is known.
func (t TargetType) Valid() bool {
	return t == MonthlySavings || t.HasDate()
}

// Target is the goal of a category, effective from a specific month on.
type Target struct {
	Type          TargetType   `json:"type" example:"savings_balance"`   // The kind of target
	Amount        int64        `json:"amount" example:"120000"`          // Target amount in cents
	Date          *types.Month `json:"date" example:"2025-06"`           // Month the target must be reached by. Only for savings_balance and spending_by_date
	EffectiveFrom types.Month  `json:"effectiveFrom" example:"2024-06"` // First month the target applies to
}

// Validate checks the target for the month it is set in.
func (t Target) Validate(month types.Month) error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: unknown target type %q", ErrInvalidTarget, t.Type)
	}

	if t.Amount <= 0 {
		return fmt.Errorf("%w: the amount must be positive", ErrInvalidTarget)
	}

	if !t.Type.HasDate() {
		return nil
	}

	if t.Date == nil || t.Date.IsZero() {
		return fmt.Errorf("%w: %s targets need a target month", ErrInvalidTarget, t.Type)
	}

	if !t.Date.After(month) {
		return fmt.Errorf("%w: the target month %s must be after %s", ErrInvalidTarget, t.Date, month)
	}

	return nil
}

// normalize returns the target as it is stored when set in month.
func (t Target) normalize(month types.Month) Target {
	t.EffectiveFrom = month
	if !t.Type.HasDate() {
		t.Date = nil
	}
	return t
}

// Underfunded returns how much still needs to be assigned in month to
// be on track for the target.
//
// assigned is the amount assigned in month, cumulative the amount assigned
// from the month the target took effect up to and including month.
//
// Date based targets are funded in equal parts over the months from
// EffectiveFrom up to the month before Date. Once that month is reached,
// the full amount is required.
func (t Target) Underfunded(month types.Month, assigned, cumulative int64) int64 {
	if !t.Type.HasDate() {
		return max(0, t.Amount-assigned)
	}

	required := t.Amount
	span := int64(types.MonthsBetween(t.EffectiveFrom, *t.Date))
	elapsed := int64(types.MonthsBetween(t.EffectiveFrom, month) + 1)
	if span > 0 && elapsed < span {
		required = ceilDiv(t.Amount*max(elapsed, 0), span)
	}

	return max(0, required-cumulative)
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
