// Package budget implements the monthly budget snapshot and the commands
// that assign money to categories.
package budget

import (
	"fmt"

	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
)

// RowInput is the stored state of one category in a month.
type RowInput struct {
	CategoryID uuid.UUID
	Name       string
	Colour     string
	Assigned   int64
	Activity   int64

	// Target is the target active in the month, if any
	Target *Target

	// AssignedSinceTarget is the sum of amounts assigned from
	// Target.EffectiveFrom up to and including the month
	AssignedSinceTarget int64
}

// MonthData is everything the store knows about a month.
type MonthData struct {
	Income                int64
	UncategorizedExpenses int64
	Rows                  []RowInput
}

// Row is the budget of one category in a month.
type Row struct {
	CategoryID  uuid.UUID `json:"categoryId" example:"9a0dcb53-ba5f-4d02-ab06-8e4e0c1b5e4e"` // ID of the category
	Name        string    `json:"name" example:"Groceries"`                                 // Name of the category
	Colour      string    `json:"colour" example:"#4CAF50"`                                 // Display colour of the category
	Assigned    int64     `json:"assigned" example:"25000"`                                 // Assigned in this month, in cents
	Activity    int64     `json:"activity" example:"-18230"`                                // Net transaction amount in this month, in cents
	Available   int64     `json:"available" example:"6770"`                                 // Assigned plus activity, in cents
	Target      *Target   `json:"target"`                                                   // The target active in this month
	Underfunded *int64    `json:"underfunded" example:"0"`                                  // Amount still needed for the target, null without target
}

// Snapshot is the budget for a month.
type Snapshot struct {
	Month                 types.Month `json:"month" example:"2024-06"`
	Income                int64       `json:"income" example:"320000"`               // Income in this month, in cents
	TotalAssigned         int64       `json:"totalAssigned" example:"300000"`        // Sum of all assigned amounts
	ReadyToAssign         int64       `json:"readyToAssign" example:"20000"`         // Income minus total assigned
	TotalUnderfunded      int64       `json:"totalUnderfunded" example:"4500"`       // Sum of all underfunded amounts
	UncategorizedExpenses int64       `json:"uncategorizedExpenses" example:"3"`     // Number of expenses without category
	Rows                  []Row       `json:"rows"`
}

// Derive computes the snapshot for a month from the stored data.
//
// All derived values are computed from the full row set.
func Derive(month types.Month, data MonthData) Snapshot {
	s := Snapshot{
		Month:                 month,
		Income:                data.Income,
		UncategorizedExpenses: data.UncategorizedExpenses,
		Rows:                  make([]Row, 0, len(data.Rows)),
	}

	for _, in := range data.Rows {
		row := Row{
			CategoryID: in.CategoryID,
			Name:       in.Name,
			Colour:     in.Colour,
			Assigned:   in.Assigned,
			Activity:   in.Activity,
			Available:  in.Assigned + in.Activity,
			Target:     in.Target,
		}

		if in.Target != nil {
			u := in.Target.Underfunded(month, in.Assigned, in.AssignedSinceTarget)
			row.Underfunded = &u
			s.TotalUnderfunded += u
		}

		s.TotalAssigned += in.Assigned
		s.Rows = append(s.Rows, row)
	}

	s.ReadyToAssign = s.Income - s.TotalAssigned
	return s
}

// Row returns the row for a category.
func (s Snapshot) Row(categoryID uuid.UUID) (Row, bool) {
	for _, r := range s.Rows {
		if r.CategoryID == categoryID {
			return r, true
		}
	}
	return Row{}, false
}

// Check verifies that the derived values of the snapshot are consistent.
func (s Snapshot) Check() error {
	var assigned, underfunded int64
	for _, r := range s.Rows {
		if r.Available != r.Assigned+r.Activity {
			return fmt.Errorf("available for category %s is %d, expected %d", r.CategoryID, r.Available, r.Assigned+r.Activity)
		}

		if r.Underfunded != nil {
			if *r.Underfunded < 0 {
				return fmt.Errorf("underfunded for category %s is negative", r.CategoryID)
			}
			underfunded += *r.Underfunded
		}

		assigned += r.Assigned
	}

	if s.TotalAssigned != assigned {
		return fmt.Errorf("total assigned is %d, expected %d", s.TotalAssigned, assigned)
	}

	if s.ReadyToAssign != s.Income-s.TotalAssigned {
		return fmt.Errorf("ready to assign is %d, expected %d", s.ReadyToAssign, s.Income-s.TotalAssigned)
	}

	if s.TotalUnderfunded != underfunded {
		return fmt.Errorf("total underfunded is %d, expected %d", s.TotalUnderfunded, underfunded)
	}

	return nil
}

// Allocation sets the assigned amount of a category.
type Allocation struct {
	CategoryID uuid.UUID `json:"categoryId" example:"9a0dcb53-ba5f-4d02-ab06-8e4e0c1b5e4e"`
	Amount     int64     `json:"amount" example:"25000"`
}

// FundingPlan returns the allocations that fund every underfunded category.
//
// Categories that are not underfunded are not part of the plan.
func (s Snapshot) FundingPlan() ([]Allocation, error) {
	var plan []Allocation
	for _, r := range s.Rows {
		if r.Underfunded == nil || *r.Underfunded == 0 {
			continue
		}

		plan = append(plan, Allocation{
			CategoryID: r.CategoryID,
			Amount:     r.Assigned + *r.Underfunded,
		})
	}

	if len(plan) == 0 {
		return nil, nil
	}

	if s.ReadyToAssign < s.TotalUnderfunded {
		return nil, fmt.Errorf("%w: %d needed, %d available", ErrInsufficientReadyToAssign, s.TotalUnderfunded, s.ReadyToAssign)
	}

	return plan, nil
}
