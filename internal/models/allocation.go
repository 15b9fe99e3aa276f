package models

import (
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/google/uuid"
)

// Allocation is the amount assigned to a category in a month.
type Allocation struct {
	Timestamps
	CategoryID uuid.UUID   `gorm:"type:uuid;primaryKey"`
	Category   Category    `json:"-"`
	Month      types.Month `gorm:"primaryKey"` // Always 00:00 UTC on the first of the month
	Amount     int64
}

func (a Allocation) Self() string {
	return "Allocation"
}
