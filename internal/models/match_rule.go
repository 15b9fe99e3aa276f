package models

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchRule assigns a category to imported transactions whose
// description matches the glob pattern in Match.
type MatchRule struct {
	DefaultModel
	CategoryID uuid.UUID `gorm:"type:uuid"`
	Category   Category  `json:"-"`
	Priority   uint
	Match      string
}

func (r MatchRule) Self() string {
	return "Match Rule"
}

func (r *MatchRule) BeforeSave(_ *gorm.DB) error {
	r.Match = strings.TrimSpace(r.Match)
	if r.Match == "" {
		return ErrMatchRuleEmpty
	}
	return nil
}
