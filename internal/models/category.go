package models

import (
	"regexp"
	"strings"

	"gorm.io/gorm"
)

// DefaultColour is used for categories created without a colour.
const DefaultColour = "#6B7280"

var colourPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Category is a budget category, the envelope money is assigned to.
type Category struct {
	DefaultModel
	Name   string `gorm:"uniqueIndex:category_name"`
	Colour string
	Note   string
	Hidden bool
}

func (c Category) Self() string {
	return "Category"
}

// BeforeSave trims whitespace and validates name and colour.
func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Note = strings.TrimSpace(c.Note)
	c.Colour = strings.TrimSpace(c.Colour)

	if c.Name == "" {
		return ErrCategoryNameEmpty
	}

	if c.Colour == "" {
		c.Colour = DefaultColour
	}

	if !colourPattern.MatchString(c.Colour) {
		return ErrColourInvalid
	}

	c.Colour = strings.ToUpper(c.Colour)
	return nil
}
