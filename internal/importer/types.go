// Package importer creates transactions from bank statement files.
package importer

import (
	"github.com/envelope-zero/tracker/internal/models"
)

// Transaction is a transaction parsed from an import file.
type Transaction struct {
	Model    models.Transaction
	Category string // Name of the category given in the file, if any
}

// Result summarizes an import.
type Result struct {
	Imported    int `json:"imported" example:"42"`    // Number of transactions created
	Skipped     int `json:"skipped" example:"3"`      // Number of rows skipped as duplicates
	Categorized int `json:"categorized" example:"37"` // Number of created transactions that have a category
}
