// Package csvimport parses transaction CSV files.
//
// The header row names the columns. date (YYYY-MM-DD), description and
// amount are required, type (income or expense) and category are optional.
// Columns are matched case-insensitively and may appear in any order.
package csvimport

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/envelope-zero/tracker/internal/importer"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/money"
	"github.com/envelope-zero/tracker/internal/selection"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxRows is the maximum number of transactions in one file.
const MaxRows = 10000

var (
	ErrMissingColumn = errors.New("CSV missing required column")
	ErrTooManyRows   = fmt.Errorf("CSV exceeds maximum of %d rows", MaxRows)
	ErrEmptyFile     = errors.New("the CSV file is empty")
)

const (
	Date        = "date"
	Description = "description"
	Amount      = "amount"
	Type        = "type"
	Category    = "category"
)

type columns map[string]int

// get returns the trimmed value of the column, or "" if the file does not have it.
func (c columns) get(record []string, column string) string {
	i, ok := c[column]
	if !ok || i >= len(record) {
		return ""
	}

	return strings.TrimSpace(record[i])
}

// Parse parses the CSV file into transactions for the account.
func Parse(f io.Reader, accountID uuid.UUID) ([]importer.Transaction, error) {
	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	} else if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	cols := make(columns, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{Date, Description, Amount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	transactions := make([]importer.Transaction, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// csv.ParseError already contains the line
			return nil, fmt.Errorf("could not read line in CSV: %w", err)
		}

		if len(transactions) == MaxRows {
			return nil, ErrTooManyRows
		}

		date, err := time.Parse(time.DateOnly, cols.get(record, Date))
		if err != nil {
			return csvReadError(reader, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", cols.get(record, Date)))
		}

		amount, err := decimal.NewFromString(cols.get(record, Amount))
		if err != nil {
			return csvReadError(reader, fmt.Errorf("invalid amount %q", cols.get(record, Amount)))
		}

		cents := money.FromDecimal(amount)
		if cents == 0 {
			return csvReadError(reader, errors.New("the amount for a transaction must not be 0"))
		}

		transactionType := selection.TransactionType(strings.ToLower(cols.get(record, Type)))
		if transactionType != "" && !transactionType.Valid() {
			return csvReadError(reader, fmt.Errorf("invalid type %q, must be income or expense", transactionType))
		}

		description := cols.get(record, Description)
		description = models.TruncateDescription(description)

		transactions = append(transactions, importer.Transaction{
			Model: models.Transaction{
				AccountID:   accountID,
				Date:        date,
				Amount:      cents,
				Description: description,
				Type:        transactionType,
				ImportHash:  importer.Hash(accountID.String(), date.Format(time.DateOnly), description, money.ToDecimalString(cents), string(transactionType)),
			},
			Category: cols.get(record, Category),
		})
	}

	return transactions, nil
}

// csvReadError returns an error including the line of the input the error occurred in.
func csvReadError(r *csv.Reader, err error) ([]importer.Transaction, error) {
	line, _ := r.FieldPos(0)

	return nil, fmt.Errorf("error in line %d of the CSV: %w", line, err)
}
