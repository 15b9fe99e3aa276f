package importer

import (
	"context"
	"strings"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// batchSize is the number of transactions inserted per statement.
const batchSize = 100

// Create stores the parsed transactions for the account.
//
// Transactions with an import hash that already exists for the account or
// appeared earlier in the same import are skipped. Transactions without
// a known category get the category of the first matching match rule.
// Either all remaining transactions are created or none.
func Create(ctx context.Context, db *gorm.DB, accountID uuid.UUID, transactions []Transaction) (Result, error) {
	var result Result

	err := models.Atomic(ctx, db, func(tx *gorm.DB) error {
		err := tx.First(&models.Account{}, models.Account{DefaultModel: models.DefaultModel{ID: accountID}}).Error
		if err != nil {
			return err
		}

		categories, err := categoryIDs(tx)
		if err != nil {
			return err
		}

		var rules []models.MatchRule
		err = tx.Order("priority ASC, match ASC").Find(&rules).Error
		if err != nil {
			return err
		}

		var existing []string
		err = tx.Model(&models.Transaction{}).
			Where("account_id = ? AND import_hash <> ''", accountID).
			Pluck("import_hash", &existing).Error
		if err != nil {
			return err
		}

		seen := make(map[string]bool, len(existing)+len(transactions))
		for _, hash := range existing {
			seen[hash] = true
		}

		create := make([]models.Transaction, 0, len(transactions))
		for _, t := range transactions {
			if t.Model.ImportHash != "" && seen[t.Model.ImportHash] {
				result.Skipped++
				continue
			}
			seen[t.Model.ImportHash] = true

			model := t.Model
			model.AccountID = accountID

			if id, ok := categories[strings.ToLower(strings.TrimSpace(t.Category))]; ok && t.Category != "" {
				model.CategoryID = &id
			} else if id, ok := Match(model.Description, rules); ok {
				model.CategoryID = &id
			}

			if model.CategoryID != nil {
				result.Categorized++
			}

			create = append(create, model)
		}

		if len(create) == 0 {
			return nil
		}

		err = tx.CreateInBatches(&create, batchSize).Error
		if err != nil {
			return err
		}

		result.Imported = len(create)
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	log.Info().
		Str("account", accountID.String()).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("import finished")

	return result, nil
}

// categoryIDs returns the IDs of all categories keyed by their lower-cased name.
func categoryIDs(tx *gorm.DB) (map[string]uuid.UUID, error) {
	var categories []models.Category
	err := tx.Select("id", "name").Find(&categories).Error
	if err != nil {
		return nil, err
	}

	ids := make(map[string]uuid.UUID, len(categories))
	for _, c := range categories {
		ids[strings.ToLower(c.Name)] = c.ID
	}

	return ids, nil
}
