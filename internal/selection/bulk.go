package selection

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Recategorizer changes the category of stored transactions.
//
// A nil category removes the category from the transactions.
type Recategorizer interface {
	SetCategoryByIDs(ctx context.Context, ids []uuid.UUID, categoryID *uuid.UUID) (int64, error)
	SetCategoryMatching(ctx context.Context, f Filter, categoryID *uuid.UUID) (int64, error)
}

// BulkRecategorize sets the category of all selected transactions and
// returns how many were updated.
//
// When everything is selected, all transactions matching the filter are
// updated, not only the ones loaded so far.
func BulkRecategorize(ctx context.Context, r Recategorizer, s Selection, f Filter, categoryID *uuid.UUID) (int64, error) {
	var (
		count int64
		err   error
	)

	switch s.Mode() {
	case All:
		count, err = r.SetCategoryMatching(ctx, f, categoryID)
	case Some:
		count, err = r.SetCategoryByIDs(ctx, s.IDs(), categoryID)
	default:
		return 0, nil
	}

	if err != nil {
		return 0, err
	}

	log.Debug().Str("mode", s.Mode().String()).Int64("updated", count).Msg("recategorized transactions")
	return count, nil
}
