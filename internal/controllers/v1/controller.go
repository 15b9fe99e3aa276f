// Package v1 implements the v1 HTTP API.
package v1

import (
	"time"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/money"
	"gorm.io/gorm"
)

// Controller holds the dependencies of the v1 handlers.
type Controller struct {
	DB     *gorm.DB
	Store  *models.Store
	Engine *budget.Engine

	// MaxMonthsAhead bounds the budget navigation, nil for no bound
	MaxMonthsAhead *int
	Formatter      money.Formatter
	Now            func() time.Time
}

// New returns a Controller using db. The snapshot cache is optional.
func New(db *gorm.DB, cache budget.Cache, maxMonthsAhead *int, formatter money.Formatter) Controller {
	store := models.NewStore(db)

	return Controller{
		DB:             db,
		Store:          store,
		Engine:         budget.NewEngine(store, cache),
		MaxMonthsAhead: maxMonthsAhead,
		Formatter:      formatter,
		Now:            time.Now,
	}
}
