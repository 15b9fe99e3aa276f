package importer

import (
	"strings"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/google/uuid"
	"github.com/ryanuber/go-glob"
)

// Match returns the category of the first rule whose pattern matches the
// description, ignoring case.
//
// The rules must be sorted by priority.
func Match(description string, rules []models.MatchRule) (uuid.UUID, bool) {
	description = strings.ToLower(description)

	for _, rule := range rules {
		if glob.Glob(strings.ToLower(rule.Match), description) {
			return rule.CategoryID, true
		}
	}

	return uuid.Nil, false
}
