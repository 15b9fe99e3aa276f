package v1

import (
	"fmt"

	"github.com/envelope-zero/tracker/internal/models"
	ez_uuid "github.com/envelope-zero/tracker/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MatchRuleEditable represents all user configurable parameters
type MatchRuleEditable struct {
	Priority   uint      `json:"priority" example:"3"`                                     // The priority of the match rule. Lower numbers are checked first
	Match      string    `json:"match" example:"*Tesco*"`                                  // The glob the description is matched against, case-insensitive
	CategoryID uuid.UUID `json:"categoryId" example:"f9e873c2-fb96-4367-bfb6-7ecd9bf4a6b5"` // The ID of the category that is set for matching transactions
}

func (editable MatchRuleEditable) model() models.MatchRule {
	return models.MatchRule{
		Priority:   editable.Priority,
		Match:      editable.Match,
		CategoryID: editable.CategoryID,
	}
}

type MatchRuleLinks struct {
	Self string `json:"self" example:"https://example.com/api/v1/match-rules/95685c82-53c6-455d-b235-f49960b73b21"` // The match rule itself
}

type MatchRule struct {
	models.DefaultModel
	MatchRuleEditable
	Links MatchRuleLinks `json:"links"`
}

func newMatchRule(c *gin.Context, model models.MatchRule) MatchRule {
	url := c.GetString(string(models.DBContextURL))

	return MatchRule{
		DefaultModel: model.DefaultModel,
		MatchRuleEditable: MatchRuleEditable{
			Priority:   model.Priority,
			Match:      model.Match,
			CategoryID: model.CategoryID,
		},
		Links: MatchRuleLinks{
			Self: fmt.Sprintf("%s/v1/match-rules/%s", url, model.ID),
		},
	}
}

type MatchRuleListResponse struct {
	Data       []MatchRule `json:"data"`                                                          // List of Match Rules
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Pagination *Pagination `json:"pagination"`                                                    // Pagination information
}

type MatchRuleCreateResponse struct {
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred
	Data  []MatchRuleResponse `json:"data"`                                                          // List of created Match Rules
}

func (m *MatchRuleCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	m.Data = append(m.Data, MatchRuleResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type MatchRuleResponse struct {
	Data  *MatchRule `json:"data"`                                                          // The Match Rule data, if creation was successful
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"` // The error, if any occurred for this Match Rule
}

type MatchRuleQueryFilter struct {
	Priority   uint         `form:"priority"`                   // Filter by priority
	Match      string       `form:"match" filterField:"false"`  // Filter by match
	CategoryID ez_uuid.UUID `form:"category"`                   // Filter by category ID
	Offset     uint         `form:"offset" filterField:"false"` // The offset of the first Match Rule returned. Defaults to 0.
	Limit      int          `form:"limit" filterField:"false"`  // Maximum number of Match Rules to return. Defaults to 50.
}

func (f MatchRuleQueryFilter) model() models.MatchRule {
	return models.MatchRule{
		Priority:   f.Priority,
		CategoryID: f.CategoryID.UUID,
	}
}
