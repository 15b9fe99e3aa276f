package v1

import (
	"github.com/envelope-zero/tracker/internal/types"
	ez_uuid "github.com/envelope-zero/tracker/internal/uuid"
)

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URIMonth struct {
	Month types.Month `uri:"month" example:"2024-06" binding:"required"` // Year and month in YYYY-MM format
}

type URIMonthCategory struct {
	URIMonth
	CategoryID ez_uuid.UUID `uri:"categoryId" binding:"required" format:"UUID"` // ID of the category
}

type QueryMonth struct {
	Month types.Month `form:"month" example:"2024-06"` // Year and month in YYYY-MM format
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}
