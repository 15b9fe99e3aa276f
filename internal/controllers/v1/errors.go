package v1

import (
	"errors"
	"net/http"

	"github.com/envelope-zero/tracker/internal/budget"
	"github.com/envelope-zero/tracker/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"An ID specified in the query string was not a valid UUID"`
}

// status returns the appropriate HTTP status code for the error.
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, budget.ErrInsufficientReadyToAssign) {
		return http.StatusUnprocessableEntity
	}

	return http.StatusBadRequest
}

var (
	errAccountNotSet = errors.New("the account parameter must be set")
	errMonthNotSet   = errors.New("the month query parameter must be set")
	errMonthAhead    = errors.New("the month is further in the future than allowed")
	errInvalidDate   = errors.New("dates must be in the format YYYY-MM-DD")
)

// Import errors
var (
	errNoFilePost      = errors.New("you must send a file to this endpoint")
	errWrongFileSuffix = errors.New("this endpoint only supports files of the following types")
)
