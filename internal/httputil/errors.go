package httputil

import "errors"

// Errors of request parsing. All of them are client errors.
var (
	ErrInvalidBody      = errors.New("the request body is not valid JSON for this resource")
	ErrRequestBodyEmpty = errors.New("the request body must not be empty")
	ErrInvalidUUID      = errors.New("the ID is not a valid UUID")
)
