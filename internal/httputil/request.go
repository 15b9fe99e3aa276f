package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// BindData decodes the JSON request body into data.
//
// A value of the wrong type for a field is reported with the field name,
// anything else that is not valid JSON as ErrInvalidBody.
func BindData(c *gin.Context, data any) error {
	err := c.ShouldBindJSON(data)
	if err == nil {
		return nil
	}

	if errors.Is(err, io.EOF) {
		return ErrRequestBodyEmpty
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: field %q: %w", ErrInvalidBody, typeErr.Field, err)
	}

	log.Debug().Str("request-id", requestid.Get(c)).Err(err).Msg("could not bind request body")
	return ErrInvalidBody
}

// UUIDFromString parses s as UUID. The empty string is the Nil UUID.
func UUIDFromString(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidUUID, s)
	}
	return id, nil
}
