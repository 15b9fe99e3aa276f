package httputil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/url"
	"reflect"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// taggedField is an exported struct field with the name it has in a
// struct tag.
type taggedField struct {
	Name string // Go field name
	Key  string // name in the tag, without options
	Tag  reflect.StructTag
}

// taggedFields returns the fields of the struct v that carry the tag,
// including those of embedded structs. Fields tagged "-" are skipped.
func taggedFields(v any, tag string) []taggedField {
	t := reflect.Indirect(reflect.ValueOf(v)).Type()
	return collectFields(t, tag, nil)
}

func collectFields(t reflect.Type, tag string, fields []taggedField) []taggedField {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			if _, tagged := f.Tag.Lookup(tag); !tagged {
				fields = collectFields(f.Type, tag, fields)
				continue
			}
		}

		if !f.IsExported() {
			continue
		}

		key, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if key == "" || key == "-" {
			continue
		}

		fields = append(fields, taggedField{Name: f.Name, Key: key, Tag: f.Tag})
	}

	return fields
}

// GetURLFields returns the names of the fields of filter whose "form"
// parameter is present in the query string.
//
// queryFields only has the fields that can be passed to a gorm Where
// as they are. Fields tagged filterField:"false" are handled by the
// caller, e.g. a search, and only appear in setFields. Knowing the
// set fields allows filtering for zero values, e.g. hidden=false.
func GetURLFields(url *url.URL, filter any) (queryFields []any, setFields []string) {
	query := url.Query()

	for _, f := range taggedFields(filter, "form") {
		if !query.Has(f.Key) {
			continue
		}

		setFields = append(setFields, f.Name)
		if f.Tag.Get("filterField") != "false" {
			queryFields = append(queryFields, f.Name)
		}
	}

	return queryFields, setFields
}

// GetBodyFields returns the names of the fields of resource that are
// present in the JSON request body, including fields set to null.
//
// The body is restored afterwards so that it can still be bound.
func GetBodyFields(c *gin.Context, resource any) ([]any, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return []any{}, ErrInvalidBody
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	if len(bytes.TrimSpace(body)) == 0 {
		return []any{}, ErrRequestBodyEmpty
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		log.Debug().Str("request-id", requestid.Get(c)).Err(err).Msg("could not read fields of request body")
		return []any{}, ErrInvalidBody
	}

	var fields []any
	for _, f := range taggedFields(resource, "json") {
		if _, ok := present[f.Key]; ok {
			fields = append(fields, f.Name)
		}
	}

	return fields, nil
}
