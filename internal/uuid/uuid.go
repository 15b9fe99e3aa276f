// Package uuid provides UUID types that gin can bind from query strings
// and URI parameters.
package uuid

import (
	"fmt"
	"strings"

	google_uuid "github.com/google/uuid"
)

// None is the query value that selects resources without a reference.
const None = "none"

type UUID struct {
	google_uuid.UUID
}

var Nil UUID

// UnmarshalParam parses p. An empty string is the Nil UUID.
func (u *UUID) UnmarshalParam(p string) error {
	if p == "" {
		*u = Nil
		return nil
	}

	parsed, err := google_uuid.Parse(p)
	if err != nil {
		return fmt.Errorf("%q is not a valid UUID: %w", p, err)
	}

	*u = UUID{parsed}
	return nil
}

// Reference is an optional reference to another resource in a query.
//
// Besides a UUID, it accepts "none" to explicitly select resources
// without a reference, e.g. uncategorized transactions.
type Reference struct {
	UUID
	None bool
}

// UnmarshalParam parses p as UUID or "none".
func (r *Reference) UnmarshalParam(p string) error {
	if strings.EqualFold(p, None) {
		*r = Reference{None: true}
		return nil
	}

	r.None = false
	return r.UUID.UnmarshalParam(p)
}
