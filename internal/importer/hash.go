package importer

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Hash calculates the SHA256 hash of the fields joined with commas and
// returns its hex representation.
func Hash(fields ...string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(strings.Join(fields, ","))))
}
