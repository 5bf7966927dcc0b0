// Package record caches lazy references to database rows. A row is named by
// a three-part identifier, "namespace.kind.pk", and loaded through a Loader
// registered for its namespace and kind. Resolved rows are cached, non-pk
// lookups are cached as an extra level of indirection (lookup -> pk -> row),
// and saving or deleting a row invalidates its cache entry.
package record

import (
	"fmt"
	"regexp"
	"strings"
)

var identifierRegex = regexp.MustCompile(`^\w+\.\w+\.\w+$`)

// Identifier names a single row: "namespace.kind.pk", e.g. "auth.user.123".
type Identifier string

// NewIdentifier builds an identifier from its parts. Spaces in the pk are
// stripped so identifiers stay single tokens.
func NewIdentifier(namespace, kind, pk string) Identifier {
	return Identifier(fmt.Sprintf("%s.%s.%s", namespace, kind, strings.ReplaceAll(pk, " ", "")))
}

// ParseIdentifier validates and returns the given identifier string.
func ParseIdentifier(s string) (Identifier, error) {
	if !identifierRegex.MatchString(s) {
		return "", fmt.Errorf("record: provided string %q is not a valid identifier", s)
	}
	return Identifier(s), nil
}

// Split returns the three parts of the identifier. The pk is everything
// after the second dot.
func (id Identifier) Split() (namespace, kind, pk string) {
	parts := strings.SplitN(string(id), ".", 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	return parts[0], parts[1], parts[2]
}

// PK returns the pk part of the identifier.
func (id Identifier) PK() string {
	_, _, pk := id.Split()
	return pk
}

// Model returns the "namespace.kind" prefix, the name loaders are
// registered under.
func (id Identifier) Model() string {
	namespace, kind, _ := id.Split()
	return namespace + "." + kind
}

// Record is implemented by row types that know their own identity. It lets
// rows be passed directly to Invalidate, RecordSaved and RecordDeleted.
type Record interface {
	RecordIdentifier() Identifier
}
