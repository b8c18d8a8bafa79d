// Package ectotype provides a shared mapping from PostgreSQL data types to
// Ecto type expressions. This ensures consistent type mapping across schema
// generation.
package ectotype

import "strings"

// typeMap is the fixed raw type table. It is read-only after init; lookups
// never mutate it, so concurrent callers are safe.
var typeMap = map[string]string{
	"text":        ":string",
	"uuid":        "Ecto.UUID",
	"bool":        ":boolean",
	"json":        ":map",
	"jsonb":       ":map",
	"timestamptz": ":utc_datetime",
	"int4":        ":integer",
}

// vectorSuffix marks pgvector-backed column types (vector, halfvec is
// reported as vector by information_schema), which have no Ecto equivalent.
const vectorSuffix = "vector"

// Map converts a raw PostgreSQL type name (udt_name) to its Ecto type
// expression. The second return value reports whether the type was found in
// the fixed table; a miss is not an error, callers render the raw name as
// an atom unchanged. Size specifiers like (255) are stripped before matching.
func Map(rawType string) (string, bool) {
	normalized := normalize(rawType)
	ectoType, ok := typeMap[normalized]
	return ectoType, ok
}

// IsVector reports whether a raw type is vector-backed and therefore
// unsupported in generated schemas.
func IsVector(rawType string) bool {
	return strings.HasSuffix(normalize(rawType), vectorSuffix)
}

func normalize(rawType string) string {
	if idx := strings.Index(rawType, "("); idx != -1 {
		rawType = rawType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(rawType))
}
