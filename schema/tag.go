package schema

import (
	"reflect"
	"strings"
)

// ParsedTag is the db-tag configuration for one field.
//
//	db:"-"                        skip the field
//	db:"column_name"              explicit column
//	db:"id,primary,gen=uuid"      key column with generated values
type ParsedTag struct {
	Column    string
	Skip      bool
	Primary   bool
	Generator string
}

// parseTag parses a field's db tag. An absent tag yields the derived
// snake_case column name.
func parseTag(fieldName string, tag reflect.StructTag) *ParsedTag {
	parsed := &ParsedTag{}
	raw, ok := tag.Lookup("db")
	if !ok || raw == "" {
		parsed.Column = toSnakeCase(fieldName)
		return parsed
	}
	if raw == "-" {
		parsed.Skip = true
		return parsed
	}

	parts := strings.Split(raw, ",")
	parsed.Column = strings.TrimSpace(parts[0])
	if parsed.Column == "" {
		parsed.Column = toSnakeCase(fieldName)
	}
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		switch {
		case part == "primary":
			parsed.Primary = true
		case strings.HasPrefix(part, "gen="):
			parsed.Generator = strings.TrimPrefix(part, "gen=")
		}
	}
	return parsed
}
