// Package schema provides struct metadata for result mapping and key
// generation: introspection with a process-wide cache, db-tag parsing, naming
// defaults, and reflect-based row scanning.
package schema

import "reflect"

// TableNamer lets a model type override the derived table name.
type TableNamer interface {
	TableName() string
}

// EntityMeta is the cached metadata for one struct type.
type EntityMeta struct {
	Type      reflect.Type
	Name      string
	TableName string
	Fields    []*FieldMeta
	FieldMap  map[string]*FieldMeta // Go field name -> FieldMeta
	ColumnMap map[string]*FieldMeta // database column name -> FieldMeta
}

// FieldMeta is the metadata for one exported struct field.
type FieldMeta struct {
	Name      string
	Column    string
	Type      reflect.Type
	Index     []int
	Primary   bool
	Generator string // key generator name, empty when none
}

// KeyField returns the field carrying a key-generator directive, if any.
func (m *EntityMeta) KeyField() *FieldMeta {
	for _, f := range m.Fields {
		if f.Generator != "" {
			return f
		}
	}
	return nil
}
