package node

import (
	"reflect"
	"strings"
)

// mapEntries copies the top level of a string-keyed map argument.
func mapEntries(parameter any) map[string]any {
	rv := reflect.ValueOf(parameter)
	fields := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		fields[iter.Key().String()] = iter.Value().Interface()
	}
	return fields
}

// structFields copies the exported fields of a struct argument, keyed by both
// the Go field name and its lower-camel property spelling.
func structFields(parameter any) map[string]any {
	rv := reflect.ValueOf(parameter)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	t := rv.Type()
	fields := make(map[string]any, t.NumField()*2)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		v := rv.Field(i).Interface()
		fields[f.Name] = v
		fields[decapitalize(f.Name)] = v
	}
	return fields
}

func decapitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// isPrimitive reports whether the argument is a plain scalar, the case where
// the raw value is additionally exposed under the "value" alias during
// substitution.
func isPrimitive(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array, reflect.Ptr, reflect.Interface:
		return false
	}
	return true
}
