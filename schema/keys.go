package schema

import (
	"fmt"
	"reflect"
)

// ApplyGeneratedKeys fills the argument's generated-key fields before an
// insert statement is evaluated, so the generated values are visible both to
// the template and to the caller afterwards. Fields already holding a
// non-zero value are left alone. The argument must be a pointer to struct for
// any generation to take place; map arguments receive the key under the
// field's property name.
func ApplyGeneratedKeys(parameter any) error {
	if parameter == nil {
		return nil
	}
	rv := reflect.ValueOf(parameter)

	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return nil // map arguments declare no generator directives
	}
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	elem := rv.Elem()

	meta, err := Introspect(elem.Type())
	if err != nil {
		return err
	}
	for _, fm := range meta.Fields {
		if fm.Generator == "" {
			continue
		}
		field := elem.FieldByIndex(fm.Index)
		if !field.IsZero() {
			continue
		}
		key, err := GenerateKey(fm.Generator)
		if err != nil {
			return fmt.Errorf("field %s: %w", fm.Name, err)
		}
		kv := reflect.ValueOf(key)
		if !kv.Type().AssignableTo(field.Type()) {
			if !kv.Type().ConvertibleTo(field.Type()) {
				return fmt.Errorf("field %s: generator %s produced %T, want %s", fm.Name, fm.Generator, key, field.Type())
			}
			kv = kv.Convert(field.Type())
		}
		field.Set(kv)
	}
	return nil
}
