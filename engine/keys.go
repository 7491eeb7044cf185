package engine

import (
	"fmt"
	"reflect"

	"github.com/forgeline/dynsql/mapper"
	"github.com/forgeline/dynsql/schema"
)

// applyKeys fills generated keys before an insert: first the gen= tag
// directives on the struct, then the statement's own keyGenerator/keyProperty
// pair. Values the caller already set are left alone.
func (e *Engine) applyKeys(st *mapper.Statement, parameter any) error {
	if err := schema.ApplyGeneratedKeys(parameter); err != nil {
		return fmt.Errorf("statement %s: %w", st.FullID(), err)
	}
	if st.KeyGenerator == "" {
		return nil
	}

	property := st.KeyProperty
	if property == "" {
		property = "id"
	}
	key, err := schema.GenerateKey(st.KeyGenerator)
	if err != nil {
		return fmt.Errorf("statement %s: %w", st.FullID(), err)
	}
	if err := setProperty(parameter, property, key); err != nil {
		return fmt.Errorf("statement %s: key property %q: %w", st.FullID(), property, err)
	}
	return nil
}

// setProperty writes a generated key into a map entry or an exported struct
// field, skipping targets that already hold a non-zero value.
func setProperty(parameter any, property string, value any) error {
	if parameter == nil {
		return fmt.Errorf("nil argument")
	}
	rv := reflect.ValueOf(parameter)

	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		k := reflect.ValueOf(property)
		if existing := rv.MapIndex(k); existing.IsValid() && !existing.IsZero() {
			return nil
		}
		rv.SetMapIndex(k, reflect.ValueOf(value))
		return nil
	}

	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("argument must be a map or pointer to struct, got %T", parameter)
	}
	field := rv.Elem().FieldByName(capitalize(property))
	if !field.IsValid() {
		field = rv.Elem().FieldByName(property)
	}
	if !field.IsValid() || !field.CanSet() {
		return fmt.Errorf("no settable field for property")
	}
	if !field.IsZero() {
		return nil
	}
	vv := reflect.ValueOf(value)
	if !vv.Type().AssignableTo(field.Type()) {
		if !vv.Type().ConvertibleTo(field.Type()) {
			return fmt.Errorf("generator produced %T, want %s", value, field.Type())
		}
		vv = vv.Convert(field.Type())
	}
	field.Set(vv)
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if s[0] >= 'a' && s[0] <= 'z' {
		return string(s[0]-'a'+'A') + s[1:]
	}
	return s
}
