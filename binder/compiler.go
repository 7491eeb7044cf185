package binder

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/forgeline/dynsql/eval"
)

// Compile walks the fully-expanded statement text, replaces every #{...}
// placeholder with a positional ? marker and returns the parameterized text
// plus the ordered mapping list. argType is the statement's declared argument
// type (may be nil); extra is the bindings snapshot the tree evaluation left
// behind, consulted first during type inference.
func Compile(text string, argType reflect.Type, extra map[string]any) (string, []*ParameterMapping, error) {
	var out strings.Builder
	out.Grow(len(text))
	var mappings []*ParameterMapping

	for {
		start := strings.Index(text, "#{")
		if start < 0 {
			out.WriteString(text)
			break
		}
		end := strings.Index(text[start:], "}")
		if end < 0 {
			out.WriteString(text)
			break
		}
		end += start

		mapping, err := parseMapping(text[start+2:end], argType, extra)
		if err != nil {
			return "", nil, err
		}
		mappings = append(mappings, mapping)

		out.WriteString(text[:start])
		out.WriteByte('?')
		text = text[end+1:]
	}

	return out.String(), mappings, nil
}

// parseMapping parses one placeholder body: a property path followed by
// comma-separated attr=value pairs.
func parseMapping(content string, argType reflect.Type, extra map[string]any) (*ParameterMapping, error) {
	m := &ParameterMapping{}
	for i, part := range strings.Split(content, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, hasValue := strings.Cut(part, "=")
		if !hasValue {
			if i == 0 {
				m.Property = part
				continue
			}
			return nil, builderErrorf(content, "malformed attribute %q", part)
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if err := applyAttribute(m, content, name, value); err != nil {
			return nil, err
		}
	}

	if m.ValueType == nil {
		m.ValueType = inferType(m, argType, extra)
	}
	return m, nil
}

func applyAttribute(m *ParameterMapping, content, name, value string) error {
	switch name {
	case "valueType":
		t, ok := namedType(value)
		if !ok {
			return builderErrorf(content, "unknown value type %q", value)
		}
		m.ValueType = t
	case "dbType":
		m.DBType = value
	case "dbTypeName":
		m.DBTypeName = value
	case "mode":
		switch strings.ToUpper(value) {
		case "IN":
			m.Mode = ModeIn
		case "OUT":
			m.Mode = ModeOut
		case "INOUT":
			m.Mode = ModeInOut
		default:
			return builderErrorf(content, "unknown mode %q", value)
		}
	case "scale":
		scale, err := strconv.Atoi(value)
		if err != nil {
			return builderErrorf(content, "invalid scale %q", value)
		}
		m.Scale = &scale
	case "resultMap":
		m.ResultMap = value
	case "handler":
		m.Handler = value
	case "expression":
		return builderErrorf(content, "expression-based parameters are not supported")
	default:
		return builderErrorf(content, "unknown attribute %q", name)
	}
	return nil
}

// inferType resolves the declared type for a mapping that did not state one,
// in strict priority order: the extra-bindings snapshot, a whole-type handler
// for the argument, the cursor sentinel, the generic type for pathless or
// map-typed arguments, and finally a property lookup on the argument type.
func inferType(m *ParameterMapping, argType reflect.Type, extra map[string]any) reflect.Type {
	if m.Property != "" && extra != nil {
		if t, ok := eval.AccessorFor(extra).PropertyType(m.Property); ok {
			return t
		}
	}
	if argType != nil && HasTypeHandler(argType) {
		return argType
	}
	if strings.EqualFold(m.DBTypeName, cursorTypeName) {
		return CursorType
	}
	if m.Property == "" || argType == nil || isMapType(argType) {
		return AnyType
	}
	if t, ok := eval.TypeAccessor(argType).PropertyType(m.Property); ok {
		return t
	}
	return AnyType
}

func isMapType(t reflect.Type) bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind() == reflect.Map
}

// namedType resolves the value-type names a template may declare. The set is
// closed: templates name abstract value shapes, not arbitrary Go types.
func namedType(name string) (reflect.Type, bool) {
	switch name {
	case "string":
		return reflect.TypeOf(""), true
	case "int":
		return reflect.TypeOf(int(0)), true
	case "int32":
		return reflect.TypeOf(int32(0)), true
	case "int64":
		return reflect.TypeOf(int64(0)), true
	case "float32":
		return reflect.TypeOf(float32(0)), true
	case "float64":
		return reflect.TypeOf(float64(0)), true
	case "bool":
		return reflect.TypeOf(false), true
	case "time":
		return reflect.TypeOf(time.Time{}), true
	case "bytes":
		return reflect.TypeOf([]byte(nil)), true
	case "any":
		return AnyType, true
	case "cursor":
		return CursorType, true
	}
	return nil, false
}
