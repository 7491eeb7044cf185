package eval

import (
	"reflect"
	"strings"
	"unicode"
	"unsafe"
)

// Accessor reads named properties off an argument representation. It keeps the
// evaluator and the placeholder compiler free of host-type specifics: one
// implementation per supported representation (struct via reflection, map via
// direct lookup).
type Accessor interface {
	// HasProperty reports whether the property path resolves.
	HasProperty(path string) bool
	// ReadProperty returns the value at the property path.
	ReadProperty(path string) (any, bool)
	// PropertyType returns the static type at the property path.
	PropertyType(path string) (reflect.Type, bool)
}

// AccessorFor builds an accessor over a concrete argument value. Map-like
// arguments get direct key lookup, structs (or pointers to structs) get
// reflective field access, everything else resolves no properties.
func AccessorFor(v any) Accessor {
	if v == nil {
		return emptyAccessor{}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return mapAccessor{value: rv}
	}
	base := rv
	for base.Kind() == reflect.Ptr {
		if base.IsNil() {
			return emptyAccessor{}
		}
		base = base.Elem()
	}
	if base.Kind() == reflect.Struct {
		if !base.CanAddr() {
			// Re-home the value so unexported fields stay promotable.
			boxed := reflect.New(base.Type())
			boxed.Elem().Set(base)
			base = boxed.Elem()
		}
		return structAccessor{value: base}
	}
	return emptyAccessor{}
}

// TypeAccessor builds an accessor over a type alone, for use when only static
// information is available (declared-type inference has no value to read).
func TypeAccessor(t reflect.Type) Accessor {
	if t == nil {
		return emptyAccessor{}
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct:
		return structAccessor{typ: t}
	case reflect.Map:
		return emptyAccessor{}
	}
	return emptyAccessor{}
}

// IsMapLike reports whether the argument is a string-keyed map, in which case
// reads never fall back to reflective field access.
func IsMapLike(v any) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

type emptyAccessor struct{}

func (emptyAccessor) HasProperty(string) bool                 { return false }
func (emptyAccessor) ReadProperty(string) (any, bool)         { return nil, false }
func (emptyAccessor) PropertyType(string) (reflect.Type, bool) { return nil, false }

type mapAccessor struct {
	value reflect.Value
}

func (m mapAccessor) HasProperty(path string) bool {
	_, ok := m.ReadProperty(path)
	return ok
}

func (m mapAccessor) ReadProperty(path string) (any, bool) {
	head, rest, nested := strings.Cut(path, ".")
	entry := m.value.MapIndex(reflect.ValueOf(head))
	if !entry.IsValid() {
		return nil, false
	}
	if !nested {
		return entry.Interface(), true
	}
	return AccessorFor(entry.Interface()).ReadProperty(rest)
}

func (m mapAccessor) PropertyType(path string) (reflect.Type, bool) {
	v, ok := m.ReadProperty(path)
	if !ok || v == nil {
		return nil, false
	}
	return reflect.TypeOf(v), true
}

// structAccessor resolves exported fields by exact, capitalized, or
// case-insensitive name. When it holds a value it can also promote unexported
// fields for the duration of a single read; promotion is skipped entirely when
// the value is not addressable.
type structAccessor struct {
	value reflect.Value // zero when only a type is known
	typ   reflect.Type
}

func (s structAccessor) structType() reflect.Type {
	if s.typ != nil {
		return s.typ
	}
	return s.value.Type()
}

func (s structAccessor) HasProperty(path string) bool {
	_, ok := s.fieldFor(path)
	return ok
}

func (s structAccessor) PropertyType(path string) (reflect.Type, bool) {
	head, rest, nested := strings.Cut(path, ".")
	field, ok := s.fieldFor(head)
	if !ok {
		return nil, false
	}
	if !nested {
		return field.Type, true
	}
	return TypeAccessor(field.Type).PropertyType(rest)
}

func (s structAccessor) ReadProperty(path string) (any, bool) {
	if !s.value.IsValid() {
		return nil, false
	}
	head, rest, nested := strings.Cut(path, ".")
	field, ok := s.fieldFor(head)
	if !ok {
		return nil, false
	}
	fv := s.value.FieldByIndex(field.Index)
	var out any
	if field.PkgPath == "" {
		out = fv.Interface()
	} else {
		out, ok = readUnexported(fv)
		if !ok {
			return nil, false
		}
	}
	if !nested {
		return out, true
	}
	return AccessorFor(out).ReadProperty(rest)
}

// fieldFor matches a property name against the struct's fields: exact name
// first, then the exported spelling (firstName -> FirstName), then a
// case-insensitive scan.
func (s structAccessor) fieldFor(name string) (reflect.StructField, bool) {
	t := s.structType()
	if f, ok := t.FieldByName(name); ok {
		return f, true
	}
	if f, ok := t.FieldByName(capitalize(name)); ok {
		return f, true
	}
	lower := strings.ToLower(name)
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if strings.ToLower(f.Name) == lower {
			return f, true
		}
	}
	return reflect.StructField{}, false
}

// readUnexported views an unexported field through an addressable alias for
// one read. The runtime forbids Interface() on unexported fields, so the read
// goes through a NewAt view of the same memory; if the field is not
// addressable the promotion is skipped and the property reports as absent.
func readUnexported(fv reflect.Value) (any, bool) {
	if !fv.CanAddr() {
		return nil, false
	}
	alias := reflect.NewAt(fv.Type(), unsafe.Pointer(fv.UnsafeAddr())).Elem()
	return alias.Interface(), true
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
