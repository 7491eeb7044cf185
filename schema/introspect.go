package schema

import (
	"fmt"
	"reflect"
	"sync"
)

var entityCache sync.Map // map[reflect.Type]*EntityMeta

// Introspect returns the cached metadata for a struct type, building it on
// first use. Pointer types are normalized to their element type.
func Introspect(t reflect.Type) (*EntityMeta, error) {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("invalid model type: %s", t.Kind())
	}
	if meta, ok := entityCache.Load(t); ok {
		return meta.(*EntityMeta), nil
	}
	meta, err := buildMeta(t)
	if err != nil {
		return nil, err
	}
	entityCache.Store(t, meta)
	return meta, nil
}

// ClearCache drops all cached metadata. Intended for tests.
func ClearCache() {
	entityCache.Range(func(key, _ any) bool {
		entityCache.Delete(key)
		return true
	})
}

func buildMeta(t reflect.Type) (*EntityMeta, error) {
	numFields := t.NumField()
	meta := &EntityMeta{
		Type:      t,
		Name:      t.Name(),
		Fields:    make([]*FieldMeta, 0, numFields),
		FieldMap:  make(map[string]*FieldMeta, numFields),
		ColumnMap: make(map[string]*FieldMeta, numFields),
	}

	if tn, ok := reflect.New(t).Interface().(TableNamer); ok {
		meta.TableName = tn.TableName()
	} else {
		meta.TableName = DefaultTableName(t.Name())
	}

	for i := 0; i < numFields; i++ {
		f := t.Field(i)
		if !f.IsExported() || f.Anonymous {
			continue
		}
		tag := parseTag(f.Name, f.Tag)
		if tag.Skip {
			continue
		}
		fm := &FieldMeta{
			Name:      f.Name,
			Column:    tag.Column,
			Type:      f.Type,
			Index:     f.Index,
			Primary:   tag.Primary,
			Generator: tag.Generator,
		}
		meta.Fields = append(meta.Fields, fm)
		meta.FieldMap[f.Name] = fm
		meta.ColumnMap[fm.Column] = fm
	}

	return meta, nil
}
