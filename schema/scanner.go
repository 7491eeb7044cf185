package schema

import (
	"database/sql"
	"fmt"
	"reflect"
	"time"
)

// RowScanner is the minimal surface the scanner needs from a result set.
type RowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Columns() ([]string, error)
}

// ScanAll reads every row into dest, which must be a pointer to a slice of
// structs. Columns with no mapped field are ignored.
func ScanAll(rows RowScanner, dest any) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("ScanAll expects pointer to slice, got %T", dest)
	}
	sliceVal := destVal.Elem()
	elemType := sliceVal.Type().Elem()

	meta, err := Introspect(elemType)
	if err != nil {
		return err
	}
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	out := reflect.MakeSlice(sliceVal.Type(), 0, 16)
	for rows.Next() {
		elem := reflect.New(elemType).Elem()
		if err := scanRow(rows, meta, elem, columns); err != nil {
			return err
		}
		out = reflect.Append(out, elem)
	}
	sliceVal.Set(out)
	return nil
}

// ScanOne reads the first row into dest, a pointer to struct. It returns
// sql.ErrNoRows when the result set is empty.
func ScanOne(rows RowScanner, dest any) error {
	destVal := reflect.ValueOf(dest)
	if destVal.Kind() != reflect.Ptr || destVal.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("ScanOne expects pointer to struct, got %T", dest)
	}
	meta, err := Introspect(destVal.Elem().Type())
	if err != nil {
		return err
	}
	columns, err := rows.Columns()
	if err != nil {
		return err
	}
	if !rows.Next() {
		return sql.ErrNoRows
	}
	return scanRow(rows, meta, destVal.Elem(), columns)
}

func scanRow(rows RowScanner, meta *EntityMeta, elem reflect.Value, columns []string) error {
	holders := make([]any, len(columns))
	for i := range holders {
		var v any
		holders[i] = &v
	}
	if err := rows.Scan(holders...); err != nil {
		return err
	}
	for i, col := range columns {
		fm := meta.ColumnMap[col]
		if fm == nil {
			continue
		}
		value := *(holders[i].(*any))
		if err := setField(elem.FieldByIndex(fm.Index), value); err != nil {
			return fmt.Errorf("column %s: %w", col, err)
		}
	}
	return nil
}

// setField assigns a driver value to a struct field, converting the handful
// of shapes drivers actually produce (int64, float64, bool, string, []byte,
// time.Time, nil).
func setField(field reflect.Value, value any) error {
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	t := field.Type()

	if v.Type().AssignableTo(t) {
		field.Set(v)
		return nil
	}
	if v.Type().ConvertibleTo(t) {
		// []byte -> string is covered here as well.
		field.Set(v.Convert(t))
		return nil
	}
	if b, ok := value.([]byte); ok {
		switch t.Kind() {
		case reflect.String:
			field.SetString(string(b))
			return nil
		}
	}
	if s, ok := value.(string); ok && t == reflect.TypeOf(time.Time{}) {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("cannot parse %q as time: %w", s, err)
		}
		field.Set(reflect.ValueOf(parsed))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, t)
}
