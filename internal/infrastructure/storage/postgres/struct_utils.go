package postgres

import (
	"reflect"
	"sync"
)

// ExtractDBColumns lists column names from the "db" tags of T, descending
// into embedded structs such as entity.BaseEntity.
//
//	columns := ExtractDBColumns[supply.Supply]()
//	// ["id", "version", "creation_date", "update_date", "number", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	meta := metadataOf(reflect.TypeOf(zero))
	cols := make([]string, len(meta))
	for i, f := range meta {
		cols[i] = f.column
	}
	return cols
}

// column is a tagged field reachable through an index path.
type column struct {
	index  []int
	column string
}

var typeCache sync.Map // map[reflect.Type][]column

func metadataOf(t reflect.Type) []column {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := typeCache.Load(t); ok {
		return cached.([]column)
	}
	var out []column
	if t.Kind() == reflect.Struct {
		out = collect(t, nil)
	}
	typeCache.Store(t, out)
	return out
}

func collect(t reflect.Type, prefix []int) []column {
	var out []column
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		path := append(append([]int(nil), prefix...), i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			out = append(out, collect(field.Type, path)...)
			continue
		}
		tag := field.Tag.Get("db")
		if tag == "" || tag == "-" {
			continue
		}
		out = append(out, column{index: path, column: tag})
	}
	return out
}

// StructToMap converts a struct to a column map using "db" tags.
// Fields without a tag or tagged "-" are skipped.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	meta := metadataOf(rv.Type())
	res := make(map[string]any, len(meta))
	for _, f := range meta {
		res[f.column] = rv.FieldByIndex(f.index).Interface()
	}
	return res
}

// Without returns cols minus the excluded names.
func Without(cols []string, excluded ...string) []string {
	skip := make(map[string]struct{}, len(excluded))
	for _, c := range excluded {
		skip[c] = struct{}{}
	}
	out := make([]string, 0, len(cols))
	for _, c := range cols {
		if _, ok := skip[c]; !ok {
			out = append(out, c)
		}
	}
	return out
}
