package domain

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/mohae/deepcopy"
)

// IsEmpty reports whether data carries nothing worth presenting:
// nil, or an empty map, slice or string.
func IsEmpty(data any) bool {
	if data == nil {
		return true
	}
	v := reflect.ValueOf(data)
	switch v.Kind() {
	case reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Clone returns a deep copy of data. Function values are shared, everything else is copied.
func Clone(data any) any {
	if data == nil {
		return nil
	}
	return deepcopy.Copy(data)
}

// IDFromData extracts a node id from row data carrying one of the given keys.
// It returns "" when data is not a map or carries none of the keys.
func IDFromData(data any, keys ...string) string {
	m, ok := data.(map[string]any)
	if !ok {
		return ""
	}
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return fmt.Sprint(v)
		}
	}
	return ""
}

// Merge flattens a list of row data into a single map.
// Later entries override earlier ones; non-map entries are ignored.
func Merge(data []any) map[string]any {
	merged := make(map[string]any)
	for _, d := range data {
		m, ok := d.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged
}

// Sanitize returns a copy of data with every value that cannot be encoded as JSON removed.
// Functions, channels, complex numbers and unsafe pointers are dropped silently,
// as are structs that fail to marshal. The second result is false when data itself
// must be dropped.
func Sanitize(data any) (any, bool) {
	if data == nil {
		return nil, true
	}
	return sanitizeValue(reflect.ValueOf(data))
}

func sanitizeValue(v reflect.Value) (any, bool) {
	switch v.Kind() {
	case reflect.Invalid:
		return nil, true
	case reflect.Func, reflect.Chan, reflect.UnsafePointer, reflect.Complex64, reflect.Complex128:
		return nil, false
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return nil, true
		}
		return sanitizeValue(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return nil, true
		}
		kind := v.Type().Key().Kind()
		if kind != reflect.String && (kind < reflect.Int || kind > reflect.Uint64) {
			return nil, false
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			val, ok := sanitizeValue(iter.Value())
			if !ok {
				continue
			}
			out[fmt.Sprint(iter.Key().Interface())] = val
		}
		return out, true
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return nil, true
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface(), true
		}
		out := make([]any, 0, v.Len())
		for i := 0; i < v.Len(); i++ {
			val, ok := sanitizeValue(v.Index(i))
			if !ok {
				continue
			}
			out = append(out, val)
		}
		return out, true
	case reflect.Struct:
		if !v.CanInterface() {
			return nil, false
		}
		if _, err := json.Marshal(v.Interface()); err != nil {
			return nil, false
		}
		return v.Interface(), true
	}
	if !v.CanInterface() {
		return nil, false
	}
	return v.Interface(), true
}
