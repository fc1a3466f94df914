package table

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Hash returns a deterministic fingerprint of the subtree: positions, data and
// nesting. Two tables built the same way hash the same; identity tokens are ignored.
func (t *Table) Hash() string {
	var b strings.Builder
	t.signature(&b, t.Path())
	return fmt.Sprintf("%016x", xxhash.Sum64String(b.String()))
}

func (t *Table) signature(b *strings.Builder, path []int) {
	b.WriteString("path:")
	b.WriteString(joinPath(path))
	b.WriteString(";data:")
	b.WriteString(canonical(t.data))
	b.WriteString(";items:[")
	for i, it := range t.items {
		if i > 0 {
			b.WriteByte(',')
		}
		it.signature(b, append(path[:len(path):len(path)], i))
	}
	b.WriteByte(']')
}

// canonical renders v with sorted map keys so that equal content yields equal text
// regardless of map iteration order or numeric type.
func canonical(v any) string {
	var b strings.Builder
	writeCanonical(&b, reflect.ValueOf(v))
	return b.String()
}

func writeCanonical(b *strings.Builder, v reflect.Value) {
	if !v.IsValid() {
		b.WriteString("null")
		return
	}
	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			b.WriteString("null")
			return
		}
		writeCanonical(b, v.Elem())
	case reflect.Map:
		if v.IsNil() {
			b.WriteString("null")
			return
		}
		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			ks := fmt.Sprint(k.Interface())
			keys = append(keys, ks)
			byKey[ks] = v.MapIndex(k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte(':')
			writeCanonical(b, byKey[k])
		}
		b.WriteByte('}')
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.WriteString("null")
			return
		}
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			writeCanonical(b, v.Index(i))
		}
		b.WriteByte(']')
	case reflect.Struct:
		raw, err := json.Marshal(v.Interface())
		if err != nil {
			b.WriteString(v.Type().String())
			return
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			b.Write(raw)
			return
		}
		writeCanonical(b, reflect.ValueOf(generic))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(v.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(v.Float(), 'g', -1, 64))
	case reflect.String:
		b.WriteString(strconv.Quote(v.String()))
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		b.WriteString(v.Kind().String())
	default:
		fmt.Fprint(b, v.Interface())
	}
}
