package schema

import (
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Type validates a single value.
type Type interface {
	Name() string
	Validate(value any) error
}

type kindType struct {
	name  string
	check func(any) bool
}

func (t kindType) Name() string { return t.name }

func (t kindType) Validate(value any) error {
	if !t.check(value) {
		return fmt.Errorf("expected %s, got %T", t.name, value)
	}
	return nil
}

// String accepts strings.
func String() Type {
	return kindType{name: "string", check: func(v any) bool {
		_, ok := v.(string)
		return ok
	}}
}

// Int accepts integers, and floats holding a whole number (as decoded JSON does).
func Int() Type {
	return kindType{name: "int", check: func(v any) bool {
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return true
		case reflect.Float32, reflect.Float64:
			f := rv.Float()
			return f == math.Trunc(f) && !math.IsInf(f, 0)
		}
		return false
	}}
}

// Float accepts any number.
func Float() Type {
	return kindType{name: "float", check: func(v any) bool {
		switch reflect.ValueOf(v).Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
			reflect.Float32, reflect.Float64:
			return true
		}
		return false
	}}
}

// Bool accepts booleans.
func Bool() Type {
	return kindType{name: "bool", check: func(v any) bool {
		_, ok := v.(bool)
		return ok
	}}
}

// Any accepts every non-nil value.
func Any() Type {
	return kindType{name: "any", check: func(v any) bool { return v != nil }}
}

type sliceType struct{ elem Type }

// Slice accepts slices whose elements all satisfy elem.
func Slice(elem Type) Type { return sliceType{elem: elem} }

func (t sliceType) Name() string { return "[" + t.elem.Name() + "]" }

func (t sliceType) Validate(value any) error {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("expected %s, got %T", t.Name(), value)
	}
	for i := 0; i < rv.Len(); i++ {
		if err := t.elem.Validate(rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

type optionalType struct{ Type }

// Optional lets the field be absent or null.
func Optional(t Type) Type { return optionalType{t} }

func (t optionalType) Name() string { return t.Type.Name() + "?" }

// ParseType reads the short notation used in design files.
func ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	if base, ok := strings.CutSuffix(s, "?"); ok {
		t, err := ParseType(base)
		if err != nil {
			return nil, err
		}
		return Optional(t), nil
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		elem, err := ParseType(s[1 : len(s)-1])
		if err != nil {
			return nil, err
		}
		return Slice(elem), nil
	}
	switch s {
	case "string":
		return String(), nil
	case "int":
		return Int(), nil
	case "float":
		return Float(), nil
	case "bool":
		return Bool(), nil
	case "any":
		return Any(), nil
	}
	return nil, fmt.Errorf("unknown type %q", s)
}
