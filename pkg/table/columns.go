package table

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/aretw0/stepper/pkg/domain"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Columns is an ordered set of named value lists used by Zip and Outer.
// Slice values are expanded; any other value counts as a single-element column.
type Columns struct {
	m *orderedmap.OrderedMap[string, any]
}

// NewColumns returns an empty column set.
func NewColumns() *Columns {
	return &Columns{m: orderedmap.New[string, any]()}
}

// Set adds or replaces a column. New keys are placed last.
func (c *Columns) Set(key string, values any) *Columns {
	c.init()
	c.m.Set(key, values)
	return c
}

// Get returns the raw value stored for key.
func (c *Columns) Get(key string) (any, bool) {
	if c == nil || c.m == nil {
		return nil, false
	}
	return c.m.Get(key)
}

// Len returns the number of columns.
func (c *Columns) Len() int {
	if c == nil || c.m == nil {
		return 0
	}
	return c.m.Len()
}

// Keys returns the column names in declaration order.
func (c *Columns) Keys() []string {
	if c.Len() == 0 {
		return nil
	}
	keys := make([]string, 0, c.m.Len())
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

func (c *Columns) init() {
	if c.m == nil {
		c.m = orderedmap.New[string, any]()
	}
}

type column struct {
	key    string
	values []any
}

func (c *Columns) expand() []column {
	cols := make([]column, 0, c.Len())
	if c.Len() == 0 {
		return cols
	}
	for p := c.m.Oldest(); p != nil; p = p.Next() {
		values, ok := asSlice(p.Value)
		if !ok {
			values = []any{p.Value}
		}
		cols = append(cols, column{key: p.Key, values: values})
	}
	return cols
}

// MarshalJSON keeps declaration order.
func (c *Columns) MarshalJSON() ([]byte, error) {
	c.init()
	return json.Marshal(c.m)
}

// UnmarshalJSON keeps the order keys appear in the document.
func (c *Columns) UnmarshalJSON(data []byte) error {
	c.init()
	if err := json.Unmarshal(data, c.m); err != nil {
		return fmt.Errorf("%w: columns: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

// UnmarshalYAML keeps the order keys appear in the document.
func (c *Columns) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: columns must be a mapping (line %d)", domain.ErrInvalidArgument, value.Line)
	}
	c.init()
	return value.Decode(c.m)
}

// asSlice expands slices and arrays (byte slices excepted) into []any.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	if s, ok := v.([]any); ok {
		return s, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return nil, false
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, true
	}
	return nil, false
}
