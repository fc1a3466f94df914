package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/stepper/pkg/domain"
	"gopkg.in/yaml.v3"
)

// Schema maps field names to their expected types.
type Schema map[string]Type

// FieldError is a single validation failure.
type FieldError struct {
	Row    string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Row == "" {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("row %s: field %q: %s", e.Row, e.Field, e.Reason)
}

func (e *FieldError) Unwrap() error { return domain.ErrInvalidArgument }

// Parse builds a schema from field -> type notation.
func Parse(fields map[string]string) (Schema, error) {
	s := make(Schema, len(fields))
	for name, notation := range fields {
		t, err := ParseType(notation)
		if err != nil {
			return nil, fmt.Errorf("%w: field %q: %w", domain.ErrInvalidArgument, name, err)
		}
		s[name] = t
	}
	return s, nil
}

// Fields returns the field names in lexical order.
func (s Schema) Fields() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Validate checks one row. Fields not in the schema are allowed.
// All failures are reported, joined.
func (s Schema) Validate(data map[string]any) error {
	return s.validate("", data)
}

func (s Schema) validate(row string, data map[string]any) error {
	var errs []error
	for _, name := range s.Fields() {
		t := s[name]
		value, ok := data[name]
		if _, optional := t.(optionalType); optional && value == nil {
			continue
		}
		if !ok {
			errs = append(errs, &FieldError{Row: row, Field: name, Reason: "required"})
			continue
		}
		if err := t.Validate(value); err != nil {
			errs = append(errs, &FieldError{Row: row, Field: name, Reason: err.Error()})
		}
	}
	return errors.Join(errs...)
}

// ValidateRows checks every row, labelling failures with the row label.
// Rows that are not maps fail unless the schema is empty.
func (s Schema) ValidateRows(rows []any, label func(i int) string) error {
	if len(s) == 0 {
		return nil
	}
	var errs []error
	for i, row := range rows {
		m, ok := row.(map[string]any)
		if !ok {
			errs = append(errs, fmt.Errorf("%w: row %s: expected an object, got %T",
				domain.ErrInvalidArgument, label(i), row))
			continue
		}
		if err := s.validate(label(i), m); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// MarshalJSON writes the short notation.
func (s Schema) MarshalJSON() ([]byte, error) {
	raw := make(map[string]string, len(s))
	for name, t := range s {
		raw[name] = t.Name()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON reads the short notation.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: schema: %w", domain.ErrInvalidArgument, err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML reads the short notation.
func (s *Schema) UnmarshalYAML(node *yaml.Node) error {
	var raw map[string]string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("%w: schema (line %d): %w", domain.ErrInvalidArgument, node.Line, err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
