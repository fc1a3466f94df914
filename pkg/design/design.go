package design

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/schema"
	"gopkg.in/yaml.v3"
)

// Design is a parsed design document.
type Design struct {
	Name    string      `yaml:"name"`
	Seed    string      `yaml:"seed"`
	MaxRows int         `yaml:"max_rows"`
	Tables  []TableSpec `yaml:"tables"`
}

// TableSpec describes one table to build and commit.
type TableSpec struct {
	Name string `yaml:"name"`
	// Schema, when set, is checked against every leaf row after the steps ran.
	Schema schema.Schema `yaml:"schema"`
	Steps  []Step        `yaml:"steps"`
}

// Step is one operation of a pipeline.
type Step struct {
	Op   string
	Args yaml.Node
	// Each holds the nested pipeline of an "each" step.
	Each []Step
	Line int
}

// UnmarshalYAML accepts a mapping with exactly one key.
func (s *Step) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("%w: line %d: a step is a mapping with a single operation", domain.ErrInvalidArgument, node.Line)
	}
	s.Op = node.Content[0].Value
	s.Line = node.Line
	s.Args = *node.Content[1]
	if s.Op == OpEach {
		if err := s.Args.Decode(&s.Each); err != nil {
			return err
		}
	}
	if _, ok := operations[s.Op]; !ok && s.Op != OpEach {
		return fmt.Errorf("%w: line %d: unknown step %q", domain.ErrInvalidArgument, node.Line, s.Op)
	}
	return nil
}

// Parse decodes a design document. Unknown top-level fields are rejected.
func Parse(r io.Reader) (*Design, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var d Design
	if err := dec.Decode(&d); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty design", domain.ErrInvalidArgument)
		}
		return nil, fmt.Errorf("failed to parse design: %w", err)
	}
	return &d, nil
}

// ParseBytes is Parse over a byte slice.
func ParseBytes(data []byte) (*Design, error) {
	return Parse(bytes.NewReader(data))
}

// Load reads and parses a design file.
func Load(path string) (*Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open design: %w", err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = path
	}
	return d, nil
}
