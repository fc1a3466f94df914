package design

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aretw0/stepper/internal/logging"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/registry"
	"github.com/aretw0/stepper/pkg/rng"
	"github.com/aretw0/stepper/pkg/sequencer"
	"github.com/aretw0/stepper/pkg/table"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Step names.
const (
	OpAppend     = "append"
	OpRange      = "range"
	OpRepeat     = "repeat"
	OpZip        = "zip"
	OpOuter      = "outer"
	OpInterleave = "interleave"
	OpPartition  = "partition"
	OpShuffle    = "shuffle"
	OpSample     = "sample"
	OpEach       = "each"
)

type operation func(b *Builder, t *table.Table, args *yaml.Node) error

var operations = map[string]operation{
	OpAppend:     opAppend,
	OpRange:      opRange,
	OpRepeat:     opRepeat,
	OpZip:        opZip,
	OpOuter:      opOuter,
	OpInterleave: opInterleave,
	OpPartition:  opPartition,
	OpShuffle:    opShuffle,
	OpSample:     opSample,
}

// Builder turns table specs into tables.
type Builder struct {
	maxRows  int
	source   *rng.Source
	samplers *registry.Registry
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithMaxRows overrides the design's safety limit.
func WithMaxRows(n int) Option {
	return func(b *Builder) {
		b.maxRows = n
	}
}

// WithSource sets the source used by steps without their own seed.
func WithSource(src *rng.Source) Option {
	return func(b *Builder) {
		b.source = src
	}
}

// WithRegistry sets the custom sampling functions available to "sample" steps.
func WithRegistry(r *registry.Registry) Option {
	return func(b *Builder) {
		b.samplers = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// NewBuilder creates a builder for d. The design seed, when set, seeds the
// default source.
func (d *Design) NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		maxRows:  d.MaxRows,
		samplers: registry.Builtin(),
		logger:   logging.NewNop(),
	}
	if d.Seed != "" {
		b.source = rng.New(d.Seed)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the steps of spec on a fresh table and checks its schema.
func (b *Builder) Build(spec TableSpec) (*table.Table, error) {
	opts := []table.Option{table.WithMaxRows(b.maxRows)}
	if b.source != nil {
		opts = append(opts, table.WithSource(b.source))
	}
	t := table.New(opts...)
	if err := b.run(t, spec.Steps); err != nil {
		return nil, fmt.Errorf("table %s: %w", spec.label(), err)
	}
	if err := spec.Schema.ValidateRows(leafRows(t)); err != nil {
		return nil, fmt.Errorf("table %s: %w", spec.label(), err)
	}
	b.logger.Debug("table built", "table", spec.label(), "rows", t.Len(), "hash", t.Hash())
	return t, nil
}

func (s TableSpec) label() string {
	if s.Name == "" {
		return "(unnamed)"
	}
	return s.Name
}

func (b *Builder) run(t *table.Table, steps []Step) error {
	for _, step := range steps {
		var err error
		if step.Op == OpEach {
			_, err = t.ForEach(func(_ int, row *table.Table) error {
				return b.run(row, step.Each)
			})
		} else {
			err = operations[step.Op](b, t, &step.Args)
		}
		if err != nil {
			return fmt.Errorf("line %d: %s: %w", step.Line, step.Op, err)
		}
	}
	return nil
}

// leafRows returns the data of the rows that hold no rows themselves, labelled
// by their path in the table. Group rows made by partition are walked, not checked.
func leafRows(t *table.Table) ([]any, func(int) string) {
	var rows []any
	var labels []string
	var walk func(*table.Table)
	walk = func(n *table.Table) {
		for _, row := range n.Rows() {
			if row.Len() > 0 {
				walk(row)
				continue
			}
			rows = append(rows, row.Data())
			labels = append(labels, row.PathString())
		}
	}
	walk(t)
	return rows, func(i int) string { return labels[i] }
}

// Tables builds every table of the design.
func (b *Builder) Tables(d *Design) ([]*table.Table, error) {
	out := make([]*table.Table, 0, len(d.Tables))
	for _, spec := range d.Tables {
		t, err := b.Build(spec)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Apply builds the tables of d and commits them to seq in order. Tables already
// committed are skipped by the sequencer, so re-applying a design is safe.
func (d *Design) Apply(ctx context.Context, seq *sequencer.Sequencer, opts ...Option) ([]sequencer.CommitResult, error) {
	b := d.NewBuilder(append([]Option{WithMaxRows(seq.MaxRows())}, opts...)...)
	if d.MaxRows > 0 && d.MaxRows < seq.MaxRows() {
		b.maxRows = d.MaxRows
	}
	tables, err := b.Tables(d)
	if err != nil {
		return nil, err
	}
	results := make([]sequencer.CommitResult, 0, len(tables))
	for i, t := range tables {
		res, err := seq.Commit(ctx, t)
		if err != nil {
			return results, fmt.Errorf("commit table %s: %w", d.Tables[i].label(), err)
		}
		results = append(results, res)
	}
	return results, nil
}

// decodeArgs decodes a mapping argument into out through mapstructure, rejecting unknown keys.
func decodeArgs(args *yaml.Node, out any) error {
	var raw map[string]any
	if err := args.Decode(&raw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return nil
}

func decodeInt(args *yaml.Node) (int, error) {
	n, err := strconv.Atoi(args.Value)
	if args.Kind != yaml.ScalarNode || err != nil {
		return 0, fmt.Errorf("%w: expected an integer, got %q", domain.ErrInvalidArgument, args.Value)
	}
	return n, nil
}

func decodeValue(args *yaml.Node) (any, error) {
	var v any
	if err := args.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArgument, err)
	}
	return v, nil
}

func decodeColumns(args *yaml.Node) (*table.Columns, error) {
	cols := table.NewColumns()
	if err := args.Decode(cols); err != nil {
		return nil, err
	}
	return cols, nil
}

func opAppend(_ *Builder, t *table.Table, args *yaml.Node) error {
	v, err := decodeValue(args)
	if err != nil {
		return err
	}
	_, err = t.Append(v)
	return err
}

type rangeArgs struct {
	N     int    `mapstructure:"n"`
	Field string `mapstructure:"field"`
}

func opRange(_ *Builder, t *table.Table, args *yaml.Node) error {
	var ra rangeArgs
	if args.Kind == yaml.ScalarNode {
		n, err := decodeInt(args)
		if err != nil {
			return err
		}
		ra.N = n
	} else if err := decodeArgs(args, &ra); err != nil {
		return err
	}
	_, err := t.Range(ra.N, ra.Field)
	return err
}

func opRepeat(_ *Builder, t *table.Table, args *yaml.Node) error {
	n, err := decodeInt(args)
	if err != nil {
		return err
	}
	_, err = t.Repeat(n)
	return err
}

func opZip(_ *Builder, t *table.Table, args *yaml.Node) error {
	if args.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: zip expects a mapping with columns", domain.ErrInvalidArgument)
	}
	var cols *table.Columns
	rest := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	hasPad := false
	for i := 0; i+1 < len(args.Content); i += 2 {
		key, value := args.Content[i], args.Content[i+1]
		switch key.Value {
		case "columns":
			var err error
			if cols, err = decodeColumns(value); err != nil {
				return err
			}
		case "pad_value":
			hasPad = true
			fallthrough
		default:
			rest.Content = append(rest.Content, key, value)
		}
	}
	if cols == nil {
		return fmt.Errorf("%w: zip needs columns", domain.ErrInvalidArgument)
	}
	var opts table.ZipOptions
	if err := decodeArgs(rest, &opts); err != nil {
		return err
	}
	opts.HasPad = opts.HasPad || hasPad
	_, err := t.Zip(cols, opts)
	return err
}

func opOuter(_ *Builder, t *table.Table, args *yaml.Node) error {
	cols, err := decodeColumns(args)
	if err != nil {
		return err
	}
	_, err = t.Outer(cols)
	return err
}

func opInterleave(_ *Builder, t *table.Table, args *yaml.Node) error {
	v, err := decodeValue(args)
	if err != nil {
		return err
	}
	_, err = t.Interleave(v)
	return err
}

func opPartition(_ *Builder, t *table.Table, args *yaml.Node) error {
	n, err := decodeInt(args)
	if err != nil {
		return err
	}
	_, err = t.Partition(n)
	return err
}

func opShuffle(_ *Builder, t *table.Table, args *yaml.Node) error {
	seed := ""
	if args.Kind == yaml.ScalarNode && args.Tag != "!!null" {
		seed = args.Value
	}
	_, err := t.Shuffle(seed)
	return err
}

type sampleArgs struct {
	table.SampleOptions `mapstructure:",squash"`
	Fn                  string `mapstructure:"fn"`
}

func opSample(b *Builder, t *table.Table, args *yaml.Node) error {
	var sa sampleArgs
	if err := decodeArgs(args, &sa); err != nil {
		return err
	}
	if sa.Fn != "" {
		fn, err := b.samplers.Lookup(sa.Fn)
		if err != nil {
			return err
		}
		sa.SampleOptions.Fn = fn
		if sa.Type == "" {
			sa.Type = table.Custom
		}
	}
	_, err := t.Sample(sa.SampleOptions)
	return err
}
