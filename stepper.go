package stepper

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aretw0/stepper/internal/logging"
	"github.com/aretw0/stepper/pkg/adapters/memory"
	"github.com/aretw0/stepper/pkg/design"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/ports"
	"github.com/aretw0/stepper/pkg/registry"
	"github.com/aretw0/stepper/pkg/rng"
	"github.com/aretw0/stepper/pkg/sequencer"
	"github.com/aretw0/stepper/pkg/session"
	"github.com/aretw0/stepper/pkg/table"
)

// Engine is the high-level entry point of the library.
// It keeps named sequences in a state store and serializes access to each of them.
type Engine struct {
	manager  *session.Manager
	store    ports.StateStore
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxRows  int
	seed     string
	samplers *registry.Registry
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the state store. The default keeps sequences in memory.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithManager injects a session manager, for instance one with a distributed locker.
// It takes precedence over WithStore.
func WithManager(m *session.Manager) Option {
	return func(e *Engine) {
		e.manager = m
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks on every sequence the engine opens.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithMaxRows sets the safety limit for sequences and tables built by the engine.
func WithMaxRows(n int) Option {
	return func(e *Engine) {
		e.maxRows = n
	}
}

// WithSeed sets a base seed. Each sequence then draws from base + "/" + name,
// so two participants get different orders that are reproducible. Without it
// every new sequence gets a random seed of its own.
func WithSeed(seed string) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// WithRegistry sets the samplers available to designs.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) {
		e.samplers = r
	}
}

// New initializes an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.samplers == nil {
		e.samplers = registry.Builtin()
	}
	if e.manager == nil {
		if e.store == nil {
			e.store = memory.NewStore()
		}
		e.manager = session.NewManager(e.store, session.WithLogger(e.logger))
	}
	return e
}

// View is the current step of a named sequence plus its boundary flags.
type View struct {
	Sequence string `json:"sequence"`
	domain.Step
	AtStart bool `json:"at_start"`
	AtEnd   bool `json:"at_end"`
	// Moved is false when a navigation hit a boundary.
	Moved bool `json:"moved"`
}

func viewOf(name string, seq *sequencer.Sequencer, moved bool) View {
	return View{
		Sequence: name,
		Step:     seq.Current(),
		AtStart:  seq.AtStart(),
		AtEnd:    seq.AtEnd(),
		Moved:    moved,
	}
}

// Manager returns the session manager.
func (e *Engine) Manager() *session.Manager {
	return e.manager
}

// NewTable creates an empty table carrying the engine's limit and a source of
// its own, derived from the base seed when there is one.
func (e *Engine) NewTable(opts ...table.Option) *table.Table {
	base := []table.Option{table.WithMaxRows(e.maxRows), table.WithSource(rng.Or(e.seed, nil))}
	return table.New(append(base, opts...)...)
}

func (e *Engine) seedFor(name string) string {
	if e.seed != "" {
		return e.seed + "/" + name
	}
	return rng.Fresh().Seed()
}

func (e *Engine) sequencerOptions(name string) []sequencer.Option {
	return []sequencer.Option{
		sequencer.WithName(name),
		sequencer.WithMaxRows(e.maxRows),
		sequencer.WithLogger(e.logger),
		sequencer.WithHooks(e.hooks),
	}
}

func (e *Engine) restore(name string, s *domain.Session) (*sequencer.Sequencer, error) {
	seq := sequencer.New(e.sequencerOptions(name)...)
	if len(s.Sequence) > 0 {
		if err := seq.LoadFromJSON(s.Sequence); err != nil {
			return nil, fmt.Errorf("failed to restore sequence %q: %w", name, err)
		}
	}
	if seq.Seed() == "" {
		seq.SetSeed(e.seedFor(name))
	}
	return seq, nil
}

func encode(s *domain.Session, seq *sequencer.Sequencer) error {
	data, err := json.Marshal(seq)
	if err != nil {
		return fmt.Errorf("failed to encode sequence: %w", err)
	}
	s.Sequence = data
	s.Cursor = seq.Current().PathString
	s.Committed = len(seq.TransactionLog())
	return nil
}

// Open loads a stored sequence for reading. Changes made to the returned value are
// not persisted; use Do for that. A missing sequence fails with domain.ErrSessionNotFound.
func (e *Engine) Open(ctx context.Context, name string) (*sequencer.Sequencer, error) {
	s, err := e.manager.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.restore(name, s)
}

// Do runs fn on the named sequence, creating it when missing, and persists the
// result. Nothing is saved when fn fails.
func (e *Engine) Do(ctx context.Context, name string, fn func(context.Context, *sequencer.Sequencer) error) (*sequencer.Sequencer, error) {
	var seq *sequencer.Sequencer
	_, err := e.manager.Update(ctx, name, func(s *domain.Session) error {
		var err error
		seq, err = e.restore(name, s)
		if err != nil {
			return err
		}
		if err := fn(ctx, seq); err != nil {
			return err
		}
		return encode(s, seq)
	})
	if err != nil {
		return nil, err
	}
	return seq, nil
}

// Current reports the selected step of a stored sequence.
func (e *Engine) Current(ctx context.Context, name string) (View, error) {
	seq, err := e.Open(ctx, name)
	if err != nil {
		return View{}, err
	}
	return viewOf(name, seq, false), nil
}

// Next advances the named sequence by one leaf.
func (e *Engine) Next(ctx context.Context, name string) (View, error) {
	return e.navigate(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) (bool, error) {
		return seq.Next(ctx) != nil, nil
	})
}

// Prev moves the named sequence back by one leaf.
func (e *Engine) Prev(ctx context.Context, name string) (View, error) {
	return e.navigate(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) (bool, error) {
		return seq.Prev(ctx) != nil, nil
	})
}

// Reset moves the named sequence to its first unit.
func (e *Engine) Reset(ctx context.Context, name string) (View, error) {
	return e.navigate(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) (bool, error) {
		seq.Reset(ctx)
		return true, nil
	})
}

// GoTo selects path in the named sequence.
func (e *Engine) GoTo(ctx context.Context, name, path string) (View, error) {
	return e.navigate(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) (bool, error) {
		if err := seq.GoTo(ctx, path); err != nil {
			return false, err
		}
		return true, nil
	})
}

func (e *Engine) navigate(ctx context.Context, name string, move func(context.Context, *sequencer.Sequencer) (bool, error)) (View, error) {
	var moved bool
	seq, err := e.Do(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) error {
		var err error
		moved, err = move(ctx, seq)
		return err
	})
	if err != nil {
		return View{}, err
	}
	return viewOf(name, seq, moved), nil
}

// Commit appends t to the named sequence. t is locked only once the sequence
// was saved, so a failed write leaves it free to be committed again.
func (e *Engine) Commit(ctx context.Context, name string, t *table.Table) (sequencer.CommitResult, error) {
	var res sequencer.CommitResult
	_, err := e.Do(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) error {
		var err error
		res, err = seq.Stage(ctx, t)
		return err
	})
	if err != nil {
		return res, err
	}
	if !res.Skipped {
		if _, err := t.SetReadOnly(); err != nil {
			return res, fmt.Errorf("failed to lock committed table: %w", err)
		}
	}
	return res, nil
}

// Apply builds every table of d and commits them to the named sequence, in order.
// Steps without a seed draw from the sequence's persisted seed, so the same
// design builds the same tables for a sequence and applying it again skips them.
func (e *Engine) Apply(ctx context.Context, name string, d *design.Design) ([]sequencer.CommitResult, error) {
	var results []sequencer.CommitResult
	_, err := e.Do(ctx, name, func(ctx context.Context, seq *sequencer.Sequencer) error {
		opts := []design.Option{
			design.WithRegistry(e.samplers),
			design.WithLogger(e.logger),
		}
		if d.Seed == "" {
			opts = append(opts, design.WithSource(rng.New(seq.Seed())))
		}
		var err error
		results, err = d.Apply(ctx, seq, opts...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Diagram renders the tree of a stored sequence.
func (e *Engine) Diagram(ctx context.Context, name string) (string, error) {
	seq, err := e.Open(ctx, name)
	if err != nil {
		return "", err
	}
	return seq.Diagram(), nil
}

// Inspect returns the stored record of a sequence.
func (e *Engine) Inspect(ctx context.Context, name string) (*domain.Session, error) {
	return e.manager.Load(ctx, name)
}

// List returns the names of the stored sequences.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return e.manager.List(ctx)
}

// Delete removes a stored sequence.
func (e *Engine) Delete(ctx context.Context, name string) error {
	return e.manager.Delete(ctx, name)
}
