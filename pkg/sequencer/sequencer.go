package sequencer

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/stepper/internal/logging"
	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/rng"
	"github.com/aretw0/stepper/pkg/tree"
)

// Sequencer is the root of a trial tree plus its commit bookkeeping.
// It is not safe for concurrent use.
type Sequencer struct {
	Block

	root     *tree.Node
	name     string
	maxRows  int
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	source   *rng.Source
	seed     string
	txLog    []string
	txState  uint32
	shuffles map[string]string
}

// Option configures a Sequencer.
type Option func(*Sequencer)

// WithName sets the name reported in lifecycle events.
func WithName(name string) Option {
	return func(s *Sequencer) {
		s.name = name
	}
}

// WithMaxRows sets the safety limit on rows added under a single node.
func WithMaxRows(n int) Option {
	return func(s *Sequencer) {
		s.maxRows = n
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Sequencer) {
		s.logger = logger
	}
}

// WithHooks registers lifecycle hooks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Sequencer) {
		s.hooks = hooks
	}
}

// WithSource sets the random source used by Shuffle when no seed is given.
func WithSource(src *rng.Source) Option {
	return func(s *Sequencer) {
		s.source = src
	}
}

// WithSeed sets the default seed of the sequence. It is persisted, so a reloaded
// sequence draws the same random values as before.
func WithSeed(seed string) Option {
	return func(s *Sequencer) {
		s.seed = seed
	}
}

const txInitialState uint32 = 12345

// New creates an empty sequence: the two sentinels, with the cursor on the end sentinel.
func New(opts ...Option) *Sequencer {
	s := &Sequencer{
		root:     tree.New(domain.RootID),
		txState:  txInitialState,
		shuffles: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	s.Block = Block{seq: s, node: s.root}
	s.initSentinels()
	return s
}

func (s *Sequencer) initSentinels() {
	// errors are impossible on an empty root
	_, _ = s.root.Push(domain.StartOfSequence, nil)
	_, _ = s.root.Push(domain.EndOfSequence, nil)
	_ = s.root.SetIndex(1)
}

// Seed returns the default seed of the sequence, empty when none was set.
func (s *Sequencer) Seed() string { return s.seed }

// SetSeed replaces the default seed. An explicit source given with WithSource
// is dropped in favour of one derived from seed.
func (s *Sequencer) SetSeed(seed string) {
	s.seed = seed
	s.source = nil
}

// Source returns the random source used when no seed is given. Without
// WithSource it is derived from the default seed, or fresh when there is none.
func (s *Sequencer) Source() *rng.Source {
	if s.source == nil {
		s.source = rng.Or(s.seed, nil)
	}
	return s.source
}

// Name returns the sequence name.
func (s *Sequencer) Name() string { return s.name }

// Tree returns the root node. Callers must not add or remove top-level children
// directly; use the Block methods instead.
func (s *Sequencer) Tree() *tree.Node { return s.root }

// MaxRows returns the effective safety limit.
func (s *Sequencer) MaxRows() int {
	if s.maxRows > 0 {
		return s.maxRows
	}
	return domain.DefaultMaxRows
}

// ContentLen returns the number of top-level units, sentinels excluded.
func (s *Sequencer) ContentLen() int {
	return s.root.Len() - 2
}

// Clear drops all content, the transaction log and the shuffle memory,
// restoring a freshly created sequence.
func (s *Sequencer) Clear() {
	s.root.Clear()
	s.txLog = nil
	s.txState = txInitialState
	s.shuffles = make(map[string]string)
	s.initSentinels()
}

// Current describes the selected leaf.
func (s *Sequencer) Current() domain.Step {
	leaf := s.root.CurrentLeaf()
	return domain.Step{
		Path:        s.root.CurrentPath(),
		PathString:  s.root.CurrentPathString(),
		Data:        s.root.DataAlongPath(),
		Index:       leaf.Parent().Index(),
		BlockIndex:  s.root.BlockIndex(),
		BlockLength: s.root.BlockLength(),
	}
}

// AtStart reports whether the cursor is on the start sentinel.
func (s *Sequencer) AtStart() bool {
	return s.root.CurrentPathString() == domain.StartOfSequence
}

// AtEnd reports whether the cursor is on the end sentinel.
func (s *Sequencer) AtEnd() bool {
	return s.root.CurrentPathString() == domain.EndOfSequence
}

// HasNext reports whether Next would move.
func (s *Sequencer) HasNext() bool { return s.root.HasNext() }

// HasPrev reports whether Prev would move.
func (s *Sequencer) HasPrev() bool { return s.root.HasPrev() }

// Next moves to the following leaf. It returns nil, without moving, past the end sentinel.
func (s *Sequencer) Next(ctx context.Context) *tree.Node {
	from := s.root.CurrentPathString()
	leaf := s.root.Next()
	if leaf != nil {
		s.emitNavigate(ctx, "next", from)
	}
	return leaf
}

// Prev moves to the preceding leaf. It returns nil, without moving, before the start sentinel.
func (s *Sequencer) Prev(ctx context.Context) *tree.Node {
	from := s.root.CurrentPathString()
	leaf := s.root.Prev()
	if leaf != nil {
		s.emitNavigate(ctx, "prev", from)
	}
	return leaf
}

// Reset moves to the first position after the start sentinel: the first unit,
// or the end sentinel when there is no content.
func (s *Sequencer) Reset(ctx context.Context) {
	from := s.root.CurrentPathString()
	s.root.Reset()
	s.root.Next()
	s.emitNavigate(ctx, "reset", from)
}

// GoTo selects the node at path (continuing to its first leaf).
// An unknown path fails with domain.ErrInvalidPath and does not move.
func (s *Sequencer) GoTo(ctx context.Context, path string) error {
	from := s.root.CurrentPathString()
	if err := s.root.GoTo(path); err != nil {
		return err
	}
	s.emitNavigate(ctx, "goto", from)
	return nil
}

// Diagram renders the tree with box-drawing connectors.
func (s *Sequencer) Diagram() string {
	return s.root.TreeDiagram()
}

func (s *Sequencer) emitNavigate(ctx context.Context, action, from string) {
	to := s.root.CurrentPathString()
	s.logger.Debug("navigated", "sequence", s.name, "action", action, "from", from, "to", to)
	if s.hooks.OnNavigate == nil {
		return
	}
	s.hooks.OnNavigate(ctx, &domain.NavigationEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventNavigate,
			Sequence:  s.name,
		},
		Action: action,
		From:   from,
		To:     to,
	})
}
