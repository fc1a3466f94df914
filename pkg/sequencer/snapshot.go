package sequencer

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/tree"
)

// Snapshot is the serializable state of a Sequencer: the tree with its cursors and
// shuffle flags, the transaction log and the transaction generator state.
type Snapshot struct {
	Name         string            `json:"name,omitempty"`
	Seed         string            `json:"seed,omitempty"`
	Tree         tree.Snapshot     `json:"tree"`
	Transactions []string          `json:"transactions"`
	TxSeed       uint32            `json:"tx_seed"`
	Shuffles     map[string]string `json:"shuffles,omitempty"`
}

// Snapshot captures the current state. Data that cannot be encoded is dropped.
func (s *Sequencer) Snapshot() Snapshot {
	txs := s.TransactionLog()
	if txs == nil {
		txs = []string{}
	}
	var shuffles map[string]string
	if len(s.shuffles) > 0 {
		shuffles = maps.Clone(s.shuffles)
	}
	return Snapshot{
		Name:         s.name,
		Seed:         s.seed,
		Tree:         s.root.Snapshot(),
		Transactions: txs,
		TxSeed:       s.txState,
		Shuffles:     shuffles,
	}
}

// Restore replaces the state with snap. The top level must start with the start
// sentinel and end with the end sentinel. On error nothing changes.
func (s *Sequencer) Restore(snap Snapshot) error {
	children := snap.Tree.Children
	if len(children) < 2 ||
		children[0].ID != domain.StartOfSequence ||
		children[len(children)-1].ID != domain.EndOfSequence {
		return fmt.Errorf("%w: snapshot is missing the sequence sentinels", domain.ErrInvalidArgument)
	}
	if err := s.root.Restore(snap.Tree); err != nil {
		return err
	}
	if snap.Name != "" && s.name == "" {
		s.name = snap.Name
	}
	if snap.Seed != "" && snap.Seed != s.seed {
		s.SetSeed(snap.Seed)
	}
	s.txLog = append([]string(nil), snap.Transactions...)
	s.txState = snap.TxSeed
	if s.txState == 0 {
		s.txState = txInitialState
	}
	s.shuffles = make(map[string]string, len(snap.Shuffles))
	maps.Copy(s.shuffles, snap.Shuffles)
	return nil
}

// FromSnapshot builds a Sequencer from snap.
func FromSnapshot(snap Snapshot, opts ...Option) (*Sequencer, error) {
	s := New(opts...)
	if err := s.Restore(snap); err != nil {
		return nil, err
	}
	return s, nil
}

// MarshalJSON encodes the sequence as a Snapshot.
func (s *Sequencer) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

// LoadFromJSON restores the sequence from data produced by MarshalJSON.
func (s *Sequencer) LoadFromJSON(data []byte) error {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to unmarshal sequence: %w", err)
	}
	return s.Restore(snap)
}
