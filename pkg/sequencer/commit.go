package sequencer

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/table"
)

// CommitResult describes the outcome of a Commit.
type CommitResult struct {
	// Hash is the structural hash of the committed table.
	Hash string `json:"hash"`
	// Transaction is the log entry written, empty when skipped.
	Transaction string `json:"transaction,omitempty"`
	// Added counts the nodes created, nested ones included.
	Added int `json:"added"`
	// Skipped is set when nothing was inserted; Reason says why.
	Skipped bool   `json:"skipped"`
	Reason  string `json:"reason,omitempty"`
}

// Skip reasons reported by Commit.
const (
	ReasonDuplicate = "duplicate"
	ReasonEmpty     = "empty"
)

// AddSpec is an alias for Commit.
func (s *Sequencer) AddSpec(ctx context.Context, t *table.Table) (CommitResult, error) {
	return s.Commit(ctx, t)
}

// Commit copies the rows of t into the sequence, after the existing content and
// before the end sentinel. Nested rows become nested nodes. Row ids come from a
// "path" or "page" field when present, otherwise from their position.
//
// A table whose structural hash is already in the transaction log is skipped, as is
// an empty table. A read-only table fails with domain.ErrReadOnly. On success the
// table becomes read-only and "{hash}-{suffix}" is appended to the log. When the
// sequence had no content, the cursor moves to the first committed leaf.
func (s *Sequencer) Commit(ctx context.Context, t *table.Table) (CommitResult, error) {
	res, err := s.Stage(ctx, t)
	if err != nil || res.Skipped {
		return res, err
	}
	if _, err := t.SetReadOnly(); err != nil {
		return res, fmt.Errorf("failed to lock committed table: %w", err)
	}
	return res, nil
}

// Stage is Commit without locking t. Callers that persist the sequence lock the
// table themselves once the write succeeded, so a failed write can be retried.
func (s *Sequencer) Stage(ctx context.Context, t *table.Table) (CommitResult, error) {
	if t == nil {
		return CommitResult{}, fmt.Errorf("%w: nil table", domain.ErrInvalidArgument)
	}
	hash := t.Hash()
	res := CommitResult{Hash: hash}

	if s.committed(hash) {
		res.Skipped, res.Reason = true, ReasonDuplicate
		s.logger.Debug("skipping commit of an already committed table", "sequence", s.name, "hash", hash)
		s.emitCommit(ctx, s.hooks.OnCommitSkip, res, t.Len())
		return res, nil
	}
	if t.IsReadOnly() {
		return res, fmt.Errorf("cannot commit table %s: %w", hash, domain.ErrReadOnly)
	}
	if t.Len() == 0 {
		res.Skipped, res.Reason = true, ReasonEmpty
		s.logger.Debug("skipping commit of a table with no rows", "sequence", s.name, "hash", hash)
		s.emitCommit(ctx, s.hooks.OnCommitSkip, res, 0)
		return res, nil
	}
	if err := s.validate(t); err != nil {
		return res, err
	}

	wasEmpty := s.ContentLen() == 0
	res.Added = s.insertRows(&s.Block, t)
	res.Transaction = hash + "-" + s.nextSuffix()
	s.txLog = append(s.txLog, res.Transaction)
	if wasEmpty && s.ContentLen() > 0 {
		s.root.Reset()
		s.root.Next()
	}

	s.logger.Info("table committed", "sequence", s.name, "transaction", res.Transaction, "added", res.Added)
	s.emitCommit(ctx, s.hooks.OnCommit, res, t.Len())
	return res, nil
}

// validate checks ids and row counts for the whole table before anything is inserted.
func (s *Sequencer) validate(t *table.Table) error {
	if err := domain.CheckCapacity("commit", s.ContentLen()+t.Len(), s.MaxRows()); err != nil {
		return err
	}
	var walk func(*table.Table) error
	walk = func(n *table.Table) error {
		if err := domain.CheckCapacity("commit", n.Len(), s.MaxRows()); err != nil {
			return err
		}
		for _, row := range n.Rows() {
			id := domain.IDFromData(row.Data(), domain.KeyPath, domain.KeyPage)
			if strings.Contains(id, domain.PathSeparator) {
				return fmt.Errorf("%w: id cannot contain %q (id: %q)", domain.ErrInvalidID, domain.PathSeparator, id)
			}
			if err := walk(row); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(t)
}

func (s *Sequencer) insertRows(parent *Block, t *table.Table) int {
	added := 0
	start := parent.Len()
	for i, row := range t.Rows() {
		id := domain.IDFromData(row.Data(), domain.KeyPath, domain.KeyPage)
		if id == "" {
			id = strconv.Itoa(start + i)
		}
		var data any
		if row.Data() != nil {
			data = domain.Clone(row.Data())
		}
		n := parent.add(id, data)
		if n == nil {
			continue
		}
		added++
		if row.Len() > 0 {
			added += s.insertRows(s.At(n), row)
		}
	}
	return added
}

func (s *Sequencer) committed(hash string) bool {
	prefix := hash + "-"
	return slices.ContainsFunc(s.txLog, func(tx string) bool {
		return strings.HasPrefix(tx, prefix)
	})
}

// nextSuffix advances the transaction generator and renders it as 8 base-36 digits.
func (s *Sequencer) nextSuffix() string {
	s.txState = s.txState*1664525 + 1013904223
	suffix := strconv.FormatUint(uint64(s.txState), 36)
	if len(suffix) < 8 {
		suffix = strings.Repeat("0", 8-len(suffix)) + suffix
	}
	return suffix[len(suffix)-8:]
}

// TransactionLog returns a copy of the commit log.
func (s *Sequencer) TransactionLog() []string {
	return slices.Clone(s.txLog)
}

func (s *Sequencer) emitCommit(ctx context.Context, hook func(context.Context, *domain.CommitEvent), res CommitResult, rows int) {
	if hook == nil {
		return
	}
	typ := domain.EventCommit
	if res.Skipped {
		typ = domain.EventCommitSkip
	}
	hook(ctx, &domain.CommitEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      typ,
			Sequence:  s.name,
		},
		Hash:        res.Hash,
		Transaction: res.Transaction,
		Rows:        rows,
		Reason:      res.Reason,
	})
}
