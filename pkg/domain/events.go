package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNavigate   EventType = "navigate"
	EventCommit     EventType = "commit"
	EventCommitSkip EventType = "commit_skip"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Sequence  string    `json:"sequence"`
}

// NavigationEvent is emitted after the current leaf changed.
type NavigationEvent struct {
	EventBase
	Action string `json:"action"` // next, prev, reset, goto
	From   string `json:"from"`
	To     string `json:"to"`
}

// CommitEvent is emitted when a table is committed or skipped.
type CommitEvent struct {
	EventBase
	Hash        string `json:"hash"`
	Transaction string `json:"transaction,omitempty"`
	Rows        int    `json:"rows"`
	Reason      string `json:"reason,omitempty"`
}

// LifecycleHooks defines callbacks for sequencer observability.
type LifecycleHooks struct {
	OnNavigate   func(context.Context, *NavigationEvent)
	OnCommit     func(context.Context, *CommitEvent)
	OnCommitSkip func(context.Context, *CommitEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNavigate:   chain(h.OnNavigate, other.OnNavigate),
		OnCommit:     chain(h.OnCommit, other.OnCommit),
		OnCommitSkip: chain(h.OnCommitSkip, other.OnCommitSkip),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
