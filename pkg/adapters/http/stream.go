package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/stepper/pkg/domain"
)

// StreamManager fans lifecycle events out to SSE subscribers, per sequence.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // sequence -> set of channels
	logger      *slog.Logger
}

// NewStreamManager creates an empty StreamManager.
func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      slog.Default(),
	}
}

// Subscribe registers a buffered channel for the sequence. The returned
// function unregisters and closes it.
func (sm *StreamManager) Subscribe(sequence string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sequence]; !ok {
		sm.subscribers[sequence] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sequence][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[sequence]; ok {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(sm.subscribers, sequence)
				}
			}
			close(ch)
		})
	}
}

// Subscribers returns the number of live subscriptions for the sequence.
func (sm *StreamManager) Subscribers(sequence string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sequence])
}

// Broadcast sends msg to every subscriber of the sequence. Slow clients with a
// full buffer miss the message.
func (sm *StreamManager) Broadcast(sequence string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sequence] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: Client buffer full, dropping message", "sequence", sequence)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNavigate: func(_ context.Context, e *domain.NavigationEvent) {
			sm.publish(e.Sequence, e)
		},
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			sm.publish(e.Sequence, e)
		},
		OnCommitSkip: func(_ context.Context, e *domain.CommitEvent) {
			sm.publish(e.Sequence, e)
		},
	}
}

func (sm *StreamManager) publish(sequence string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		sm.logger.Error("SSE: failed to encode event", "error", err)
		return
	}
	sm.Broadcast(sequence, string(data))
}
