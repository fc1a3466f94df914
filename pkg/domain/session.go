package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"time"
)

// Session is the persisted form of a named sequence.
// Sequence holds the JSON snapshot of the sequencer; the other fields are a summary
// readable without decoding it.
type Session struct {
	ID        string            `json:"id"`
	Cursor    string            `json:"cursor,omitempty"`
	Committed int               `json:"committed"`
	UpdatedAt time.Time         `json:"updated_at"`
	Sequence  json.RawMessage   `json:"sequence,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewSession returns an empty session record.
func NewSession(id string) *Session {
	return &Session{
		ID:        id,
		UpdatedAt: time.Now(),
		Metadata:  make(map[string]string),
	}
}

// Clone returns a copy that shares no memory with s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Sequence = slices.Clone(s.Sequence)
	out.Metadata = maps.Clone(s.Metadata)
	return &out
}
