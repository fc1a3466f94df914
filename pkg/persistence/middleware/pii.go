package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/aretw0/stepper/pkg/domain"
	"github.com/aretw0/stepper/pkg/ports"
)

// Mask replaces the values of masked keys.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware masks, before saving, every value in the sequence snapshot and
// metadata whose key matches one of the patterns. The caller's session is not modified.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, name string, session *domain.Session) error {
	masked := session.Clone()
	for k := range masked.Metadata {
		if m.matches(k) {
			masked.Metadata[k] = Mask
		}
	}

	if len(masked.Sequence) > 0 {
		var doc any
		if err := json.Unmarshal(masked.Sequence, &doc); err != nil {
			return fmt.Errorf("failed to decode sequence for masking: %w", err)
		}
		m.mask(doc)
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to encode masked sequence: %w", err)
		}
		masked.Sequence = data
	}

	return m.next.Save(ctx, name, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, name string) (*domain.Session, error) {
	return m.next.Load(ctx, name)
}

func (m *piiMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) matches(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// mask walks a decoded JSON document in place.
func (m *piiMiddleware) mask(v any) {
	switch v := v.(type) {
	case map[string]any:
		for k, child := range v {
			if m.matches(k) {
				v[k] = Mask
				continue
			}
			m.mask(child)
		}
	case []any:
		for _, child := range v {
			m.mask(child)
		}
	}
}
