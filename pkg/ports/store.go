package ports

import (
	"context"

	"github.com/aretw0/stepper/pkg/domain"
)

// StateStore persists sessions by name so a participant can leave and resume.
type StateStore interface {
	// Save persists the session under the given name.
	Save(ctx context.Context, name string, session *domain.Session) error

	// Load retrieves a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, name string) (*domain.Session, error)

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
