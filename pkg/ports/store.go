package ports

import (
	"context"

	"github.com/aretw0/uranai/pkg/domain"
)

// SessionStore defines the interface for persisting per-user dialogue sessions.
type SessionStore interface {
	// Load retrieves the session for a user.
	// Returns domain.ErrSessionNotFound if no record exists (or it expired).
	Load(ctx context.Context, userID string) (*domain.Session, error)

	// Save persists the session under its UserID, refreshing the expiry.
	Save(ctx context.Context, session *domain.Session) error

	// Delete removes the session for a user. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID string) error

	// List returns the user IDs with a live session.
	List(ctx context.Context) ([]string, error)

	// Ping verifies the store is reachable, reconnecting if the backend supports it.
	Ping(ctx context.Context) error
}
