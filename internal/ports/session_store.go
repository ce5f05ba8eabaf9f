package ports

import (
	"context"

	"github.com/mikey/inbox-clusterer/internal/core"
)

// SessionStore defines the interface for web session persistence
type SessionStore interface {
	// Create opens a new session for a user
	Create(ctx context.Context, userID int64) (*core.Session, error)

	// Get retrieves a live session by token
	Get(ctx context.Context, token string) (*core.Session, error)

	// Delete removes a session
	Delete(ctx context.Context, token string) error

	// Cleanup removes expired sessions
	Cleanup(ctx context.Context) error
}
