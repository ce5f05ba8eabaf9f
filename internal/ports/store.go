package ports

import (
	"github.com/mikey/inbox-clusterer/internal/core"
)

// Store persists users and their clusters
type Store interface {
	core.ClusterRepository
	core.UserRepository

	// Close releases the underlying resources
	Close() error
}
