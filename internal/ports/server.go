package ports

// Server defines a long running frontend of the clustering service
type Server interface {
	// Start starts serving and returns once the listener is ready
	Start() error

	// Stop stops serving
	Stop() error
}
