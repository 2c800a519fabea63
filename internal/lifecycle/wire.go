package lifecycle

// NewLifecycleServices builds a fresh Connection for a new transport
// session. Kept as a standalone factory function for symmetry with
// this module's other wire.go dependency-injection entry points.
func NewLifecycleServices() *Connection {
	return NewConnection()
}
