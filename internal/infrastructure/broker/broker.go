package broker

import (
	"fmt"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
)

// Server wraps an in-process MQTT broker for local development and tests.
// It accepts anonymous connections; production deployments point the client
// at a real broker instead.
type Server struct {
	server *mochi.Server
}

// Start creates a broker listening on addr and begins serving. Serving
// happens on the broker's own goroutines; Start returns once the listener
// is bound.
//
// Parameters:
//   - addr: host:port for the TCP listener
//
// Returns:
//   - *Server: running broker, stop with Close
//   - error: if the listener cannot be registered or bound
func Start(addr string) (*Server, error) {
	server := mochi.New(nil)

	if err := server.AddHook(new(auth.AllowHook), nil); err != nil {
		return nil, fmt.Errorf("adding auth hook: %w", err)
	}

	tcp := listeners.NewTCP(listeners.Config{ID: "tcp", Address: addr})
	if err := server.AddListener(tcp); err != nil {
		return nil, fmt.Errorf("adding tcp listener: %w", err)
	}

	if err := server.Serve(); err != nil {
		return nil, fmt.Errorf("starting broker: %w", err)
	}

	return &Server{server: server}, nil
}

// Close shuts the broker down and releases its listeners.
func (s *Server) Close() error {
	return s.server.Close()
}
