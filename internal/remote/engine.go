package remote

import (
	"context"

	"github.com/temirov/gitremote/internal/gitrepo"
)

// Reference is a reference advertised by the remote during a connection.
type Reference struct {
	Name   string `yaml:"name"`
	Target string `yaml:"target"`
}

// Engine constructs engine-level remotes bound to a repository.
type Engine interface {
	// NewRemote creates a remote for transportURL. An empty name asks the engine for its default.
	NewRemote(repository *gitrepo.Repository, transportURL gitrepo.TransportURL, name string) (EngineRemote, error)
}

// EngineRemote performs the transport work behind a Handle.
//
// Connect decides how a connect on an already connected remote behaves.
// Disconnect must be safe to call when nothing is connected.
type EngineRemote interface {
	Name() string
	URL() string
	Connect(executionContext context.Context, direction Direction) error
	Disconnect() error
	Connected() bool
	References() ([]Reference, error)
	Free() error
}
