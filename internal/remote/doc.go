// Package remote manages the connection lifecycle of a remote handle.
//
// A Handle is created from a repository and a transport URL, connected for
// fetch or push, disconnected, and queried for its name and state. All
// transport work is delegated to an Engine; the handle only owns the state
// machine, the repository reference and error translation into the
// ErrInvalidArgument, ErrUnsupportedTransport, ErrNotImplemented and ErrEngine
// kinds.
package remote
