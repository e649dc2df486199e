// Package gogitengine implements the remote engine on top of go-git transports.
//
// Connect opens an upload-pack session for fetch or a receive-pack session for
// push and keeps the advertised references until Disconnect closes the
// session.
package gogitengine
