// Package gitcliengine implements the remote engine by invoking the git executable.
//
// A connection is a successful `git ls-remote` against the remote; the
// advertised references it prints are kept until Disconnect.
package gitcliengine
