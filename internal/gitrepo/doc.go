// Package gitrepo holds the repository side of a remote handle.
//
// Repository is a counted reference to an opened go-git repository that keeps
// storage alive while remote handles use it. ParseTransportURL classifies
// remote locations into transport URLs, unsupported schemes and bare remote
// names before any engine sees them.
package gitrepo
