// Package remotes provides the connect and inspect commands, which build
// remote handles from configuration and flags and report what a remote
// advertises.
package remotes
