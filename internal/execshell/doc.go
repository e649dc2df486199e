// Package execshell runs external tools on behalf of the git CLI engine.
//
// ShellExecutor wraps a CommandRunner with zap lifecycle logging and typed
// failures (CommandFailedError, CommandExecutionError). OSCommandRunner is the
// os/exec backed runner used outside of tests.
package execshell
