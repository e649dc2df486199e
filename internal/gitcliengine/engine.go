package gitcliengine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/execshell"
	"github.com/temirov/gitremote/internal/gitrepo"
	"github.com/temirov/gitremote/internal/remote"
)

const (
	gitLSRemoteSubcommandConstant        = "ls-remote"
	gitSymbolicReferenceFlagConstant     = "--symref"
	gitReceivePackFlagConstant           = "--upload-pack=git-receive-pack"
	gitVersionSubcommandConstant         = "version"
	symbolicReferencePrefixConstant      = "ref: "
	referenceFieldSeparatorConstant      = "\t"
	executorMissingMessageConstant       = "git executor not configured"
	alreadyConnectedTemplateConstant     = "remote %s is already connected for %s; disconnect before connecting for %s"
	remoteFreedTemplateConstant          = "remote %s has been freed"
	malformedReferenceLineTemplate       = "unexpected ls-remote output line %q"
	gitUnavailableTemplateConstant       = "git executable unavailable: %w"
	advertisementReceivedMessageConstant = "git ls-remote advertisement received"
	logFieldRemoteNameConstant           = "remote_name"
	logFieldDirectionConstant            = "direction"
	logFieldReferenceCountConstant       = "reference_count"
)

// ErrExecutorNotConfigured indicates the engine was constructed without a git executor.
var ErrExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies captures collaborators required by the engine.
type Dependencies struct {
	Executor GitExecutor
	Logger   *zap.Logger
}

// Engine creates remotes backed by the git executable.
type Engine struct {
	executor GitExecutor
	logger   *zap.Logger
}

// NewEngine constructs an Engine.
func NewEngine(dependencies Dependencies) (*Engine, error) {
	if dependencies.Executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{executor: dependencies.Executor, logger: logger}, nil
}

// CheckAvailability verifies the git executable can be run.
func (engine *Engine) CheckAvailability(executionContext context.Context) error {
	_, versionError := engine.executor.ExecuteGit(executionContext, execshell.CommandDetails{Arguments: []string{gitVersionSubcommandConstant}})
	if versionError != nil {
		return fmt.Errorf(gitUnavailableTemplateConstant, versionError)
	}
	return nil
}

// NewRemote creates a remote for transportURL. Commands run in the repository
// working directory, or the current directory for in-memory repositories.
func (engine *Engine) NewRemote(repository *gitrepo.Repository, transportURL gitrepo.TransportURL, name string) (remote.EngineRemote, error) {
	if len(name) == 0 {
		name = git.DefaultRemoteName
	}
	return &Remote{
		executor:         engine.executor,
		logger:           engine.logger,
		name:             name,
		url:              transportURL.EngineURL(),
		workingDirectory: repository.Path(),
	}, nil
}

// Remote runs ls-remote to establish connectivity in a direction.
type Remote struct {
	executor         GitExecutor
	logger           *zap.Logger
	name             string
	url              string
	workingDirectory string
	connected        bool
	direction        remote.Direction
	references       []remote.Reference
	freed            bool
}

// Name returns the remote name.
func (cliRemote *Remote) Name() string {
	return cliRemote.name
}

// URL returns the URL passed to git.
func (cliRemote *Remote) URL() string {
	return cliRemote.url
}

// Connect runs ls-remote against the receive-pack service for push and the
// upload-pack service for fetch.
func (cliRemote *Remote) Connect(executionContext context.Context, direction remote.Direction) error {
	if cliRemote.freed {
		return fmt.Errorf(remoteFreedTemplateConstant, cliRemote.name)
	}
	if cliRemote.connected {
		if cliRemote.direction == direction {
			return nil
		}
		return fmt.Errorf(alreadyConnectedTemplateConstant, cliRemote.name, cliRemote.direction, direction)
	}

	result, executionError := cliRemote.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        buildListArguments(cliRemote.url, direction),
		WorkingDirectory: cliRemote.workingDirectory,
	})
	if executionError != nil {
		return executionError
	}

	references, parseError := ParseAdvertisement(result.StandardOutput)
	if parseError != nil {
		return parseError
	}

	cliRemote.connected = true
	cliRemote.direction = direction
	cliRemote.references = references

	cliRemote.logger.Debug(
		advertisementReceivedMessageConstant,
		zap.String(logFieldRemoteNameConstant, cliRemote.name),
		zap.String(logFieldDirectionConstant, direction.String()),
		zap.Int(logFieldReferenceCountConstant, len(references)),
	)
	return nil
}

// Disconnect forgets the advertisement. ls-remote holds no connection open.
func (cliRemote *Remote) Disconnect() error {
	cliRemote.connected = false
	cliRemote.direction = ""
	cliRemote.references = nil
	return nil
}

// Connected reports whether the last ls-remote succeeded and no disconnect followed.
func (cliRemote *Remote) Connected() bool {
	return cliRemote.connected
}

// References returns the references printed by ls-remote.
func (cliRemote *Remote) References() ([]remote.Reference, error) {
	copied := make([]remote.Reference, len(cliRemote.references))
	copy(copied, cliRemote.references)
	return copied, nil
}

// Free disconnects and rejects further connects.
func (cliRemote *Remote) Free() error {
	cliRemote.freed = true
	return cliRemote.Disconnect()
}

func buildListArguments(remoteURL string, direction remote.Direction) []string {
	arguments := []string{gitLSRemoteSubcommandConstant}
	if direction == remote.DirectionPush {
		arguments = append(arguments, gitReceivePackFlagConstant)
	} else {
		arguments = append(arguments, gitSymbolicReferenceFlagConstant)
	}
	return append(arguments, remoteURL)
}

// ParseAdvertisement parses `git ls-remote` output into references.
// Lines are "<hash>\t<name>" or, with --symref, "ref: <target>\t<name>".
// The first line for a name wins, so a symbolic HEAD hides its resolved hash.
func ParseAdvertisement(output string) ([]remote.Reference, error) {
	references := []remote.Reference{}
	seenNames := map[string]struct{}{}
	for _, line := range strings.Split(output, "\n") {
		trimmedLine := strings.TrimSpace(line)
		if len(trimmedLine) == 0 {
			continue
		}
		target, referenceName, found := strings.Cut(trimmedLine, referenceFieldSeparatorConstant)
		target = strings.TrimSpace(target)
		referenceName = strings.TrimSpace(referenceName)
		if !found || len(target) == 0 || len(referenceName) == 0 {
			return nil, fmt.Errorf(malformedReferenceLineTemplate, line)
		}
		if _, seen := seenNames[referenceName]; seen {
			continue
		}
		seenNames[referenceName] = struct{}{}
		target = strings.TrimPrefix(target, symbolicReferencePrefixConstant)
		references = append(references, remote.Reference{Name: referenceName, Target: target})
	}
	return references, nil
}
