package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/gitrepo"
)

const (
	createOperationConstant              = "create remote"
	connectOperationConstant             = "connect remote"
	scopedConnectOperationConstant       = "scoped connect remote"
	referencesOperationConstant          = "list remote references"
	repositoryMissingMessageConstant     = "a live repository is required"
	repositoryClosedTemplateConstant     = "repository %s is not live"
	urlMissingMessageConstant            = "remote url is required"
	engineMissingMessageConstant         = "remote engine not configured"
	unsupportedTransportTemplateConstant = "%q does not match any supported transport"
	namedRemoteLookupTemplateConstant    = "looking up configured remote %q from repository configuration is not implemented"
	handleClosedTemplateConstant         = "remote %s has been closed"
	notConnectedTemplateConstant         = "remote %s is not connected"
	scopedWorkMissingMessageConstant     = "scoped connection requires a unit of work"
	remoteCreatedMessageConstant         = "remote created"
	remoteConnectedMessageConstant       = "remote connected"
	remoteConnectFailedMessageConstant   = "remote connect failed"
	remoteDisconnectedMessageConstant    = "remote disconnected"
	remoteTeardownFailedMessageConstant  = "remote teardown reported an error"
	remoteFreeFailedMessageConstant      = "remote release reported an error"
	remoteClosedMessageConstant          = "remote closed"
	logFieldRemoteNameConstant           = "remote_name"
	logFieldRemoteURLConstant            = "remote_url"
	logFieldEngineURLConstant            = "engine_url"
	logFieldDirectionConstant            = "direction"
	logFieldSessionIdentifierConstant    = "session_id"
	logFieldRepositoryConstant           = "repository"
	logFieldPreviousDirectionConstant    = "previous_direction"
)

// Dependencies captures collaborators required by remote handles.
type Dependencies struct {
	Engine   Engine
	Logger   *zap.Logger
	Observer LifecycleObserver
	// SessionIdentifierGenerator produces session identifiers; defaults to random UUIDs.
	SessionIdentifierGenerator func() string
}

// Handle tracks the connection lifecycle of a remote bound to a repository.
//
// A Handle is Disconnected after creation and Connected(direction) between a
// successful Connect and the next Disconnect or Close. It is not safe for
// concurrent use; callers sharing a handle across goroutines must serialize
// access themselves.
type Handle struct {
	logger                     *zap.Logger
	observer                   LifecycleObserver
	sessionIdentifierGenerator func() string
	repository                 *gitrepo.Repository
	releaseRepository          func() error
	engineRemote               EngineRemote
	transportURL               gitrepo.TransportURL
	name                       string
	connected                  bool
	direction                  Direction
	sessionIdentifier          string
	closed                     bool
}

// NewHandle validates remoteURL and asks the engine for a remote bound to repository.
//
// An empty remoteName leaves naming to the engine. The handle retains the
// repository until Close.
func NewHandle(dependencies Dependencies, repository *gitrepo.Repository, remoteURL string, remoteName string) (*Handle, error) {
	if repository == nil {
		return nil, newOperationError(ErrInvalidArgument, createOperationConstant, repositoryMissingMessageConstant, nil)
	}
	if !repository.Live() {
		return nil, newOperationError(ErrInvalidArgument, createOperationConstant, fmt.Sprintf(repositoryClosedTemplateConstant, repository.Label()), gitrepo.ErrRepositoryClosed)
	}
	if len(strings.TrimSpace(remoteURL)) == 0 {
		return nil, newOperationError(ErrInvalidArgument, createOperationConstant, urlMissingMessageConstant, nil)
	}
	if dependencies.Engine == nil {
		return nil, newOperationError(ErrInvalidArgument, createOperationConstant, engineMissingMessageConstant, nil)
	}

	transportURL, classificationError := classifyRemoteLocation(remoteURL)
	if classificationError != nil {
		return nil, classificationError
	}

	releaseRepository, retainError := repository.Retain()
	if retainError != nil {
		return nil, newOperationError(ErrInvalidArgument, createOperationConstant, fmt.Sprintf(repositoryClosedTemplateConstant, repository.Label()), retainError)
	}

	engineRemote, engineError := dependencies.Engine.NewRemote(repository, transportURL, strings.TrimSpace(remoteName))
	if engineError != nil {
		_ = releaseRepository()
		return nil, newEngineError(createOperationConstant, engineError)
	}

	handle := &Handle{
		logger:                     resolveLogger(dependencies.Logger),
		observer:                   resolveObserver(dependencies.Observer),
		sessionIdentifierGenerator: resolveSessionIdentifierGenerator(dependencies.SessionIdentifierGenerator),
		repository:                 repository,
		releaseRepository:          releaseRepository,
		engineRemote:               engineRemote,
		transportURL:               transportURL,
		name:                       engineRemote.Name(),
	}

	handle.logger.Debug(
		remoteCreatedMessageConstant,
		zap.String(logFieldRemoteNameConstant, handle.name),
		zap.String(logFieldRemoteURLConstant, transportURL.String()),
		zap.String(logFieldEngineURLConstant, engineRemote.URL()),
		zap.String(logFieldRepositoryConstant, repository.Label()),
	)

	return handle, nil
}

func classifyRemoteLocation(remoteURL string) (gitrepo.TransportURL, error) {
	transportURL, parseError := gitrepo.ParseTransportURL(remoteURL)
	if parseError == nil {
		return transportURL, nil
	}

	trimmedLocation := strings.TrimSpace(remoteURL)
	var unsupportedSchemeError gitrepo.UnsupportedSchemeError
	if errors.As(parseError, &unsupportedSchemeError) {
		return gitrepo.TransportURL{}, newOperationError(ErrUnsupportedTransport, createOperationConstant, fmt.Sprintf(unsupportedTransportTemplateConstant, trimmedLocation), parseError)
	}
	if gitrepo.LooksLikeRemoteName(trimmedLocation) {
		return gitrepo.TransportURL{}, newOperationError(ErrNotImplemented, createOperationConstant, fmt.Sprintf(namedRemoteLookupTemplateConstant, trimmedLocation), parseError)
	}
	return gitrepo.TransportURL{}, newOperationError(ErrUnsupportedTransport, createOperationConstant, fmt.Sprintf(unsupportedTransportTemplateConstant, trimmedLocation), parseError)
}

// Connect opens a connection in the given direction.
//
// Invalid directions fail with ErrInvalidArgument without reaching the engine.
// A connect on an already connected handle is passed to the engine, which
// decides whether to accept it. On engine failure the state is unchanged.
func (handle *Handle) Connect(executionContext context.Context, direction Direction) error {
	if handle.closed {
		return handle.closedError(connectOperationConstant)
	}
	if validationError := direction.validate(connectOperationConstant); validationError != nil {
		return validationError
	}
	if executionContext == nil {
		executionContext = context.Background()
	}

	connectError := handle.engineRemote.Connect(executionContext, direction)
	if connectError != nil {
		handle.logger.Warn(
			remoteConnectFailedMessageConstant,
			zap.String(logFieldRemoteNameConstant, handle.name),
			zap.String(logFieldRemoteURLConstant, handle.transportURL.String()),
			zap.String(logFieldDirectionConstant, direction.String()),
			zap.Error(connectError),
		)
		handle.observer.ConnectionFailed(handle.eventFor(direction, ""), connectError)
		return newEngineError(connectOperationConstant, connectError)
	}

	if handle.connected && handle.direction == direction {
		return nil
	}

	if handle.connected {
		previousDirection := handle.direction
		handle.observer.ConnectionClosed(handle.currentEvent())
		handle.logger.Info(
			remoteDisconnectedMessageConstant,
			zap.String(logFieldRemoteNameConstant, handle.name),
			zap.String(logFieldPreviousDirectionConstant, previousDirection.String()),
			zap.String(logFieldSessionIdentifierConstant, handle.sessionIdentifier),
		)
	}

	handle.connected = true
	handle.direction = direction
	handle.sessionIdentifier = handle.sessionIdentifierGenerator()

	handle.logger.Info(
		remoteConnectedMessageConstant,
		zap.String(logFieldRemoteNameConstant, handle.name),
		zap.String(logFieldRemoteURLConstant, handle.transportURL.String()),
		zap.String(logFieldDirectionConstant, direction.String()),
		zap.String(logFieldSessionIdentifierConstant, handle.sessionIdentifier),
	)
	handle.observer.ConnectionOpened(handle.currentEvent())

	return nil
}

// ConnectScoped connects, runs work, and disconnects exactly once afterwards.
//
// The disconnect runs on every exit path, including a panic raised by work,
// which is re-raised after the disconnect. The error returned by work is
// returned unchanged.
func (handle *Handle) ConnectScoped(executionContext context.Context, direction Direction, work func(context.Context, *Handle) error) error {
	if work == nil {
		return newOperationError(ErrInvalidArgument, scopedConnectOperationConstant, scopedWorkMissingMessageConstant, nil)
	}
	if executionContext == nil {
		executionContext = context.Background()
	}
	if connectError := handle.Connect(executionContext, direction); connectError != nil {
		return connectError
	}
	defer handle.Disconnect()

	return work(executionContext, handle)
}

// Disconnect tears down the connection and leaves the handle Disconnected.
//
// It is always safe to call. Teardown errors reported by the engine are
// logged and dropped.
func (handle *Handle) Disconnect() {
	if handle.closed {
		return
	}
	handle.disconnect()
}

func (handle *Handle) disconnect() {
	if teardownError := handle.engineRemote.Disconnect(); teardownError != nil {
		handle.logger.Warn(
			remoteTeardownFailedMessageConstant,
			zap.String(logFieldRemoteNameConstant, handle.name),
			zap.String(logFieldSessionIdentifierConstant, handle.sessionIdentifier),
			zap.Error(teardownError),
		)
	}

	if handle.connected {
		handle.logger.Info(
			remoteDisconnectedMessageConstant,
			zap.String(logFieldRemoteNameConstant, handle.name),
			zap.String(logFieldDirectionConstant, handle.direction.String()),
			zap.String(logFieldSessionIdentifierConstant, handle.sessionIdentifier),
		)
		handle.observer.ConnectionClosed(handle.currentEvent())
	}

	handle.connected = false
	handle.direction = ""
	handle.sessionIdentifier = ""
}

// Name returns the engine-assigned or caller-specified remote name.
func (handle *Handle) Name() string {
	return handle.name
}

// URL returns the remote URL as supplied at creation.
func (handle *Handle) URL() string {
	return handle.transportURL.String()
}

// Connected reports whether the handle is Connected in any direction and the
// engine remote still holds the connection.
func (handle *Handle) Connected() bool {
	return handle.connected && handle.engineRemote.Connected()
}

// Direction returns the direction of the open connection.
func (handle *Handle) Direction() (Direction, bool) {
	return handle.direction, handle.Connected()
}

// SessionIdentifier identifies the open connection; empty while disconnected.
func (handle *Handle) SessionIdentifier() string {
	return handle.sessionIdentifier
}

// References returns the references advertised during the open connection.
func (handle *Handle) References() ([]Reference, error) {
	if handle.closed {
		return nil, handle.closedError(referencesOperationConstant)
	}
	if !handle.connected {
		return nil, newOperationError(ErrInvalidArgument, referencesOperationConstant, fmt.Sprintf(notConnectedTemplateConstant, handle.name), nil)
	}
	references, referencesError := handle.engineRemote.References()
	if referencesError != nil {
		return nil, newEngineError(referencesOperationConstant, referencesError)
	}
	return references, nil
}

// Close disconnects an open connection, frees the engine remote and releases the repository.
// Close is idempotent.
func (handle *Handle) Close() error {
	if handle.closed {
		return nil
	}

	if handle.connected {
		handle.disconnect()
	}

	if freeError := handle.engineRemote.Free(); freeError != nil {
		handle.logger.Warn(remoteFreeFailedMessageConstant, zap.String(logFieldRemoteNameConstant, handle.name), zap.Error(freeError))
	}

	handle.closed = true
	releaseError := handle.releaseRepository()

	handle.logger.Debug(
		remoteClosedMessageConstant,
		zap.String(logFieldRemoteNameConstant, handle.name),
		zap.String(logFieldRepositoryConstant, handle.repository.Label()),
	)

	return releaseError
}

func (handle *Handle) closedError(operation string) error {
	return newOperationError(ErrInvalidArgument, operation, fmt.Sprintf(handleClosedTemplateConstant, handle.name), nil)
}

func (handle *Handle) currentEvent() ConnectionEvent {
	return handle.eventFor(handle.direction, handle.sessionIdentifier)
}

func (handle *Handle) eventFor(direction Direction, sessionIdentifier string) ConnectionEvent {
	return ConnectionEvent{
		RemoteName:        handle.name,
		RemoteURL:         handle.transportURL.String(),
		Direction:         direction,
		SessionIdentifier: sessionIdentifier,
	}
}

func resolveLogger(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func resolveObserver(observer LifecycleObserver) LifecycleObserver {
	if observer == nil {
		return noopLifecycleObserver{}
	}
	return observer
}

func resolveSessionIdentifierGenerator(generator func() string) func() string {
	if generator == nil {
		return uuid.NewString
	}
	return generator
}
