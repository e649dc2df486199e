package gogitengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/protocol/packp"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/client"
	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/gitrepo"
	"github.com/temirov/gitremote/internal/remote"
)

const (
	endpointErrorTemplateConstant        = "invalid remote url %s: %w"
	remoteConfigErrorTemplateConstant    = "invalid remote configuration for %s: %w"
	transportErrorTemplateConstant       = "no transport available for %s: %w"
	authenticationErrorTemplateConstant  = "unable to prepare credentials for %s: %w"
	sessionErrorTemplateConstant         = "unable to open %s session to %s: %w"
	advertisementErrorTemplateConstant   = "reference advertisement from %s failed: %w"
	referenceDecodeErrorTemplateConstant = "unable to decode references advertised by %s: %w"
	alreadyConnectedTemplateConstant     = "remote %s is already connected for %s; disconnect before connecting for %s"
	remoteFreedTemplateConstant          = "remote %s has been freed"
	unsupportedDirectionTemplateConstant = "unsupported direction %q"
	sessionOpenedMessageConstant         = "go-git session opened"
	sessionClosedMessageConstant         = "go-git session closed"
	emptyRemoteRepositoryMessageConstant = "remote repository is empty"
	logFieldRemoteNameConstant           = "remote_name"
	logFieldEndpointConstant             = "endpoint"
	logFieldDirectionConstant            = "direction"
	logFieldServiceConstant              = "service"
	logFieldReferenceCountConstant       = "reference_count"
	uploadPackServiceLabelConstant       = "upload-pack"
	receivePackServiceLabelConstant      = "receive-pack"
)

// TransportFactory resolves the go-git transport serving an endpoint.
type TransportFactory func(endpoint *transport.Endpoint) (transport.Transport, error)

// Dependencies captures collaborators required by the engine.
type Dependencies struct {
	Logger           *zap.Logger
	AuthProvider     AuthProvider
	TransportFactory TransportFactory
}

// Engine creates go-git backed remotes.
type Engine struct {
	logger           *zap.Logger
	authProvider     AuthProvider
	transportFactory TransportFactory
}

// NewEngine constructs an Engine. Missing collaborators fall back to go-git's
// protocol registry and anonymous access.
func NewEngine(dependencies Dependencies) *Engine {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authProvider := dependencies.AuthProvider
	if authProvider == nil {
		authProvider = AnonymousAuthProvider{}
	}
	transportFactory := dependencies.TransportFactory
	if transportFactory == nil {
		transportFactory = client.NewClient
	}
	return &Engine{logger: logger, authProvider: authProvider, transportFactory: transportFactory}
}

// NewRemote binds a go-git remote for transportURL to the repository storage.
func (engine *Engine) NewRemote(repository *gitrepo.Repository, transportURL gitrepo.TransportURL, name string) (remote.EngineRemote, error) {
	engineURL := transportURL.EngineURL()
	endpoint, endpointError := transport.NewEndpoint(engineURL)
	if endpointError != nil {
		return nil, fmt.Errorf(endpointErrorTemplateConstant, engineURL, endpointError)
	}

	if len(name) == 0 {
		name = git.DefaultRemoteName
	}
	remoteConfiguration := &config.RemoteConfig{Name: name, URLs: []string{engineURL}}
	if validationError := remoteConfiguration.Validate(); validationError != nil {
		return nil, fmt.Errorf(remoteConfigErrorTemplateConstant, name, validationError)
	}

	return &Remote{
		logger:           engine.logger,
		authProvider:     engine.authProvider,
		transportFactory: engine.transportFactory,
		remote:           git.NewRemote(repository.Storer(), remoteConfiguration),
		endpoint:         endpoint,
	}, nil
}

// Remote is a go-git remote holding at most one open transport session.
type Remote struct {
	logger           *zap.Logger
	authProvider     AuthProvider
	transportFactory TransportFactory
	remote           *git.Remote
	endpoint         *transport.Endpoint
	session          io.Closer
	direction        remote.Direction
	references       []remote.Reference
	freed            bool
}

// Name returns the configured remote name.
func (gitRemote *Remote) Name() string {
	return gitRemote.remote.Config().Name
}

// URL returns the URL handed to go-git.
func (gitRemote *Remote) URL() string {
	return gitRemote.remote.Config().URLs[0]
}

// Connect opens a session for direction and records the advertised references.
func (gitRemote *Remote) Connect(executionContext context.Context, direction remote.Direction) error {
	if gitRemote.freed {
		return fmt.Errorf(remoteFreedTemplateConstant, gitRemote.Name())
	}
	if gitRemote.session != nil {
		if gitRemote.direction == direction {
			return nil
		}
		return fmt.Errorf(alreadyConnectedTemplateConstant, gitRemote.Name(), gitRemote.direction, direction)
	}

	gitTransport, transportError := gitRemote.transportFactory(gitRemote.endpoint)
	if transportError != nil {
		return fmt.Errorf(transportErrorTemplateConstant, gitRemote.endpoint.String(), transportError)
	}

	authMethod, authError := gitRemote.authProvider.AuthMethod(gitRemote.endpoint)
	if authError != nil {
		return fmt.Errorf(authenticationErrorTemplateConstant, gitRemote.endpoint.String(), authError)
	}

	session, serviceLabel, sessionError := openSession(gitTransport, gitRemote.endpoint, authMethod, direction)
	if sessionError != nil {
		return fmt.Errorf(sessionErrorTemplateConstant, serviceLabel, gitRemote.endpoint.String(), sessionError)
	}

	advertisedReferences, advertisementError := session.AdvertisedReferencesContext(executionContext)
	if advertisementError != nil && !errors.Is(advertisementError, transport.ErrEmptyRemoteRepository) {
		_ = session.Close()
		return fmt.Errorf(advertisementErrorTemplateConstant, gitRemote.endpoint.String(), advertisementError)
	}

	references, decodeError := decodeReferences(advertisedReferences)
	if decodeError != nil {
		_ = session.Close()
		return fmt.Errorf(referenceDecodeErrorTemplateConstant, gitRemote.endpoint.String(), decodeError)
	}

	gitRemote.session = session
	gitRemote.direction = direction
	gitRemote.references = references

	fields := []zap.Field{
		zap.String(logFieldRemoteNameConstant, gitRemote.Name()),
		zap.String(logFieldEndpointConstant, gitRemote.endpoint.String()),
		zap.String(logFieldDirectionConstant, direction.String()),
		zap.String(logFieldServiceConstant, serviceLabel),
		zap.Int(logFieldReferenceCountConstant, len(references)),
	}
	if advertisementError != nil {
		gitRemote.logger.Debug(emptyRemoteRepositoryMessageConstant, fields...)
	}
	gitRemote.logger.Debug(sessionOpenedMessageConstant, fields...)

	return nil
}

// Disconnect closes the open session, if any.
func (gitRemote *Remote) Disconnect() error {
	if gitRemote.session == nil {
		return nil
	}
	session := gitRemote.session
	direction := gitRemote.direction

	gitRemote.session = nil
	gitRemote.direction = ""
	gitRemote.references = nil

	closeError := session.Close()
	gitRemote.logger.Debug(
		sessionClosedMessageConstant,
		zap.String(logFieldRemoteNameConstant, gitRemote.Name()),
		zap.String(logFieldDirectionConstant, direction.String()),
		zap.Error(closeError),
	)
	return closeError
}

// Connected reports whether a session is open.
func (gitRemote *Remote) Connected() bool {
	return gitRemote.session != nil
}

// References returns the references advertised when the session opened.
func (gitRemote *Remote) References() ([]remote.Reference, error) {
	copied := make([]remote.Reference, len(gitRemote.references))
	copy(copied, gitRemote.references)
	return copied, nil
}

// Free closes any open session and rejects further connects.
func (gitRemote *Remote) Free() error {
	disconnectError := gitRemote.Disconnect()
	gitRemote.freed = true
	return disconnectError
}

type advertisingSession interface {
	io.Closer
	AdvertisedReferencesContext(executionContext context.Context) (*packp.AdvRefs, error)
}

func openSession(gitTransport transport.Transport, endpoint *transport.Endpoint, authMethod transport.AuthMethod, direction remote.Direction) (advertisingSession, string, error) {
	switch direction {
	case remote.DirectionFetch:
		session, sessionError := gitTransport.NewUploadPackSession(endpoint, authMethod)
		return session, uploadPackServiceLabelConstant, sessionError
	case remote.DirectionPush:
		session, sessionError := gitTransport.NewReceivePackSession(endpoint, authMethod)
		return session, receivePackServiceLabelConstant, sessionError
	default:
		return nil, direction.String(), fmt.Errorf(unsupportedDirectionTemplateConstant, direction)
	}
}

func decodeReferences(advertisedReferences *packp.AdvRefs) ([]remote.Reference, error) {
	if advertisedReferences == nil {
		return nil, nil
	}
	referenceStorage, storageError := advertisedReferences.AllReferences()
	if storageError != nil {
		return nil, storageError
	}

	references := make([]remote.Reference, 0, len(referenceStorage))
	for referenceName, reference := range referenceStorage {
		references = append(references, remote.Reference{Name: referenceName.String(), Target: describeTarget(reference)})
	}
	sort.Slice(references, func(leftIndex int, rightIndex int) bool {
		return references[leftIndex].Name < references[rightIndex].Name
	})
	return references, nil
}

func describeTarget(reference *plumbing.Reference) string {
	if reference.Type() == plumbing.SymbolicReference {
		return reference.Target().String()
	}
	return reference.Hash().String()
}
