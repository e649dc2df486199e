package remote_test

import (
	"context"
	"errors"

	"github.com/temirov/gitremote/internal/gitrepo"
	"github.com/temirov/gitremote/internal/remote"
)

const (
	fakeDefaultRemoteNameConstant = "origin"
)

type fakeEngine struct {
	creationError  error
	connectError   error
	teardownError  error
	references     []remote.Reference
	createdRemotes []*fakeEngineRemote
}

func (engine *fakeEngine) NewRemote(_ *gitrepo.Repository, transportURL gitrepo.TransportURL, name string) (remote.EngineRemote, error) {
	if engine.creationError != nil {
		return nil, engine.creationError
	}
	if len(name) == 0 {
		name = fakeDefaultRemoteNameConstant
	}
	createdRemote := &fakeEngineRemote{
		name:          name,
		url:           transportURL.EngineURL(),
		connectError:  engine.connectError,
		teardownError: engine.teardownError,
		references:    engine.references,
	}
	engine.createdRemotes = append(engine.createdRemotes, createdRemote)
	return createdRemote, nil
}

type fakeEngineRemote struct {
	name            string
	url             string
	connectError    error
	teardownError   error
	references      []remote.Reference
	connected       bool
	direction       remote.Direction
	connectCalls    []remote.Direction
	disconnectCalls int
	freeCalls       int
	rejectSwitching bool
}

func (engineRemote *fakeEngineRemote) Name() string {
	return engineRemote.name
}

func (engineRemote *fakeEngineRemote) URL() string {
	return engineRemote.url
}

func (engineRemote *fakeEngineRemote) Connect(_ context.Context, direction remote.Direction) error {
	engineRemote.connectCalls = append(engineRemote.connectCalls, direction)
	if engineRemote.connectError != nil {
		return engineRemote.connectError
	}
	if engineRemote.connected && engineRemote.rejectSwitching && engineRemote.direction != direction {
		return errors.New("remote is already connected for " + engineRemote.direction.String())
	}
	engineRemote.connected = true
	engineRemote.direction = direction
	return nil
}

func (engineRemote *fakeEngineRemote) Disconnect() error {
	engineRemote.disconnectCalls++
	engineRemote.connected = false
	return engineRemote.teardownError
}

func (engineRemote *fakeEngineRemote) Connected() bool {
	return engineRemote.connected
}

func (engineRemote *fakeEngineRemote) References() ([]remote.Reference, error) {
	return engineRemote.references, nil
}

func (engineRemote *fakeEngineRemote) Free() error {
	engineRemote.freeCalls++
	engineRemote.connected = false
	return nil
}

type recordingLifecycleObserver struct {
	opened []remote.ConnectionEvent
	failed []remote.ConnectionEvent
	closed []remote.ConnectionEvent
}

func (observer *recordingLifecycleObserver) ConnectionOpened(event remote.ConnectionEvent) {
	observer.opened = append(observer.opened, event)
}

func (observer *recordingLifecycleObserver) ConnectionFailed(event remote.ConnectionEvent, _ error) {
	observer.failed = append(observer.failed, event)
}

func (observer *recordingLifecycleObserver) ConnectionClosed(event remote.ConnectionEvent) {
	observer.closed = append(observer.closed, event)
}
