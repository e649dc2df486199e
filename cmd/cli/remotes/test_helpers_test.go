package remotes_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/server"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/gitremote/cmd/cli/remotes"
	"github.com/temirov/gitremote/internal/gogitengine"
	"github.com/temirov/gitremote/internal/remote"
)

const (
	servedRepositoryURLConstant  = "file:///srv/git/served.git"
	missingRepositoryURLConstant = "file:///srv/git/missing.git"
	mainBranchHashConstant       = "6ecf0ef2c2dffb796033e5a02219af86ec6584e5"
	releaseTagHashConstant       = "b8e471f58bcbca63b07bda20e428190409c2db47"
	mainBranchReferenceConstant  = "refs/heads/main"
	releaseTagReferenceConstant  = "refs/tags/v1.0.0"
)

type recordingEngineFactory struct {
	testInstance *testing.T
	requests     []remotes.EngineRequest
}

func newRecordingEngineFactory(testInstance *testing.T) *recordingEngineFactory {
	return &recordingEngineFactory{testInstance: testInstance}
}

func (factory *recordingEngineFactory) Build(_ context.Context, request remotes.EngineRequest) (remote.Engine, error) {
	factory.requests = append(factory.requests, request)
	return gogitengine.NewEngine(gogitengine.Dependencies{
		Logger:           request.Logger,
		TransportFactory: newServedTransportFactory(factory.testInstance),
	}), nil
}

func newServedTransportFactory(testInstance *testing.T) gogitengine.TransportFactory {
	testInstance.Helper()

	servedStorage := memory.NewStorage()
	require.NoError(testInstance, servedStorage.SetReference(plumbing.NewHashReference(mainBranchReferenceConstant, plumbing.NewHash(mainBranchHashConstant))))
	require.NoError(testInstance, servedStorage.SetReference(plumbing.NewHashReference(releaseTagReferenceConstant, plumbing.NewHash(releaseTagHashConstant))))
	require.NoError(testInstance, servedStorage.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, mainBranchReferenceConstant)))

	servedEndpoint, endpointError := transport.NewEndpoint(servedRepositoryURLConstant)
	require.NoError(testInstance, endpointError)

	inProcessServer := server.NewServer(server.MapLoader{servedEndpoint.String(): servedStorage})
	return func(*transport.Endpoint) (transport.Transport, error) {
		return inProcessServer, nil
	}
}

func executeCommand(testInstance *testing.T, command *cobra.Command, arguments []string) (string, error) {
	testInstance.Helper()
	return executeCommandWithContext(testInstance, context.Background(), command, arguments)
}

func executeCommandWithContext(testInstance *testing.T, executionContext context.Context, command *cobra.Command, arguments []string) (string, error) {
	testInstance.Helper()

	command.SetContext(executionContext)
	stdoutBuffer := &bytes.Buffer{}
	stderrBuffer := &bytes.Buffer{}
	command.SetOut(stdoutBuffer)
	command.SetErr(stderrBuffer)
	command.SetArgs(arguments)
	command.SilenceUsage = true
	command.SilenceErrors = true

	executionError := command.Execute()
	return stdoutBuffer.String(), executionError
}
