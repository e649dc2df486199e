package gitcliengine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/execshell"
	"github.com/temirov/gitremote/internal/gitcliengine"
	"github.com/temirov/gitremote/internal/gitrepo"
	"github.com/temirov/gitremote/internal/remote"
)

const (
	testRemoteURLConstant     = "ssh://git@example.com/team/project.git"
	testMainHashConstant      = "6ecf0ef2c2dffb796033e5a02219af86ec6584e5"
	testAdvertisementConstant = "ref: refs/heads/main\tHEAD\n" + testMainHashConstant + "\tHEAD\n" + testMainHashConstant + "\trefs/heads/main\n"
	testRepositoryFailureText = "fatal: Could not read from remote repository."
)

type recordingCommandRunner struct {
	executionResult  execshell.ExecutionResult
	executionError   error
	recordedCommands []execshell.ShellCommand
}

func (runner *recordingCommandRunner) Run(_ context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	return runner.executionResult, runner.executionError
}

func newEngine(testInstance *testing.T, runner *recordingCommandRunner) *gitcliengine.Engine {
	testInstance.Helper()
	executor, executorError := execshell.NewShellExecutor(zap.NewNop(), runner)
	require.NoError(testInstance, executorError)
	engine, engineError := gitcliengine.NewEngine(gitcliengine.Dependencies{Executor: executor})
	require.NoError(testInstance, engineError)
	return engine
}

func newRemote(testInstance *testing.T, engine *gitcliengine.Engine, repository *gitrepo.Repository, name string) remote.EngineRemote {
	testInstance.Helper()
	transportURL, parseError := gitrepo.ParseTransportURL(testRemoteURLConstant)
	require.NoError(testInstance, parseError)
	engineRemote, creationError := engine.NewRemote(repository, transportURL, name)
	require.NoError(testInstance, creationError)
	return engineRemote
}

func newInMemoryRepository(testInstance *testing.T) *gitrepo.Repository {
	testInstance.Helper()
	repository, repositoryError := gitrepo.NewInMemoryRepository()
	require.NoError(testInstance, repositoryError)
	return repository
}

func TestNewEngineRequiresExecutor(testInstance *testing.T) {
	engine, engineError := gitcliengine.NewEngine(gitcliengine.Dependencies{})
	require.Nil(testInstance, engine)
	require.ErrorIs(testInstance, engineError, gitcliengine.ErrExecutorNotConfigured)
}

func TestConnectRunsLsRemoteForDirection(testInstance *testing.T) {
	testCases := []struct {
		name              string
		direction         remote.Direction
		expectedArguments []string
	}{
		{
			name:              "fetch",
			direction:         remote.DirectionFetch,
			expectedArguments: []string{"ls-remote", "--symref", testRemoteURLConstant},
		},
		{
			name:              "push",
			direction:         remote.DirectionPush,
			expectedArguments: []string{"ls-remote", "--upload-pack=git-receive-pack", testRemoteURLConstant},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: testAdvertisementConstant}}
			repositoryDirectory := testInstance.TempDir()
			_, initError := git.PlainInit(repositoryDirectory, false)
			require.NoError(testInstance, initError)
			repository, openError := gitrepo.OpenRepository(repositoryDirectory)
			require.NoError(testInstance, openError)
			engineRemote := newRemote(testInstance, newEngine(testInstance, runner), repository, "")

			require.NoError(testInstance, engineRemote.Connect(context.Background(), testCase.direction))
			require.True(testInstance, engineRemote.Connected())
			require.Equal(testInstance, "origin", engineRemote.Name())

			require.Len(testInstance, runner.recordedCommands, 1)
			recordedCommand := runner.recordedCommands[0]
			require.Equal(testInstance, execshell.CommandGit, recordedCommand.Name)
			require.Equal(testInstance, testCase.expectedArguments, recordedCommand.Details.Arguments)
			require.Equal(testInstance, repositoryDirectory, recordedCommand.Details.WorkingDirectory)

			references, referencesError := engineRemote.References()
			require.NoError(testInstance, referencesError)
			require.Equal(testInstance, []remote.Reference{
				{Name: "HEAD", Target: "refs/heads/main"},
				{Name: "refs/heads/main", Target: testMainHashConstant},
			}, references)
		})
	}
}

func TestConnectFailurePreservesGitDiagnostics(testInstance *testing.T) {
	runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{ExitCode: 128, StandardError: testRepositoryFailureText + "\n"}}
	engineRemote := newRemote(testInstance, newEngine(testInstance, runner), newInMemoryRepository(testInstance), "")

	connectError := engineRemote.Connect(context.Background(), remote.DirectionFetch)
	require.Error(testInstance, connectError)
	require.Contains(testInstance, connectError.Error(), testRepositoryFailureText)

	var failedError execshell.CommandFailedError
	require.ErrorAs(testInstance, connectError, &failedError)
	require.Equal(testInstance, 128, failedError.Result.ExitCode)
	require.False(testInstance, engineRemote.Connected())
}

func TestConnectReportsMissingExecutable(testInstance *testing.T) {
	missingExecutable := errors.New("exec: \"git\": executable file not found in $PATH")
	runner := &recordingCommandRunner{executionError: missingExecutable}
	engineRemote := newRemote(testInstance, newEngine(testInstance, runner), newInMemoryRepository(testInstance), "")

	connectError := engineRemote.Connect(context.Background(), remote.DirectionPush)
	require.ErrorIs(testInstance, connectError, missingExecutable)
	require.False(testInstance, engineRemote.Connected())
}

func TestReconnectPolicyAndFree(testInstance *testing.T) {
	runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: testAdvertisementConstant}}
	engineRemote := newRemote(testInstance, newEngine(testInstance, runner), newInMemoryRepository(testInstance), "mirror")
	require.Equal(testInstance, "mirror", engineRemote.Name())

	require.NoError(testInstance, engineRemote.Connect(context.Background(), remote.DirectionFetch))
	require.NoError(testInstance, engineRemote.Connect(context.Background(), remote.DirectionFetch))
	require.Len(testInstance, runner.recordedCommands, 1)

	switchError := engineRemote.Connect(context.Background(), remote.DirectionPush)
	require.Error(testInstance, switchError)
	require.Contains(testInstance, switchError.Error(), "already connected for fetch")

	require.NoError(testInstance, engineRemote.Disconnect())
	require.False(testInstance, engineRemote.Connected())
	references, _ := engineRemote.References()
	require.Empty(testInstance, references)

	require.NoError(testInstance, engineRemote.Free())
	freedError := engineRemote.Connect(context.Background(), remote.DirectionFetch)
	require.Error(testInstance, freedError)
	require.Contains(testInstance, freedError.Error(), "has been freed")
}

func TestCheckAvailability(testInstance *testing.T) {
	testCases := []struct {
		name        string
		runner      *recordingCommandRunner
		expectError bool
	}{
		{name: "available", runner: &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: "git version 2.45.0\n"}}},
		{name: "missing", runner: &recordingCommandRunner{executionError: errors.New("not found")}, expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			availabilityError := newEngine(testInstance, testCase.runner).CheckAvailability(context.Background())
			require.Equal(testInstance, []string{"version"}, testCase.runner.recordedCommands[0].Details.Arguments)
			if testCase.expectError {
				require.ErrorContains(testInstance, availabilityError, "git executable unavailable")
				return
			}
			require.NoError(testInstance, availabilityError)
		})
	}
}

func TestParseAdvertisement(testInstance *testing.T) {
	testCases := []struct {
		name               string
		output             string
		expectedReferences []remote.Reference
		expectError        bool
	}{
		{
			name:               "empty_repository",
			output:             "",
			expectedReferences: []remote.Reference{},
		},
		{
			name:   "tags_and_branches",
			output: testMainHashConstant + "\trefs/heads/main\n" + testMainHashConstant + "\trefs/tags/v1.0.0\n",
			expectedReferences: []remote.Reference{
				{Name: "refs/heads/main", Target: testMainHashConstant},
				{Name: "refs/tags/v1.0.0", Target: testMainHashConstant},
			},
		},
		{
			name:        "malformed_line",
			output:      "not an advertisement\n",
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			references, parseError := gitcliengine.ParseAdvertisement(testCase.output)
			if testCase.expectError {
				require.Error(testInstance, parseError)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedReferences, references)
		})
	}
}

func TestHandleOverGitCLIEngine(testInstance *testing.T) {
	runner := &recordingCommandRunner{executionResult: execshell.ExecutionResult{StandardOutput: testAdvertisementConstant}}
	repository := newInMemoryRepository(testInstance)
	handle, creationError := remote.NewHandle(remote.Dependencies{Engine: newEngine(testInstance, runner)}, repository, testRemoteURLConstant, "")
	require.NoError(testInstance, creationError)

	scopedError := handle.ConnectScoped(context.Background(), remote.DirectionPush, func(context.Context, *remote.Handle) error {
		return nil
	})
	require.NoError(testInstance, scopedError)
	require.False(testInstance, handle.Connected())
	require.NoError(testInstance, handle.Close())
}
