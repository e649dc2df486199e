package remotes_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"github.com/temirov/gitremote/cmd/cli/remotes"
	"github.com/temirov/gitremote/internal/remote"
	"github.com/temirov/gitremote/internal/utils"
	flagutils "github.com/temirov/gitremote/internal/utils/flags"
)

const (
	connectDirectionFlagConstant       = "--direction"
	connectOutputFlagConstant          = "--output"
	connectNameFlagConstant            = "--name"
	connectEngineFlagConstant          = "--engine"
	connectRepositoryFlagConstant      = "--repository"
	connectTimeoutFlagConstant         = "--connect-timeout"
	connectMetricsTextfileFlagConstant = "--metrics-textfile"
	metricsTextfileNameConstant        = "gitremote.prom"
)

func newConnectCommandBuilder(testInstance *testing.T, builder remotes.ConnectCommandBuilder) *remotes.ConnectCommandBuilder {
	testInstance.Helper()
	if builder.LoggerProvider == nil {
		builder.LoggerProvider = func() *zap.Logger { return zap.NewNop() }
	}
	return &builder
}

func TestConnectCommandReportsAdvertisedReferences(testInstance *testing.T) {
	testCases := []struct {
		name              string
		arguments         []string
		expectedName      string
		expectedDirection string
	}{
		{
			name:              "fetch_with_default_name",
			arguments:         []string{servedRepositoryURLConstant},
			expectedName:      "origin",
			expectedDirection: "fetch",
		},
		{
			name:              "push_with_explicit_name",
			arguments:         []string{connectDirectionFlagConstant, "push", connectNameFlagConstant, "mirror", servedRepositoryURLConstant},
			expectedName:      "mirror",
			expectedDirection: "push",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := newRecordingEngineFactory(testInstance)
			builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: factory.Build})
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeCommand(testInstance, command, append([]string{connectOutputFlagConstant, "yaml"}, testCase.arguments...))
			require.NoError(testInstance, executionError)

			var report remotes.ConnectionReport
			require.NoError(testInstance, yaml.Unmarshal([]byte(output), &report))
			require.Equal(testInstance, testCase.expectedName, report.RemoteName)
			require.Equal(testInstance, servedRepositoryURLConstant, report.RemoteURL)
			require.Equal(testInstance, testCase.expectedDirection, report.Direction)
			require.Equal(testInstance, remotes.EngineGoGit, report.Engine)
			require.Equal(testInstance, "in-memory", report.Repository)
			require.True(testInstance, report.Connected)
			require.NotEmpty(testInstance, report.SessionIdentifier)
			require.Contains(testInstance, report.References, remote.Reference{Name: mainBranchReferenceConstant, Target: mainBranchHashConstant})
			require.Contains(testInstance, report.References, remote.Reference{Name: releaseTagReferenceConstant, Target: releaseTagHashConstant})
		})
	}
}

func TestConnectCommandWritesTextReport(testInstance *testing.T) {
	factory := newRecordingEngineFactory(testInstance)
	builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: factory.Build})
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{servedRepositoryURLConstant})
	require.NoError(testInstance, executionError)

	require.Contains(testInstance, output, "remote:\torigin\n")
	require.Contains(testInstance, output, "url:\t"+servedRepositoryURLConstant+"\n")
	require.Contains(testInstance, output, "direction:\tfetch\n")
	require.Contains(testInstance, output, "connected:\ttrue\n")
	require.Contains(testInstance, output, mainBranchHashConstant+"\t"+mainBranchReferenceConstant+"\n")
	require.Contains(testInstance, output, releaseTagHashConstant+"\t"+releaseTagReferenceConstant+"\n")
}

func TestConnectCommandConfigurationPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name              string
		configuration     remotes.CommandConfiguration
		arguments         []string
		expectedDirection string
		expectedName      string
		expectedAuth      remotes.AuthConfiguration
	}{
		{
			name: "configuration_selects_push",
			configuration: remotes.CommandConfiguration{
				Direction:  "push",
				RemoteName: "upstream",
				Auth:       remotes.AuthConfiguration{Username: "builder", Token: "secret"},
			},
			arguments:         []string{servedRepositoryURLConstant},
			expectedDirection: "push",
			expectedName:      "upstream",
			expectedAuth:      remotes.AuthConfiguration{Username: "builder", Token: "secret"},
		},
		{
			name: "flags_override_configuration",
			configuration: remotes.CommandConfiguration{
				Direction:  "push",
				RemoteName: "upstream",
			},
			arguments:         []string{connectDirectionFlagConstant, "fetch", connectNameFlagConstant, "mirror", servedRepositoryURLConstant},
			expectedDirection: "fetch",
			expectedName:      "mirror",
		},
		{
			name: "blank_configuration_uses_defaults",
			configuration: remotes.CommandConfiguration{
				Engine:    "  ",
				Direction: " ",
				Output:    "",
			},
			arguments:         []string{servedRepositoryURLConstant},
			expectedDirection: "fetch",
			expectedName:      "origin",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := newRecordingEngineFactory(testInstance)
			builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{
				EngineFactory: factory.Build,
				ConfigurationProvider: func() remotes.CommandConfiguration {
					return testCase.configuration
				},
			})
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeCommand(testInstance, command, testCase.arguments)
			require.NoError(testInstance, executionError)
			require.Contains(testInstance, output, "direction:\t"+testCase.expectedDirection+"\n")
			require.Contains(testInstance, output, "remote:\t"+testCase.expectedName+"\n")

			require.Len(testInstance, factory.requests, 1)
			require.Equal(testInstance, remotes.EngineGoGit, factory.requests[0].EngineName)
			require.Equal(testInstance, testCase.expectedAuth, factory.requests[0].Auth)
		})
	}
}

func TestConnectCommandRejectsInvalidSettings(testInstance *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		expectedKind  error
		expectedError string
	}{
		{
			name:          "unknown_direction",
			arguments:     []string{connectDirectionFlagConstant, "sideways", servedRepositoryURLConstant},
			expectedKind:  remote.ErrInvalidArgument,
			expectedError: "invalid remote direction \"sideways\"",
		},
		{
			name:          "unknown_engine",
			arguments:     []string{connectEngineFlagConstant, "libgit2", servedRepositoryURLConstant},
			expectedError: "invalid value \"libgit2\" for engine",
		},
		{
			name:          "unknown_output",
			arguments:     []string{connectOutputFlagConstant, "json", servedRepositoryURLConstant},
			expectedError: "invalid value \"json\" for output",
		},
		{
			name:          "unsupported_transport",
			arguments:     []string{"ftp://example.com/repo.git"},
			expectedKind:  remote.ErrUnsupportedTransport,
			expectedError: "ftp://example.com/repo.git",
		},
		{
			name:          "configured_remote_name",
			arguments:     []string{"origin"},
			expectedKind:  remote.ErrNotImplemented,
			expectedError: "origin",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			factory := newRecordingEngineFactory(testInstance)
			builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: factory.Build})
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeCommand(testInstance, command, testCase.arguments)
			require.Error(testInstance, executionError)
			require.Contains(testInstance, executionError.Error(), testCase.expectedError)
			if testCase.expectedKind != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedKind)
			}
			require.Empty(testInstance, output)
		})
	}
}

func TestConnectCommandRejectsInvalidChoiceWithTypedError(testInstance *testing.T) {
	builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: newRecordingEngineFactory(testInstance).Build})
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{connectEngineFlagConstant, "libgit2", servedRepositoryURLConstant})

	var choiceError flagutils.InvalidChoiceError
	require.True(testInstance, errors.As(executionError, &choiceError))
	require.Equal(testInstance, remotes.Engines(), choiceError.Choices)
}

func TestConnectCommandWritesMetricsTextfile(testInstance *testing.T) {
	testCases := []struct {
		name             string
		remoteURL        string
		expectError      bool
		expectedSnippets []string
	}{
		{
			name:      "successful_connection",
			remoteURL: servedRepositoryURLConstant,
			expectedSnippets: []string{
				`gitremote_connect_attempts_total{direction="fetch"} 1`,
				`gitremote_connect_failures_total{direction="fetch"} 0`,
				`gitremote_disconnects_total{direction="fetch"} 1`,
				`gitremote_open_connections{direction="fetch"} 0`,
			},
		},
		{
			name:        "failed_connection",
			remoteURL:   missingRepositoryURLConstant,
			expectError: true,
			expectedSnippets: []string{
				`gitremote_connect_attempts_total{direction="fetch"} 1`,
				`gitremote_connect_failures_total{direction="fetch"} 1`,
				`gitremote_disconnects_total{direction="fetch"} 0`,
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			textfilePath := filepath.Join(testInstance.TempDir(), metricsTextfileNameConstant)
			builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: newRecordingEngineFactory(testInstance).Build})
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			_, executionError := executeCommand(testInstance, command, []string{connectMetricsTextfileFlagConstant, textfilePath, testCase.remoteURL})
			if testCase.expectError {
				require.Error(testInstance, executionError)
				require.ErrorIs(testInstance, executionError, remote.ErrEngine)
			} else {
				require.NoError(testInstance, executionError)
			}

			textfileContent, readError := os.ReadFile(textfilePath)
			require.NoError(testInstance, readError)
			for _, snippet := range testCase.expectedSnippets {
				require.Contains(testInstance, string(textfileContent), snippet)
			}
		})
	}
}

func TestConnectCommandOpensRepositoryFromPath(testInstance *testing.T) {
	repositoryDirectory := testInstance.TempDir()
	_, initError := git.PlainInit(repositoryDirectory, false)
	require.NoError(testInstance, initError)

	builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: newRecordingEngineFactory(testInstance).Build})
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeCommand(testInstance, command, []string{connectRepositoryFlagConstant, repositoryDirectory, servedRepositoryURLConstant})
	require.NoError(testInstance, executionError)
	require.Contains(testInstance, output, "repository:\t"+repositoryDirectory+"\n")
}

func TestConnectCommandFailsForMissingRepositoryPath(testInstance *testing.T) {
	missingDirectory := filepath.Join(testInstance.TempDir(), "absent")

	builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: newRecordingEngineFactory(testInstance).Build})
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{connectRepositoryFlagConstant, missingDirectory, servedRepositoryURLConstant})
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), "unable to open repository")
}

func TestConnectCommandHonorsTimeout(testInstance *testing.T) {
	builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: newRecordingEngineFactory(testInstance).Build})
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{connectTimeoutFlagConstant, time.Minute.String(), servedRepositoryURLConstant})
	require.NoError(testInstance, executionError)
}

func TestConnectCommandHumanReadableLogging(testInstance *testing.T) {
	observedCore, observedLogs := observer.New(zapcore.InfoLevel)
	factory := newRecordingEngineFactory(testInstance)
	builder := remotes.ConnectCommandBuilder{
		LoggerProvider:               func() *zap.Logger { return zap.New(observedCore) },
		HumanReadableLoggingProvider: func() bool { return true },
		EngineFactory:                factory.Build,
	}
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{servedRepositoryURLConstant})
	require.NoError(testInstance, executionError)

	require.Len(testInstance, factory.requests, 1)
	require.NotNil(testInstance, factory.requests[0].CommandObserver)

	messages := make([]string, 0, observedLogs.Len())
	for _, entry := range observedLogs.All() {
		messages = append(messages, entry.Message)
	}
	require.Contains(testInstance, messages, "Connected origin ("+servedRepositoryURLConstant+") for fetch")
	require.Contains(testInstance, messages, "Disconnected origin ("+servedRepositoryURLConstant+") after fetch")
}

func TestConnectCommandLogsConfigurationSource(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		configurationFilePath string
		expectConfigFileField bool
	}{
		{name: "with_configuration_file", configurationFilePath: "/etc/gitremote/config.yaml", expectConfigFileField: true},
		{name: "without_configuration_file"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.DebugLevel)
			builder := remotes.ConnectCommandBuilder{
				LoggerProvider: func() *zap.Logger { return zap.New(observedCore) },
				EngineFactory:  newRecordingEngineFactory(testInstance).Build,
			}
			command, buildError := builder.Build()
			require.NoError(testInstance, buildError)

			executionContext := context.Background()
			if len(testCase.configurationFilePath) > 0 {
				executionContext = utils.NewCommandContextAccessor().WithConfigurationFilePath(executionContext, testCase.configurationFilePath)
			}
			_, executionError := executeCommandWithContext(testInstance, executionContext, command, []string{servedRepositoryURLConstant})
			require.NoError(testInstance, executionError)

			resolvedEntries := observedLogs.FilterMessage("remote command configuration resolved").All()
			require.Len(testInstance, resolvedEntries, 1)
			contextMap := resolvedEntries[0].ContextMap()
			require.Equal(testInstance, remotes.EngineGoGit, contextMap["engine"])
			configurationFile, hasConfigurationFile := contextMap["config_file"]
			require.Equal(testInstance, testCase.expectConfigFileField, hasConfigurationFile)
			if testCase.expectConfigFileField {
				require.Equal(testInstance, testCase.configurationFilePath, configurationFile)
			}
		})
	}
}

func TestConnectCommandRequiresURL(testInstance *testing.T) {
	builder := newConnectCommandBuilder(testInstance, remotes.ConnectCommandBuilder{EngineFactory: newRecordingEngineFactory(testInstance).Build})
	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeCommand(testInstance, command, []string{})
	require.Error(testInstance, executionError)
}
