package remotes

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/gitremote/internal/remote"
	flagutils "github.com/temirov/gitremote/internal/utils/flags"
)

const (
	inspectUseConstant              = "inspect <url>"
	inspectShortDescriptionConstant = "Show the remote a URL resolves to without connecting"
	inspectLongDescriptionConstant  = "inspect validates <url>, creates a remote for it, and reports its name and normalized URL without opening a connection."
)

// InspectCommandBuilder assembles the inspect command.
type InspectCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	EngineFactory         EngineFactory
}

// Build constructs the inspect command.
func (builder *InspectCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   inspectUseConstant,
		Short: inspectShortDescriptionConstant,
		Long:  inspectLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	bindRemoteFlags(command, DefaultCommandConfiguration())

	return command, nil
}

func (builder *InspectCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := applyFlagOverrides(command, builder.resolveConfiguration())

	engineName, engineNameError := flagutils.ParseChoice(engineFlagNameConstant, configuration.Engine, Engines())
	if engineNameError != nil {
		return engineNameError
	}
	outputFormat, outputError := flagutils.ParseChoice(outputFlagNameConstant, configuration.Output, Outputs())
	if outputError != nil {
		return outputError
	}

	logger := resolveLogger(builder.LoggerProvider)
	logResolvedConfiguration(logger, command.Context(), engineName, configuration)

	engine, engineError := resolveEngineFactory(builder.EngineFactory)(command.Context(), EngineRequest{
		EngineName: engineName,
		Auth:       configuration.Auth,
		Logger:     logger,
	})
	if engineError != nil {
		return fmt.Errorf(engineErrorTemplateConstant, engineName, engineError)
	}

	repository, repositoryError := openRepository(configuration.RepositoryPath)
	if repositoryError != nil {
		return fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryError)
	}
	defer closeRepository(logger, repository)

	handle, handleError := remote.NewHandle(remote.Dependencies{Engine: engine, Logger: logger}, repository, arguments[0], configuration.RemoteName)
	if handleError != nil {
		return handleError
	}
	defer closeHandle(logger, handle)

	return writeReport(command.OutOrStdout(), outputFormat, ConnectionReport{
		RemoteName: handle.Name(),
		RemoteURL:  handle.URL(),
		Repository: repository.Label(),
		Engine:     engineName,
		Connected:  handle.Connected(),
	})
}

func (builder *InspectCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.sanitize()
}
