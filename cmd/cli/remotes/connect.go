package remotes

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/execshell"
	"github.com/temirov/gitremote/internal/gitrepo"
	"github.com/temirov/gitremote/internal/remote"
	"github.com/temirov/gitremote/internal/telemetry"
	"github.com/temirov/gitremote/internal/ui"
	flagutils "github.com/temirov/gitremote/internal/utils/flags"
)

const (
	connectUseConstant                   = "connect <url>"
	connectShortDescriptionConstant      = "Connect to a remote and list the references it advertises"
	connectLongDescriptionConstant       = "connect opens a fetch or push connection to the remote at <url>, lists the advertised references, and disconnects."
	repositoryOpenErrorTemplateConstant  = "unable to open repository: %w"
	metricsErrorTemplateConstant         = "unable to initialize connection metrics: %w"
	engineErrorTemplateConstant          = "unable to initialize %s engine: %w"
	handleCloseFailedMessageConstant     = "remote handle close reported an error"
	repositoryCloseFailedMessageConstant = "repository close reported an error"
	metricsWrittenMessageConstant        = "connection metrics written"
	logFieldMetricsTextfileConstant      = "metrics_textfile"
)

// ConnectCommandBuilder assembles the connect command.
type ConnectCommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConsoleLoggerProvider        LoggerProvider
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
	EngineFactory                EngineFactory
}

// Build constructs the connect command.
func (builder *ConnectCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   connectUseConstant,
		Short: connectShortDescriptionConstant,
		Long:  connectLongDescriptionConstant,
		Args:  cobra.ExactArgs(1),
		RunE:  builder.run,
	}

	bindConnectFlags(command, DefaultCommandConfiguration())

	return command, nil
}

func (builder *ConnectCommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := applyFlagOverrides(command, builder.resolveConfiguration())

	direction, directionError := remote.ParseDirection(configuration.Direction)
	if directionError != nil {
		return directionError
	}
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
	humanReadableLogging := resolveHumanReadableLogging(builder.HumanReadableLoggingProvider, command.Context())

	connectionMetrics, metricsError := telemetry.NewConnectionMetrics()
	if metricsError != nil {
		return fmt.Errorf(metricsErrorTemplateConstant, metricsError)
	}

	observers := []remote.LifecycleObserver{connectionMetrics}
	var commandObserver execshell.CommandEventObserver
	if humanReadableLogging {
		consoleLogger := logger
		if builder.ConsoleLoggerProvider != nil {
			consoleLogger = resolveLogger(builder.ConsoleLoggerProvider)
		}
		observers = append(observers, ui.NewConsoleConnectionEventLogger(consoleLogger))
		commandObserver = ui.NewConsoleCommandEventLogger(consoleLogger)
	}

	engine, engineError := resolveEngineFactory(builder.EngineFactory)(command.Context(), EngineRequest{
		EngineName:      engineName,
		Auth:            configuration.Auth,
		Logger:          logger,
		CommandObserver: commandObserver,
	})
	if engineError != nil {
		return fmt.Errorf(engineErrorTemplateConstant, engineName, engineError)
	}

	repository, repositoryError := openRepository(configuration.RepositoryPath)
	if repositoryError != nil {
		return fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryError)
	}
	defer closeRepository(logger, repository)

	handle, handleError := remote.NewHandle(
		remote.Dependencies{Engine: engine, Logger: logger, Observer: remote.CombineObservers(observers...)},
		repository,
		arguments[0],
		configuration.RemoteName,
	)
	if handleError != nil {
		return handleError
	}
	defer closeHandle(logger, handle)

	report := ConnectionReport{
		RemoteName: handle.Name(),
		RemoteURL:  handle.URL(),
		Repository: repository.Label(),
		Engine:     engineName,
		Direction:  direction.String(),
	}

	connectContext, cancelConnect := connectionContext(command.Context(), configuration.ConnectTimeout)
	defer cancelConnect()

	connectError := handle.ConnectScoped(connectContext, direction, func(_ context.Context, connectedHandle *remote.Handle) error {
		references, referencesError := connectedHandle.References()
		if referencesError != nil {
			return referencesError
		}
		report.Connected = connectedHandle.Connected()
		report.SessionIdentifier = connectedHandle.SessionIdentifier()
		report.References = references
		return nil
	})

	if len(configuration.MetricsTextfile) > 0 {
		if textfileError := connectionMetrics.WriteTextfile(configuration.MetricsTextfile); textfileError != nil {
			return textfileError
		}
		logger.Debug(metricsWrittenMessageConstant, zap.String(logFieldMetricsTextfileConstant, configuration.MetricsTextfile))
	}

	if connectError != nil {
		return connectError
	}

	return writeReport(command.OutOrStdout(), outputFormat, report)
}

func (builder *ConnectCommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.sanitize()
}

func connectionContext(parentContext context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parentContext == nil {
		parentContext = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(parentContext)
	}
	return context.WithTimeout(parentContext, timeout)
}

func closeHandle(logger *zap.Logger, handle *remote.Handle) {
	if closeError := handle.Close(); closeError != nil {
		logger.Warn(handleCloseFailedMessageConstant, zap.Error(closeError))
	}
}

func closeRepository(logger *zap.Logger, repository *gitrepo.Repository) {
	if closeError := repository.Close(); closeError != nil {
		logger.Warn(repositoryCloseFailedMessageConstant, zap.Error(closeError))
	}
}
