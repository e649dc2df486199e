package remotes

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/gitrepo"
	"github.com/temirov/gitremote/internal/utils"
	pathutils "github.com/temirov/gitremote/internal/utils/path"
)

const (
	configurationResolvedMessageConstant = "remote command configuration resolved"
	logFieldConfigurationFileConstant    = "config_file"
	logFieldEngineConstant               = "engine"
	logFieldRepositoryPathConstant       = "repository_path"
)

var repositoryHomeDirectoryExpander = pathutils.NewHomeExpander()

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

func resolveLogger(provider LoggerProvider) *zap.Logger {
	if provider == nil {
		return zap.NewNop()
	}
	logger := provider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// resolveHumanReadableLogging prefers the provider and falls back to the flag
// attached to the command context.
func resolveHumanReadableLogging(provider func() bool, executionContext context.Context) bool {
	if provider != nil {
		return provider()
	}
	if executionContext == nil {
		return false
	}
	return utils.NewCommandContextAccessor().HumanReadableLogging(executionContext)
}

// openRepository opens the repository at repositoryPath, or an in-memory
// repository when no path is configured.
func openRepository(repositoryPath string) (*gitrepo.Repository, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return gitrepo.NewInMemoryRepository()
	}
	absolutePath, resolveError := repositoryHomeDirectoryExpander.ResolveAbsolute(trimmedPath)
	if resolveError != nil {
		return nil, resolveError
	}
	return gitrepo.OpenRepository(absolutePath)
}

func overrideString(current string, flagValue string, flagChanged bool) string {
	if !flagChanged {
		return current
	}
	return flagValue
}

// logResolvedConfiguration records the settings a command runs with and the
// configuration file they were loaded from, when one is attached to the context.
func logResolvedConfiguration(logger *zap.Logger, executionContext context.Context, engineName string, configuration CommandConfiguration) {
	fields := []zap.Field{
		zap.String(logFieldEngineConstant, engineName),
		zap.String(logFieldRepositoryPathConstant, configuration.RepositoryPath),
	}
	if executionContext != nil {
		if configurationFilePath, found := utils.NewCommandContextAccessor().ConfigurationFilePath(executionContext); found && len(configurationFilePath) > 0 {
			fields = append(fields, zap.String(logFieldConfigurationFileConstant, configurationFilePath))
		}
	}
	logger.Debug(configurationResolvedMessageConstant, fields...)
}
