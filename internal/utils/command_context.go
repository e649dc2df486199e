package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	humanReadableLoggingContextKeyConstant  = commandContextKey("humanReadableLogging")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// WithHumanReadableLogging records whether console event rendering is enabled.
func (accessor CommandContextAccessor) WithHumanReadableLogging(parentContext context.Context, enabled bool) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, humanReadableLoggingContextKeyConstant, enabled)
}

// HumanReadableLogging reports whether console event rendering is enabled; false when unset.
func (accessor CommandContextAccessor) HumanReadableLogging(executionContext context.Context) bool {
	if executionContext == nil {
		return false
	}
	enabled, _ := executionContext.Value(humanReadableLoggingContextKeyConstant).(bool)
	return enabled
}
