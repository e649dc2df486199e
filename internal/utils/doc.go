// Package utils exposes the configuration loader, logger factory and command
// context helpers shared by the gitremote commands.
//
// ConfigurationLoader layers embedded defaults, an optional configuration
// file, GITREMOTE_ environment variables and explicitly set flags through
// Viper. LoggerFactory builds the zap loggers used for diagnostics and console
// event rendering.
package utils
