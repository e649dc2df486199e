package remotes

import (
	"strings"
	"time"
)

const (
	configurationEngineKeyConstant          = "engine"
	configurationDirectionKeyConstant       = "direction"
	configurationRepositoryKeyConstant      = "repository"
	configurationNameKeyConstant            = "name"
	configurationConnectTimeoutKeyConstant  = "connect_timeout"
	configurationOutputKeyConstant          = "output"
	configurationMetricsTextfileKeyConstant = "metrics_textfile"
	configurationAuthUsernameKeyConstant    = "auth.username"
	configurationAuthTokenKeyConstant       = "auth.token"
	configurationAuthSSHAgentKeyConstant    = "auth.ssh_agent"
	configurationKeySeparatorConstant       = "."
	defaultConnectTimeoutConstant           = 30 * time.Second
)

// Engine names accepted by the engine setting.
const (
	EngineGoGit  = "go-git"
	EngineGitCLI = "git-cli"
)

// Output formats accepted by the output setting.
const (
	OutputText = "text"
	OutputYAML = "yaml"
)

// Engines lists the supported engine names.
func Engines() []string {
	return []string{EngineGoGit, EngineGitCLI}
}

// Outputs lists the supported report formats.
func Outputs() []string {
	return []string{OutputText, OutputYAML}
}

// CommandConfiguration describes configuration values for the remote commands.
type CommandConfiguration struct {
	Engine          string            `mapstructure:"engine"`
	Direction       string            `mapstructure:"direction"`
	RepositoryPath  string            `mapstructure:"repository"`
	RemoteName      string            `mapstructure:"name"`
	ConnectTimeout  time.Duration     `mapstructure:"connect_timeout"`
	Output          string            `mapstructure:"output"`
	MetricsTextfile string            `mapstructure:"metrics_textfile"`
	Auth            AuthConfiguration `mapstructure:"auth"`
}

// AuthConfiguration describes credentials offered to the go-git engine.
type AuthConfiguration struct {
	Username string `mapstructure:"username"`
	Token    string `mapstructure:"token"`
	SSHAgent bool   `mapstructure:"ssh_agent"`
}

// DefaultCommandConfiguration returns baseline configuration values for the remote commands.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		Engine:         EngineGoGit,
		Direction:      "fetch",
		ConnectTimeout: defaultConnectTimeoutConstant,
		Output:         OutputText,
	}
}

// DefaultConfigurationValues produces Viper defaults for the remote commands under rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultCommandConfiguration()
	prefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		prefix + configurationEngineKeyConstant:          defaults.Engine,
		prefix + configurationDirectionKeyConstant:       defaults.Direction,
		prefix + configurationRepositoryKeyConstant:      defaults.RepositoryPath,
		prefix + configurationNameKeyConstant:            defaults.RemoteName,
		prefix + configurationConnectTimeoutKeyConstant:  defaults.ConnectTimeout.String(),
		prefix + configurationOutputKeyConstant:          defaults.Output,
		prefix + configurationMetricsTextfileKeyConstant: defaults.MetricsTextfile,
		prefix + configurationAuthUsernameKeyConstant:    defaults.Auth.Username,
		prefix + configurationAuthTokenKeyConstant:       defaults.Auth.Token,
		prefix + configurationAuthSSHAgentKeyConstant:    defaults.Auth.SSHAgent,
	}
}

// sanitize trims values and restores defaults for empty settings.
func (configuration CommandConfiguration) sanitize() CommandConfiguration {
	defaults := DefaultCommandConfiguration()
	sanitized := configuration
	sanitized.Engine = strings.TrimSpace(configuration.Engine)
	if len(sanitized.Engine) == 0 {
		sanitized.Engine = defaults.Engine
	}
	sanitized.Direction = strings.TrimSpace(configuration.Direction)
	if len(sanitized.Direction) == 0 {
		sanitized.Direction = defaults.Direction
	}
	sanitized.Output = strings.TrimSpace(configuration.Output)
	if len(sanitized.Output) == 0 {
		sanitized.Output = defaults.Output
	}
	sanitized.RepositoryPath = strings.TrimSpace(configuration.RepositoryPath)
	sanitized.RemoteName = strings.TrimSpace(configuration.RemoteName)
	sanitized.MetricsTextfile = strings.TrimSpace(configuration.MetricsTextfile)
	if sanitized.ConnectTimeout < 0 {
		sanitized.ConnectTimeout = 0
	}
	return sanitized
}
