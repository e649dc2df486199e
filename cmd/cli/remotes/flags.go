package remotes

import (
	"github.com/spf13/cobra"

	"github.com/temirov/gitremote/internal/remote"
	flagutils "github.com/temirov/gitremote/internal/utils/flags"
)

const (
	repositoryFlagNameConstant       = "repository"
	repositoryFlagUsageConstant      = "Path to the local repository; an in-memory repository is used when empty."
	nameFlagNameConstant             = "name"
	nameFlagUsageConstant            = "Name for the remote; the engine default (origin) is used when empty."
	engineFlagNameConstant           = "engine"
	engineFlagDescriptionConstant    = "Engine performing the transport work."
	outputFlagNameConstant           = "output"
	outputFlagDescriptionConstant    = "Report format."
	directionFlagNameConstant        = "direction"
	directionFlagDescriptionConstant = "Connection direction."
	connectTimeoutFlagNameConstant   = "connect-timeout"
	connectTimeoutFlagUsageConstant  = "Maximum duration of the connect handshake; zero disables the limit."
	metricsTextfileFlagNameConstant  = "metrics-textfile"
	metricsTextfileFlagUsageConstant = "Write connection metrics in Prometheus text format to this path."
)

func bindRemoteFlags(command *cobra.Command, defaults CommandConfiguration) {
	command.Flags().String(repositoryFlagNameConstant, "", repositoryFlagUsageConstant)
	command.Flags().String(nameFlagNameConstant, "", nameFlagUsageConstant)
	command.Flags().String(engineFlagNameConstant, defaults.Engine, flagutils.FormatChoiceUsage(defaults.Engine, Engines(), engineFlagDescriptionConstant))
	command.Flags().String(outputFlagNameConstant, defaults.Output, flagutils.FormatChoiceUsage(defaults.Output, Outputs(), outputFlagDescriptionConstant))
}

func bindConnectFlags(command *cobra.Command, defaults CommandConfiguration) {
	bindRemoteFlags(command, defaults)
	command.Flags().String(directionFlagNameConstant, defaults.Direction, flagutils.FormatChoiceUsage(defaults.Direction, remote.Directions(), directionFlagDescriptionConstant))
	command.Flags().Duration(connectTimeoutFlagNameConstant, defaults.ConnectTimeout, connectTimeoutFlagUsageConstant)
	command.Flags().String(metricsTextfileFlagNameConstant, "", metricsTextfileFlagUsageConstant)
}

// applyFlagOverrides replaces configuration values with explicitly set flags.
func applyFlagOverrides(command *cobra.Command, configuration CommandConfiguration) CommandConfiguration {
	flagSet := command.Flags()
	overridden := configuration

	for flagName, target := range map[string]*string{
		repositoryFlagNameConstant:      &overridden.RepositoryPath,
		nameFlagNameConstant:            &overridden.RemoteName,
		engineFlagNameConstant:          &overridden.Engine,
		outputFlagNameConstant:          &overridden.Output,
		directionFlagNameConstant:       &overridden.Direction,
		metricsTextfileFlagNameConstant: &overridden.MetricsTextfile,
	} {
		if flagSet.Lookup(flagName) == nil {
			continue
		}
		flagValue, _ := flagSet.GetString(flagName)
		*target = overrideString(*target, flagValue, flagSet.Changed(flagName))
	}

	if flagSet.Lookup(connectTimeoutFlagNameConstant) != nil && flagSet.Changed(connectTimeoutFlagNameConstant) {
		overridden.ConnectTimeout, _ = flagSet.GetDuration(connectTimeoutFlagNameConstant)
	}

	return overridden.sanitize()
}
