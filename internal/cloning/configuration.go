package cloning

import "strings"

const (
	defaultRemoteURLConstant = "https://gitlab.com"
)

// CommandConfiguration carries the configurable defaults of the clone command.
type CommandConfiguration struct {
	RemoteURL        string `mapstructure:"remote_url"`
	Directory        string `mapstructure:"directory"`
	IncludeSubgroups bool   `mapstructure:"include_subgroups"`
}

// DefaultCommandConfiguration returns the baseline clone command configuration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{RemoteURL: defaultRemoteURLConstant}
}

// Sanitize normalizes configured values and restores defaults for blank entries.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitizedConfiguration := configuration
	sanitizedConfiguration.RemoteURL = strings.TrimSpace(configuration.RemoteURL)
	if len(sanitizedConfiguration.RemoteURL) == 0 {
		sanitizedConfiguration.RemoteURL = defaultRemoteURLConstant
	}
	sanitizedConfiguration.Directory = strings.TrimSpace(configuration.Directory)
	return sanitizedConfiguration
}
