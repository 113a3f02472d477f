// Package utils exposes reusable helpers consumed by multiple commands.
//
// It houses the ConfigurationLoader and LoggerFactory abstractions that
// integrate Viper, environment variables, and zap logging for the CLI, the
// CommandContextAccessor used to hand resolved values to subcommands, and the
// interactive TokenPrompter.
package utils
