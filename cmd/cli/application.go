package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/AoNovae/Git-Toolkit/internal/cloning"
	"github.com/AoNovae/Git-Toolkit/internal/projects"
	"github.com/AoNovae/Git-Toolkit/internal/tui"
	"github.com/AoNovae/Git-Toolkit/internal/utils"
)

const (
	applicationNameConstant                 = "gitlab-cloner"
	applicationShortDescriptionConstant     = "Command-line interface for cloning GitLab groups"
	applicationLongDescriptionConstant      = "gitlab-cloner lists the projects of a GitLab group and clones them into a local directory, either in one batch or through an interactive terminal flow."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	accessTokenFlagNameConstant             = "token"
	accessTokenFlagUsageConstant            = "GitLab personal access token (falls back to GITLAB_TOKEN, then configuration)."
	remoteURLFlagNameConstant               = "remote"
	remoteURLFlagUsageConstant              = "Override the configured GitLab base URL."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	commonAccessTokenConfigKeyConstant      = commonConfigurationKeyConstant + ".access_token"
	environmentPrefixConstant               = "GLCLONER"
	accessTokenEnvironmentNameConstant      = "GITLAB_TOKEN"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	loggerNotInitializedMessageConstant     = "logger not initialized"
	rootCommandInfoMessageConstant          = "gitlab-cloner CLI executed"
	rootCommandDebugMessageConstant         = "gitlab-cloner CLI diagnostics"
	logFieldCommandNameConstant             = "command_name"
	logFieldArgumentCountConstant           = "argument_count"
	logFieldArgumentsConstant               = "arguments"
	defaultConfigurationSearchPathConstant  = "."
	toolsConfigurationKeyConstant           = "tools"
	cloneConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".clone"
	cloneRemoteURLConfigKeyConstant         = cloneConfigurationKeyConstant + ".remote_url"
	cloneDirectoryConfigKeyConstant         = cloneConfigurationKeyConstant + ".directory"
	cloneIncludeSubgroupsConfigKeyConstant  = cloneConfigurationKeyConstant + ".include_subgroups"
	projectsConfigurationKeyConstant        = toolsConfigurationKeyConstant + ".projects"
	projectsRemoteURLConfigKeyConstant      = projectsConfigurationKeyConstant + ".remote_url"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging and authentication configuration shared across commands.
type ApplicationCommonConfiguration struct {
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	AccessToken string `mapstructure:"access_token"`
}

// ApplicationToolsConfiguration holds configuration for CLI subcommands grouped by tool family.
type ApplicationToolsConfiguration struct {
	Clone    cloning.CommandConfiguration  `mapstructure:"clone"`
	Projects projects.CommandConfiguration `mapstructure:"projects"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	accessTokenFlagValue   string
	remoteURLFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)
	embeddedConfiguration, _ := EmbeddedDefaultConfiguration()
	configurationLoader.SetEmbeddedConfiguration(embeddedConfiguration)

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runRootCommand(command, arguments)
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.accessTokenFlagValue, accessTokenFlagNameConstant, "", accessTokenFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.remoteURLFlagValue, remoteURLFlagNameConstant, "", remoteURLFlagUsageConstant)

	projectsBuilder := projects.CommandBuilder{
		ProjectListerFactory: projects.DefaultProjectListerFactory,
		ConfigurationProvider: func() projects.CommandConfiguration {
			return application.configuration.Tools.Projects
		},
	}
	projectsCommand, projectsBuildError := projectsBuilder.Build()
	if projectsBuildError == nil {
		cobraCommand.AddCommand(projectsCommand)
	}

	cloneBuilder := cloning.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ProjectListerFactory:         cloning.DefaultProjectListerFactory,
		TokenPrompter:                utils.NewTokenPrompter(),
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		ConfigurationProvider: func() cloning.CommandConfiguration {
			return application.configuration.Tools.Clone
		},
	}
	cloneCommand, cloneBuildError := cloneBuilder.Build()
	if cloneBuildError == nil {
		cobraCommand.AddCommand(cloneCommand)
	}

	interactiveBuilder := tui.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ProjectListerFactory: tui.ProjectListerFactory(cloning.DefaultProjectListerFactory),
		ConfigurationProvider: func() cloning.CommandConfiguration {
			return application.configuration.Tools.Clone
		},
	}
	interactiveCommand, interactiveBuildError := interactiveBuilder.Build()
	if interactiveBuildError == nil {
		cobraCommand.AddCommand(interactiveCommand)
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:        string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant:       string(utils.LogFormatStructured),
		commonAccessTokenConfigKeyConstant:     "",
		cloneRemoteURLConfigKeyConstant:        cloning.DefaultCommandConfiguration().RemoteURL,
		cloneDirectoryConfigKeyConstant:        "",
		cloneIncludeSubgroupsConfigKeyConstant: false,
		projectsRemoteURLConfigKeyConstant:     projects.DefaultCommandConfiguration().RemoteURL,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	if application.persistentFlagChanged(command, remoteURLFlagNameConstant) {
		application.configuration.Tools.Clone.RemoteURL = application.remoteURLFlagValue
		application.configuration.Tools.Projects.RemoteURL = application.remoteURLFlagValue
	}

	createdLogger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = createdLogger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithConfigurationFilePath(
			command.Context(),
			application.configurationMetadata.ConfigFileUsed,
		)
		if resolvedAccessToken := application.resolveAccessToken(); len(resolvedAccessToken) > 0 {
			updatedContext = application.commandContextAccessor.WithAccessToken(updatedContext, resolvedAccessToken)
		}
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

// resolveAccessToken applies the flag, environment, configuration precedence.
func (application *Application) resolveAccessToken() string {
	if flagToken := strings.TrimSpace(application.accessTokenFlagValue); len(flagToken) > 0 {
		return flagToken
	}
	if environmentToken := strings.TrimSpace(os.Getenv(accessTokenEnvironmentNameConstant)); len(environmentToken) > 0 {
		return environmentToken
	}
	return strings.TrimSpace(application.configuration.Common.AccessToken)
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) runRootCommand(command *cobra.Command, arguments []string) error {
	if application.logger == nil {
		return errors.New(loggerNotInitializedMessageConstant)
	}

	application.logger.Info(
		rootCommandInfoMessageConstant,
		zap.String(logFieldCommandNameConstant, command.Name()),
		zap.Int(logFieldArgumentCountConstant, len(arguments)),
	)

	application.logger.Debug(
		rootCommandDebugMessageConstant,
		zap.Strings(logFieldArgumentsConstant, arguments),
	)

	if len(arguments) == 0 {
		return command.Help()
	}

	return nil
}

func (application *Application) flushLogger() error {
	return application.syncLoggerInstance(application.logger)
}

func (application *Application) syncLoggerInstance(logger *zap.Logger) error {
	if logger == nil {
		return nil
	}

	syncError := logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
