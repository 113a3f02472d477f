package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AoNovae/Git-Toolkit/internal/cloning"
	"github.com/AoNovae/Git-Toolkit/internal/utils"
)

const (
	commandUseConstant              = "tui"
	commandShortDescriptionConstant = "Clone a GitLab group interactively"
	commandLongDescriptionConstant  = "tui walks through token and group entry, project selection, and sequential cloning with a live progress display."
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ProgramRunner executes a bubbletea program; tests substitute recordings.
type ProgramRunner func(model tea.Model) (tea.Model, error)

// DefaultProgramRunner runs the model in the attached terminal.
func DefaultProgramRunner(model tea.Model) (tea.Model, error) {
	return tea.NewProgram(model).Run()
}

// CommandBuilder assembles the interactive clone command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ProjectListerFactory  ProjectListerFactory
	GitExecutor           cloning.GitExecutor
	FileSystem            cloning.FileSystem
	ProgramRunner         ProgramRunner
	ConfigurationProvider func() cloning.CommandConfiguration
}

// Build constructs the tui command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	logger := builder.resolveLogger()
	gitExecutor, executorError := cloning.ResolveGitExecutor(builder.GitExecutor, logger, false)
	if executorError != nil {
		return executorError
	}

	contextAccessor := utils.NewCommandContextAccessor()
	accessToken, _ := contextAccessor.AccessToken(command.Context())

	flowModel, modelCreationError := NewModel(
		Dependencies{
			ProjectListerFactory: builder.ProjectListerFactory,
			GitExecutor:          gitExecutor,
			FileSystem:           cloning.ResolveFileSystem(builder.FileSystem),
		},
		Defaults{
			RemoteURL:   configuration.RemoteURL,
			AccessToken: accessToken,
			Directory:   configuration.Directory,
		},
	)
	if modelCreationError != nil {
		return modelCreationError
	}

	programRunner := builder.ProgramRunner
	if programRunner == nil {
		programRunner = DefaultProgramRunner
	}
	_, programError := programRunner(flowModel)
	return programError
}

func (builder *CommandBuilder) resolveConfiguration() cloning.CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return cloning.DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}
