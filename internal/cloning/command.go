package cloning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AoNovae/Git-Toolkit/internal/gitlab"
	"github.com/AoNovae/Git-Toolkit/internal/utils"
)

const (
	commandUseConstant                      = "clone"
	commandShortDescriptionConstant         = "Clone a GitLab group's repositories"
	commandLongDescriptionConstant          = "clone lists the projects of a GitLab group and clones them sequentially into the chosen directory, reporting per-repository progress."
	groupFlagNameConstant                   = "group"
	groupFlagDescriptionConstant            = "Name of the GitLab group to clone"
	directoryFlagNameConstant               = "directory"
	directoryFlagDescriptionConstant        = "Existing local directory receiving one subdirectory per repository"
	projectFlagNameConstant                 = "project"
	projectFlagDescriptionConstant          = "Restrict cloning to the named project (repeatable; path or full path)"
	includeSubgroupsFlagNameConstant        = "include-subgroups"
	includeSubgroupsFlagDescriptionConstant = "Also clone projects of subgroups"
	missingGroupNameMessageConstant         = "group name is required; supply --group"
	unknownProjectSelectionTemplateConstant = "no project named %q in group %q"
	emptyGroupMessageTemplateConstant       = "group %q has no projects to clone\n"
	cloneSuccessLineTemplateConstant        = "CLONED (%d/%d): %s\n"
	cloneFailureLineTemplateConstant        = "FAILED (%d/%d): %s (%s)\n"
	cloneFailureDetailTemplateConstant      = "%s: %s"
	batchSummaryLineTemplateConstant        = "Cloned %d of %d repositories into %s\n"
	batchFailuresErrorTemplateConstant      = "%d of %d clones failed"
	projectListerFactoryMissingMessageConst = "project lister factory not configured"
	progressDisplayNameFallbackPathConstant = "unnamed project"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ProjectListerFactory builds a project lister bound to a GitLab instance and token.
type ProjectListerFactory func(remoteURL string, accessToken string) (gitlab.ProjectLister, error)

// TokenPrompter requests an access token interactively when none was configured.
type TokenPrompter interface {
	PromptToken() (string, error)
}

// DefaultProjectListerFactory constructs the REST API backed project lister.
func DefaultProjectListerFactory(remoteURL string, accessToken string) (gitlab.ProjectLister, error) {
	return gitlab.NewService(gitlab.ServiceConfiguration{RemoteURL: remoteURL, AccessToken: accessToken})
}

// CommandBuilder assembles the clone command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ProjectListerFactory         ProjectListerFactory
	GitExecutor                  GitExecutor
	FileSystem                   FileSystem
	TokenPrompter                TokenPrompter
	HumanReadableLoggingProvider func() bool
	ConfigurationProvider        func() CommandConfiguration
}

// Build constructs the clone command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(groupFlagNameConstant, "", groupFlagDescriptionConstant)
	command.Flags().String(directoryFlagNameConstant, "", directoryFlagDescriptionConstant)
	command.Flags().StringArray(projectFlagNameConstant, nil, projectFlagDescriptionConstant)
	command.Flags().Bool(includeSubgroupsFlagNameConstant, false, includeSubgroupsFlagDescriptionConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()

	groupName, groupFlagError := command.Flags().GetString(groupFlagNameConstant)
	if groupFlagError != nil {
		return groupFlagError
	}
	groupName = strings.TrimSpace(groupName)
	if len(groupName) == 0 {
		if command != nil {
			_ = command.Help()
		}
		return errors.New(missingGroupNameMessageConstant)
	}

	baseDirectory, directoryFlagError := command.Flags().GetString(directoryFlagNameConstant)
	if directoryFlagError != nil {
		return directoryFlagError
	}
	if len(strings.TrimSpace(baseDirectory)) == 0 {
		baseDirectory = configuration.Directory
	}

	selectedProjectNames, projectFlagError := command.Flags().GetStringArray(projectFlagNameConstant)
	if projectFlagError != nil {
		return projectFlagError
	}

	includeSubgroups, includeSubgroupsFlagError := command.Flags().GetBool(includeSubgroupsFlagNameConstant)
	if includeSubgroupsFlagError != nil {
		return includeSubgroupsFlagError
	}
	includeSubgroups = includeSubgroups || configuration.IncludeSubgroups

	accessToken := builder.resolveAccessToken(command)

	if builder.ProjectListerFactory == nil {
		return errors.New(projectListerFactoryMissingMessageConst)
	}
	projectLister, listerCreationError := builder.ProjectListerFactory(configuration.RemoteURL, accessToken)
	if listerCreationError != nil {
		return listerCreationError
	}

	groupProjects, listingError := projectLister.ListGroupProjects(command.Context(), gitlab.ListingOptions{
		GroupName:        groupName,
		IncludeSubgroups: includeSubgroups,
	})
	if listingError != nil {
		return listingError
	}

	selectedProjects, selectionError := selectProjects(groupProjects, selectedProjectNames, groupName)
	if selectionError != nil {
		return selectionError
	}
	if len(selectedProjects) == 0 {
		fmt.Fprintf(command.OutOrStdout(), emptyGroupMessageTemplateConstant, groupName)
		return nil
	}

	fileSystem := ResolveFileSystem(builder.FileSystem)
	jobPlanner, plannerCreationError := NewPlanner(fileSystem)
	if plannerCreationError != nil {
		return plannerCreationError
	}
	cloneJobs, planningError := jobPlanner.PlanJobs(selectedProjects, baseDirectory)
	if planningError != nil {
		return planningError
	}

	logger := builder.resolveLogger()
	humanReadableLogging := false
	if builder.HumanReadableLoggingProvider != nil {
		humanReadableLogging = builder.HumanReadableLoggingProvider()
	}
	gitExecutor, executorError := ResolveGitExecutor(builder.GitExecutor, logger, humanReadableLogging)
	if executorError != nil {
		return executorError
	}

	cloneService, serviceCreationError := NewService(Dependencies{GitExecutor: gitExecutor, FileSystem: fileSystem})
	if serviceCreationError != nil {
		return serviceCreationError
	}

	progressWriter := utils.NewFlushingWriter(command.OutOrStdout())
	batchReport, batchError := cloneService.CloneAll(command.Context(), cloneJobs, Options{
		AccessToken: accessToken,
		OnProgress: func(update ProgressUpdate) {
			if update.Outcome.Succeeded {
				fmt.Fprintf(progressWriter, cloneSuccessLineTemplateConstant, update.Index, update.Total, progressDisplayName(update.Job))
				return
			}
			fmt.Fprintf(progressWriter, cloneFailureLineTemplateConstant, update.Index, update.Total, progressDisplayName(update.Job), failureDescription(update.Outcome))
		},
	})
	if batchError != nil {
		return batchError
	}

	fmt.Fprintf(progressWriter, batchSummaryLineTemplateConstant, batchReport.SucceededCount(), len(batchReport), baseDirectory)
	if batchReport.FailedCount() > 0 {
		return fmt.Errorf(batchFailuresErrorTemplateConstant, batchReport.FailedCount(), len(batchReport))
	}
	return nil
}

// resolveAccessToken prefers the token resolved by the root command, then an interactive prompt.
func (builder *CommandBuilder) resolveAccessToken(command *cobra.Command) string {
	contextAccessor := utils.NewCommandContextAccessor()
	if accessToken, accessTokenAvailable := contextAccessor.AccessToken(command.Context()); accessTokenAvailable {
		return accessToken
	}
	if builder.TokenPrompter != nil {
		if promptedToken, promptError := builder.TokenPrompter.PromptToken(); promptError == nil {
			return strings.TrimSpace(promptedToken)
		}
	}
	return ""
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
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

// selectProjects keeps the listing order while honoring an optional subset of project names.
func selectProjects(groupProjects []gitlab.Project, selectedProjectNames []string, groupName string) ([]gitlab.Project, error) {
	if len(selectedProjectNames) == 0 {
		return groupProjects, nil
	}

	remainingSelections := make(map[string]bool, len(selectedProjectNames))
	for _, selectionName := range selectedProjectNames {
		trimmedSelectionName := strings.ToLower(strings.TrimSpace(selectionName))
		if len(trimmedSelectionName) > 0 {
			remainingSelections[trimmedSelectionName] = true
		}
	}

	selectedProjects := make([]gitlab.Project, 0, len(remainingSelections))
	for _, candidateProject := range groupProjects {
		for _, matchableName := range []string{candidateProject.Path, candidateProject.PathWithNamespace, candidateProject.Name} {
			loweredMatchableName := strings.ToLower(matchableName)
			if remainingSelections[loweredMatchableName] {
				selectedProjects = append(selectedProjects, candidateProject)
				delete(remainingSelections, loweredMatchableName)
				break
			}
		}
	}

	for unknownSelection := range remainingSelections {
		return nil, fmt.Errorf(unknownProjectSelectionTemplateConstant, unknownSelection, groupName)
	}
	return selectedProjects, nil
}

func progressDisplayName(job CloneJob) string {
	if len(job.Project.PathWithNamespace) > 0 {
		return job.Project.PathWithNamespace
	}
	if len(job.Project.Path) > 0 {
		return job.Project.Path
	}
	if len(job.Project.Name) > 0 {
		return job.Project.Name
	}
	return progressDisplayNameFallbackPathConstant
}

func failureDescription(outcome Outcome) string {
	if len(outcome.Detail) == 0 {
		return outcome.FailureReason
	}
	return fmt.Sprintf(cloneFailureDetailTemplateConstant, outcome.FailureReason, outcome.Detail)
}
