package projects

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AoNovae/Git-Toolkit/internal/gitlab"
	"github.com/AoNovae/Git-Toolkit/internal/utils"
)

const (
	commandUseConstant                      = "projects"
	commandShortDescriptionConstant         = "List the projects of a GitLab group"
	commandLongDescriptionConstant          = "projects resolves a GitLab group by name and prints every project with its identifier, path, and clone URL."
	groupFlagNameConstant                   = "group"
	groupFlagDescriptionConstant            = "Name of the GitLab group to list"
	includeSubgroupsFlagNameConstant        = "include-subgroups"
	includeSubgroupsFlagDescriptionConstant = "Also list projects of subgroups"
	missingGroupNameMessageConstant         = "group name is required; supply --group"
	projectListerFactoryMissingMessageConst = "project lister factory not configured"
	projectLineTemplateConstant             = "%d\t%s\t%s\n"
	emptyGroupMessageTemplateConstant       = "group %q has no projects\n"
)

// ProjectListerFactory builds a project lister bound to a GitLab instance and token.
type ProjectListerFactory func(remoteURL string, accessToken string) (gitlab.ProjectLister, error)

// DefaultProjectListerFactory constructs the REST API backed project lister.
func DefaultProjectListerFactory(remoteURL string, accessToken string) (gitlab.ProjectLister, error) {
	return gitlab.NewService(gitlab.ServiceConfiguration{RemoteURL: remoteURL, AccessToken: accessToken})
}

// CommandBuilder assembles the projects command.
type CommandBuilder struct {
	ProjectListerFactory  ProjectListerFactory
	ConfigurationProvider func() CommandConfiguration
}

// Build constructs the projects command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}

	command.Flags().String(groupFlagNameConstant, "", groupFlagDescriptionConstant)
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

	includeSubgroups, includeSubgroupsFlagError := command.Flags().GetBool(includeSubgroupsFlagNameConstant)
	if includeSubgroupsFlagError != nil {
		return includeSubgroupsFlagError
	}
	includeSubgroups = includeSubgroups || configuration.IncludeSubgroups

	contextAccessor := utils.NewCommandContextAccessor()
	accessToken, _ := contextAccessor.AccessToken(command.Context())

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

	if len(groupProjects) == 0 {
		fmt.Fprintf(command.OutOrStdout(), emptyGroupMessageTemplateConstant, groupName)
		return nil
	}

	outputWriter := utils.NewFlushingWriter(command.OutOrStdout())
	for _, groupProject := range groupProjects {
		fmt.Fprintf(outputWriter, projectLineTemplateConstant, groupProject.ID, groupProject.PathWithNamespace, groupProject.CloneURL)
	}
	return nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}
