package cloning

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/AoNovae/Git-Toolkit/internal/gitlab"
	"github.com/AoNovae/Git-Toolkit/internal/utils/pathutils"
)

const (
	baseDirectoryRequiredMessageConstant      = "clone base directory must be provided"
	baseDirectoryMissingTemplateConstant      = "clone base directory %s does not exist: %w"
	baseDirectoryNotDirectoryTemplateConstant = "clone base directory %s is not a directory"
	baseDirectoryNotWritableTemplateConstant  = "clone base directory %s is not writable: %w"
	writabilityProbeNamePatternConstant       = ".gitlab-cloner-probe-*"
	gitRepositorySuffixConstant               = ".git"
	cloneURLPathSeparatorConstant             = "/"
)

// ErrBaseDirectoryRequired indicates job planning was requested without a base directory.
var ErrBaseDirectoryRequired = errors.New(baseDirectoryRequiredMessageConstant)

// Planner derives clone jobs from listed projects and a local base directory.
type Planner struct {
	fileSystem   FileSystem
	homeExpander *pathutils.HomeExpander
}

// NewPlanner constructs a Planner validating its filesystem collaborator.
func NewPlanner(fileSystem FileSystem) (*Planner, error) {
	if fileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Planner{fileSystem: fileSystem, homeExpander: pathutils.NewHomeExpander()}, nil
}

// PlanJobs validates the base directory and assigns one destination per project.
func (planner *Planner) PlanJobs(projects []gitlab.Project, baseDirectory string) ([]CloneJob, error) {
	trimmedBaseDirectory := strings.TrimSpace(baseDirectory)
	if len(trimmedBaseDirectory) == 0 {
		return nil, ErrBaseDirectoryRequired
	}

	expandedBaseDirectory := planner.homeExpander.Expand(trimmedBaseDirectory)

	baseDirectoryInfo, statError := planner.fileSystem.Stat(expandedBaseDirectory)
	if statError != nil {
		return nil, fmt.Errorf(baseDirectoryMissingTemplateConstant, expandedBaseDirectory, statError)
	}
	if !baseDirectoryInfo.IsDir() {
		return nil, fmt.Errorf(baseDirectoryNotDirectoryTemplateConstant, expandedBaseDirectory)
	}

	if writabilityError := planner.probeWritability(expandedBaseDirectory); writabilityError != nil {
		return nil, fmt.Errorf(baseDirectoryNotWritableTemplateConstant, expandedBaseDirectory, writabilityError)
	}

	plannedJobs := make([]CloneJob, 0, len(projects))
	for _, project := range projects {
		plannedJobs = append(plannedJobs, CloneJob{
			Project:         project,
			DestinationPath: filepath.Join(expandedBaseDirectory, destinationDirectoryName(project)),
		})
	}
	return plannedJobs, nil
}

func (planner *Planner) probeWritability(directory string) error {
	probePath, probeError := planner.fileSystem.CreateTemporary(directory, writabilityProbeNamePatternConstant)
	if len(probePath) > 0 {
		_ = planner.fileSystem.Remove(probePath)
	}
	return probeError
}

// destinationDirectoryName picks the directory git itself would create for the project.
func destinationDirectoryName(project gitlab.Project) string {
	if len(project.Path) > 0 {
		return project.Path
	}
	if len(project.CloneURL) > 0 {
		urlSegments := strings.Split(project.CloneURL, cloneURLPathSeparatorConstant)
		lastSegment := urlSegments[len(urlSegments)-1]
		trimmedSegment := strings.TrimSuffix(lastSegment, gitRepositorySuffixConstant)
		if len(trimmedSegment) > 0 {
			return trimmedSegment
		}
	}
	return project.Name
}
