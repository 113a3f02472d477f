package cloning

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AoNovae/Git-Toolkit/internal/execshell"
)

const (
	gitExecutorMissingMessageConstant           = "git executor not configured"
	fileSystemMissingMessageConstant            = "filesystem not configured"
	cloneBatchCancelledMessageConstant          = "clone batch cancelled"
	cloneBatchCancelledTemplateConstant         = "%w after %d of %d jobs"
	gitCloneSubcommandConstant                  = "clone"
	gitConfigurationFlagConstant                = "-c"
	credentialHelperResetConfigurationConstant  = "credential.helper="
	credentialHelperScriptConfigurationConstant = `credential.helper=!f() { echo "username=oauth2"; echo "password=${GITLAB_CLONER_TOKEN}"; }; f`
	cloneTokenEnvironmentNameConstant           = "GITLAB_CLONER_TOKEN"
	gitTerminalPromptEnvironmentNameConstant    = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptEnvironmentDisableConstant = "0"
	destinationNotDirectoryDetailConstant       = "destination path exists and is not a directory"
	destinationNotEmptyDetailConstant           = "destination directory exists and is not empty"
	destinationUnreadableDetailTemplateConstant = "destination directory could not be inspected: %v"
)

// networkFailureMarkers identifies git stderr fragments produced by unreachable remotes.
var networkFailureMarkers = []string{
	"could not resolve host",
	"unable to access",
	"connection timed out",
	"connection refused",
	"operation timed out",
}

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrFileSystemNotConfigured indicates the filesystem dependency was missing.
var ErrFileSystemNotConfigured = errors.New(fileSystemMissingMessageConstant)

// ErrCloneBatchCancelled indicates the batch stopped between jobs because its context ended.
var ErrCloneBatchCancelled = errors.New(cloneBatchCancelledMessageConstant)

// GitExecutor abstracts git invocation for the cloning service.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Dependencies enumerates external collaborators required for cloning operations.
type Dependencies struct {
	GitExecutor GitExecutor
	FileSystem  FileSystem
}

// Options configures a clone batch.
type Options struct {
	AccessToken string
	OnProgress  ProgressFunc
}

// Service clones batches of repositories sequentially through git.
type Service struct {
	gitExecutor GitExecutor
	fileSystem  FileSystem
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.FileSystem == nil {
		return nil, ErrFileSystemNotConfigured
	}
	return &Service{gitExecutor: dependencies.GitExecutor, fileSystem: dependencies.FileSystem}, nil
}

// CloneAll clones every job strictly in order, reporting each outcome exactly once.
//
// A failed job never aborts the remainder of the batch. Cancellation is honored
// between jobs only; the returned report always covers the jobs that ran.
func (service *Service) CloneAll(executionContext context.Context, jobs []CloneJob, options Options) (BatchReport, error) {
	batchReport := make(BatchReport, 0, len(jobs))
	totalJobs := len(jobs)

	for jobIndex, cloneJob := range jobs {
		if executionContext != nil && executionContext.Err() != nil {
			return batchReport, fmt.Errorf(cloneBatchCancelledTemplateConstant, ErrCloneBatchCancelled, jobIndex, totalJobs)
		}

		jobOutcome := service.CloneOne(executionContext, cloneJob, options.AccessToken)
		batchReport = append(batchReport, JobOutcome{Job: cloneJob, Outcome: jobOutcome})

		if options.OnProgress != nil {
			options.OnProgress(ProgressUpdate{Index: jobIndex + 1, Total: totalJobs, Job: cloneJob, Outcome: jobOutcome})
		}
	}

	return batchReport, nil
}

// CloneOne validates the destination and clones a single repository.
func (service *Service) CloneOne(executionContext context.Context, job CloneJob, accessToken string) Outcome {
	if destinationOccupied, occupationDetail := service.destinationOccupied(job.DestinationPath); destinationOccupied {
		return FailureOutcome(FailureReasonDestinationExists, occupationDetail)
	}

	// A clone already in flight is never interrupted; cancellation applies between jobs.
	cloneContext := context.WithoutCancel(normalizedContext(executionContext))

	_, executionError := service.gitExecutor.ExecuteGit(cloneContext, service.buildCloneCommand(job, accessToken))
	if executionError == nil {
		return SuccessOutcome()
	}

	commandFailure := execshell.CommandFailedError{}
	if errors.As(executionError, &commandFailure) {
		trimmedStandardError := strings.TrimSpace(commandFailure.Result.StandardError)
		if standardErrorIndicatesNetworkFailure(trimmedStandardError) {
			return FailureOutcome(FailureReasonNetworkError, trimmedStandardError)
		}
		return FailureOutcome(FailureReasonCloneCommandFailed, trimmedStandardError)
	}

	return FailureOutcome(FailureReasonCloneCommandFailed, executionError.Error())
}

// destinationOccupied reports whether the destination blocks cloning, with a human-readable detail.
func (service *Service) destinationOccupied(destinationPath string) (bool, string) {
	destinationInfo, statError := service.fileSystem.Stat(destinationPath)
	if statError != nil {
		return false, ""
	}
	if !destinationInfo.IsDir() {
		return true, destinationNotDirectoryDetailConstant
	}

	entryNames, readError := service.fileSystem.ReadDirectoryNames(destinationPath)
	if readError != nil {
		return true, fmt.Sprintf(destinationUnreadableDetailTemplateConstant, readError)
	}
	if len(entryNames) > 0 {
		return true, destinationNotEmptyDetailConstant
	}
	return false, ""
}

// buildCloneCommand assembles the git invocation, keeping the token out of the argument list.
func (service *Service) buildCloneCommand(job CloneJob, accessToken string) execshell.CommandDetails {
	commandArguments := []string{}
	commandEnvironment := map[string]string{
		gitTerminalPromptEnvironmentNameConstant: gitTerminalPromptEnvironmentDisableConstant,
	}

	if len(accessToken) > 0 {
		commandArguments = append(commandArguments,
			gitConfigurationFlagConstant, credentialHelperResetConfigurationConstant,
			gitConfigurationFlagConstant, credentialHelperScriptConfigurationConstant,
		)
		commandEnvironment[cloneTokenEnvironmentNameConstant] = accessToken
	}

	commandArguments = append(commandArguments, gitCloneSubcommandConstant, job.Project.CloneURL, job.DestinationPath)

	return execshell.CommandDetails{
		Arguments:            commandArguments,
		EnvironmentVariables: commandEnvironment,
	}
}

func standardErrorIndicatesNetworkFailure(standardError string) bool {
	loweredStandardError := strings.ToLower(standardError)
	for _, failureMarker := range networkFailureMarkers {
		if strings.Contains(loweredStandardError, failureMarker) {
			return true
		}
	}
	return false
}

func normalizedContext(executionContext context.Context) context.Context {
	if executionContext == nil {
		return context.Background()
	}
	return executionContext
}
