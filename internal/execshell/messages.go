package execshell

import (
	"fmt"
	"strings"
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	fallbackUnknownValueLabelConstant       = "unknown"
)

const (
	gitCloneSubcommandNameConstant = "clone"
	gitVersionFlagConstant         = "--version"
	gitConfigurationFlagConstant   = "-c"
)

const (
	gitCloneStartTemplateConstant            = "Cloning %s into %s"
	gitCloneSuccessTemplateConstant          = "Cloned %s into %s"
	gitCloneFailureTemplateConstant          = "Failed to clone %s into %s (exit code %d%s)"
	gitCloneExecutionFailureTemplateConstant = "Unable to clone %s into %s: %s"
	gitVersionStartMessageConstant           = "Checking git availability"
	gitVersionSuccessMessageConstant         = "git is available"
	gitVersionFailureTemplateConstant        = "git is unavailable (exit code %d%s)"
	gitVersionExecutionFailureTemplate       = "git is unavailable: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

type cloneInvocation struct {
	remoteURL       string
	destinationPath string
}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	if invocation, isClone := formatter.parseCloneInvocation(command); isClone {
		return fmt.Sprintf(gitCloneStartTemplateConstant, invocation.remoteURL, invocation.destinationPath)
	}
	if formatter.isVersionInvocation(command) {
		return gitVersionStartMessageConstant
	}
	return fmt.Sprintf(genericStartTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	if invocation, isClone := formatter.parseCloneInvocation(command); isClone {
		return fmt.Sprintf(gitCloneSuccessTemplateConstant, invocation.remoteURL, invocation.destinationPath)
	}
	if formatter.isVersionInvocation(command) {
		return gitVersionSuccessMessageConstant
	}
	return fmt.Sprintf(genericSuccessTemplateConstant, formatter.formatCommandLabel(command))
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)
	if invocation, isClone := formatter.parseCloneInvocation(command); isClone {
		return fmt.Sprintf(gitCloneFailureTemplateConstant, invocation.remoteURL, invocation.destinationPath, result.ExitCode, standardErrorSuffix)
	}
	if formatter.isVersionInvocation(command) {
		return fmt.Sprintf(gitVersionFailureTemplateConstant, result.ExitCode, standardErrorSuffix)
	}
	return fmt.Sprintf(genericFailureTemplateConstant, formatter.formatCommandLabel(command), result.ExitCode, standardErrorSuffix)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	if invocation, isClone := formatter.parseCloneInvocation(command); isClone {
		return fmt.Sprintf(gitCloneExecutionFailureTemplateConstant, invocation.remoteURL, invocation.destinationPath, failureMessage)
	}
	if formatter.isVersionInvocation(command) {
		return fmt.Sprintf(gitVersionExecutionFailureTemplate, failureMessage)
	}
	return fmt.Sprintf(genericExecutionFailureTemplateConstant, formatter.formatCommandLabel(command), failureMessage)
}

// parseCloneInvocation recognizes git clone commands regardless of leading -c configuration pairs.
func (formatter CommandMessageFormatter) parseCloneInvocation(command ShellCommand) (cloneInvocation, bool) {
	if command.Name != CommandGit {
		return cloneInvocation{}, false
	}

	positionalArguments := formatter.positionalArguments(command.Details.Arguments)
	if len(positionalArguments) == 0 || positionalArguments[0] != gitCloneSubcommandNameConstant {
		return cloneInvocation{}, false
	}

	invocation := cloneInvocation{
		remoteURL:       fallbackUnknownValueLabelConstant,
		destinationPath: fallbackUnknownValueLabelConstant,
	}
	if len(positionalArguments) > 1 {
		invocation.remoteURL = positionalArguments[1]
	}
	if len(positionalArguments) > 2 {
		invocation.destinationPath = positionalArguments[2]
	}
	return invocation, true
}

func (formatter CommandMessageFormatter) isVersionInvocation(command ShellCommand) bool {
	if command.Name != CommandGit {
		return false
	}
	positionalArguments := formatter.positionalArguments(command.Details.Arguments)
	return len(positionalArguments) == 1 && positionalArguments[0] == gitVersionFlagConstant
}

func (formatter CommandMessageFormatter) positionalArguments(arguments []string) []string {
	positionalArguments := make([]string, 0, len(arguments))
	argumentIndex := 0
	for argumentIndex < len(arguments) {
		if arguments[argumentIndex] == gitConfigurationFlagConstant && argumentIndex+1 < len(arguments) {
			argumentIndex += 2
			continue
		}
		positionalArguments = append(positionalArguments, arguments[argumentIndex])
		argumentIndex++
	}
	return positionalArguments
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		commandParts = append(commandParts, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	commandLabel := strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, formatter.formatWorkingDirectorySuffix(command))
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}
