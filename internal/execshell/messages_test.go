package execshell_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AoNovae/Git-Toolkit/internal/execshell"
)

func cloneCommandWithConfiguration() execshell.ShellCommand {
	return execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments: []string{
				"-c", "credential.helper=",
				"clone", testRepositoryURLConstant, testDestinationConstant,
			},
		},
	}
}

func TestCommandMessageFormatterCloneVocabulary(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	cloneCommand := cloneCommandWithConfiguration()

	testCases := []struct {
		name            string
		buildMessage    func() string
		expectedMessage string
	}{
		{
			name: "clone_started",
			buildMessage: func() string {
				return formatter.BuildStartedMessage(cloneCommand)
			},
			expectedMessage: "Cloning " + testRepositoryURLConstant + " into " + testDestinationConstant,
		},
		{
			name: "clone_succeeded",
			buildMessage: func() string {
				return formatter.BuildSuccessMessage(cloneCommand)
			},
			expectedMessage: "Cloned " + testRepositoryURLConstant + " into " + testDestinationConstant,
		},
		{
			name: "clone_failed",
			buildMessage: func() string {
				return formatter.BuildFailureMessage(cloneCommand, execshell.ExecutionResult{ExitCode: 128, StandardError: testStandardErrorConstant})
			},
			expectedMessage: "Failed to clone " + testRepositoryURLConstant + " into " + testDestinationConstant + " (exit code 128: " + testStandardErrorConstant + ")",
		},
		{
			name: "clone_execution_failure",
			buildMessage: func() string {
				return formatter.BuildExecutionFailureMessage(cloneCommand, errors.New(testRunnerFailureConstant))
			},
			expectedMessage: "Unable to clone " + testRepositoryURLConstant + " into " + testDestinationConstant + ": " + testRunnerFailureConstant,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, testCase.buildMessage())
		})
	}
}

func TestCommandMessageFormatterVersionVocabulary(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	versionCommand := execshell.ShellCommand{
		Name:    execshell.CommandGit,
		Details: execshell.CommandDetails{Arguments: []string{"--version"}},
	}

	require.Equal(testInstance, "Checking git availability", formatter.BuildStartedMessage(versionCommand))
	require.Equal(testInstance, "git is available", formatter.BuildSuccessMessage(versionCommand))
	require.Equal(testInstance, "git is unavailable (exit code 1)", formatter.BuildFailureMessage(versionCommand, execshell.ExecutionResult{ExitCode: 1}))
}

func TestCommandMessageFormatterGenericFallback(testInstance *testing.T) {
	formatter := execshell.CommandMessageFormatter{}
	fetchCommand := execshell.ShellCommand{
		Name: execshell.CommandGit,
		Details: execshell.CommandDetails{
			Arguments:        []string{"fetch", "--prune"},
			WorkingDirectory: "/srv/mirrors/widget",
		},
	}

	require.Equal(testInstance, "Running git fetch --prune (in /srv/mirrors/widget)", formatter.BuildStartedMessage(fetchCommand))
	require.Equal(testInstance, "Completed git fetch --prune (in /srv/mirrors/widget)", formatter.BuildSuccessMessage(fetchCommand))
}
