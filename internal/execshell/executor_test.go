package execshell_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AoNovae/Git-Toolkit/internal/execshell"
)

const (
	testRepositoryURLConstant  = "https://gitlab.example.com/acme/widget.git"
	testDestinationConstant    = "/srv/mirrors/widget"
	testStandardOutputConstant = "done"
	testStandardErrorConstant  = "fatal: repository not found"
	testRunnerFailureConstant  = "executable vanished"
)

type recordingCommandRunner struct {
	executedCommands []execshell.ShellCommand
	result           execshell.ExecutionResult
	runError         error
}

func (runner *recordingCommandRunner) Run(executionContext context.Context, command execshell.ShellCommand) (execshell.ExecutionResult, error) {
	runner.executedCommands = append(runner.executedCommands, command)
	return runner.result, runner.runError
}

type recordingEventObserver struct {
	startedCommands   []execshell.ShellCommand
	completedResults  []execshell.ExecutionResult
	executionFailures []error
}

func (observer *recordingEventObserver) CommandStarted(command execshell.ShellCommand) {
	observer.startedCommands = append(observer.startedCommands, command)
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	observer.completedResults = append(observer.completedResults, result)
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	observer.executionFailures = append(observer.executionFailures, failure)
}

func TestNewShellExecutorValidatesCollaborators(testInstance *testing.T) {
	testCases := []struct {
		name          string
		logger        *zap.Logger
		commandRunner execshell.CommandRunner
		expectedError error
	}{
		{
			name:          "missing_logger",
			logger:        nil,
			commandRunner: &recordingCommandRunner{},
			expectedError: execshell.ErrLoggerNotConfigured,
		},
		{
			name:          "missing_runner",
			logger:        zap.NewNop(),
			commandRunner: nil,
			expectedError: execshell.ErrCommandRunnerNotConfigured,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			_, creationError := execshell.NewShellExecutor(testCase.logger, testCase.commandRunner)
			require.ErrorIs(testInstance, creationError, testCase.expectedError)
		})
	}
}

func TestShellExecutorRequiresCommandName(testInstance *testing.T) {
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), &recordingCommandRunner{})
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.Execute(context.Background(), execshell.ShellCommand{})

	require.ErrorIs(testInstance, executionError, execshell.ErrCommandNameMissing)
}

func TestShellExecutorExecuteGit(testInstance *testing.T) {
	commandRunner := &recordingCommandRunner{result: execshell.ExecutionResult{StandardOutput: testStandardOutputConstant}}
	shellExecutor, creationError := execshell.NewShellExecutor(zap.NewNop(), commandRunner)
	require.NoError(testInstance, creationError)

	executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments: []string{"clone", testRepositoryURLConstant, testDestinationConstant},
	})

	require.NoError(testInstance, executionError)
	require.Equal(testInstance, testStandardOutputConstant, executionResult.StandardOutput)
	require.Len(testInstance, commandRunner.executedCommands, 1)
	require.Equal(testInstance, execshell.CommandGit, commandRunner.executedCommands[0].Name)
	require.Equal(testInstance, []string{"clone", testRepositoryURLConstant, testDestinationConstant}, commandRunner.executedCommands[0].Details.Arguments)
}

func TestShellExecutorReportsNonZeroExit(testInstance *testing.T) {
	commandRunner := &recordingCommandRunner{result: execshell.ExecutionResult{ExitCode: 128, StandardError: testStandardErrorConstant}}
	eventObserver := &recordingEventObserver{}
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(zap.NewNop(), commandRunner, eventObserver)
	require.NoError(testInstance, creationError)

	executionResult, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments: []string{"clone", testRepositoryURLConstant, testDestinationConstant},
	})

	commandFailure := execshell.CommandFailedError{}
	require.ErrorAs(testInstance, executionError, &commandFailure)
	require.Equal(testInstance, 128, commandFailure.Result.ExitCode)
	require.Equal(testInstance, testStandardErrorConstant, commandFailure.Result.StandardError)
	require.Equal(testInstance, 128, executionResult.ExitCode)
	require.Len(testInstance, eventObserver.startedCommands, 1)
	require.Len(testInstance, eventObserver.completedResults, 1)
	require.Empty(testInstance, eventObserver.executionFailures)
}

func TestShellExecutorWrapsRunnerFailures(testInstance *testing.T) {
	runnerFailure := errors.New(testRunnerFailureConstant)
	commandRunner := &recordingCommandRunner{runError: runnerFailure}
	eventObserver := &recordingEventObserver{}
	shellExecutor, creationError := execshell.NewShellExecutorWithObserver(zap.NewNop(), commandRunner, eventObserver)
	require.NoError(testInstance, creationError)

	_, executionError := shellExecutor.ExecuteGit(context.Background(), execshell.CommandDetails{
		Arguments: []string{"--version"},
	})

	executionFailure := execshell.CommandExecutionError{}
	require.ErrorAs(testInstance, executionError, &executionFailure)
	require.ErrorIs(testInstance, executionError, runnerFailure)
	require.Len(testInstance, eventObserver.executionFailures, 1)
	require.Empty(testInstance, eventObserver.completedResults)
}
