package utils

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

const (
	tokenPromptMessageConstant          = "GitLab access token: "
	tokenPromptNewlineConstant          = "\n"
	tokenPromptReadErrorTemplateConst   = "unable to read access token: %w"
	tokenPromptNotTerminalMessageConst  = "standard input is not a terminal; supply the token via flag, environment, or configuration"
	tokenPromptWriterMissingMessageText = "token prompt writer not configured"
)

// TerminalReader abstracts password-style reads from a terminal file descriptor.
type TerminalReader func(fileDescriptor int) ([]byte, error)

// TokenPrompter reads an access token from the terminal without echoing it.
type TokenPrompter struct {
	output         io.Writer
	terminalReader TerminalReader
	fileDescriptor int
	isTerminal     func(fileDescriptor int) bool
}

// NewTokenPrompter constructs a TokenPrompter backed by the process standard streams.
func NewTokenPrompter() *TokenPrompter {
	return &TokenPrompter{
		output:         os.Stderr,
		terminalReader: term.ReadPassword,
		fileDescriptor: int(os.Stdin.Fd()),
		isTerminal:     term.IsTerminal,
	}
}

// PromptToken requests an access token interactively, returning an error when no terminal is attached.
func (prompter *TokenPrompter) PromptToken() (string, error) {
	if prompter == nil || prompter.output == nil {
		return "", fmt.Errorf(tokenPromptWriterMissingMessageText)
	}
	if prompter.isTerminal != nil && !prompter.isTerminal(prompter.fileDescriptor) {
		return "", fmt.Errorf(tokenPromptNotTerminalMessageConst)
	}

	fmt.Fprint(prompter.output, tokenPromptMessageConstant)
	tokenBytes, readError := prompter.terminalReader(prompter.fileDescriptor)
	fmt.Fprint(prompter.output, tokenPromptNewlineConstant)
	if readError != nil {
		return "", fmt.Errorf(tokenPromptReadErrorTemplateConst, readError)
	}

	return string(tokenBytes), nil
}
