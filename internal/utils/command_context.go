package utils

import "context"

const (
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
	accessTokenContextKeyConstant           = commandContextKey("gitlabAccessToken")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithConfigurationFilePath attaches the configuration file path to the provided context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the configuration file path from the provided context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, configurationFilePathAvailable := executionContext.Value(configurationFilePathContextKeyConstant).(string)
	if !configurationFilePathAvailable {
		return "", false
	}
	return configurationFilePath, true
}

// WithAccessToken attaches the resolved GitLab access token to the provided context.
func (accessor CommandContextAccessor) WithAccessToken(parentContext context.Context, accessToken string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, accessTokenContextKeyConstant, accessToken)
}

// AccessToken extracts the resolved GitLab access token from the provided context.
func (accessor CommandContextAccessor) AccessToken(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	accessToken, accessTokenAvailable := executionContext.Value(accessTokenContextKeyConstant).(string)
	if !accessTokenAvailable || len(accessToken) == 0 {
		return "", false
	}
	return accessToken, true
}
