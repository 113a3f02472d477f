package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AoNovae/Git-Toolkit/internal/utils"
)

const (
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testEnvironmentPrefixConstant     = "GLCLONERTEST"
	testEmbeddedConfigurationConstant = "common:\n  log_level: warn\n  log_format: console\n"
	testFileConfigurationConstant     = "common:\n  log_level: debug\n"
	testConfigurationFileNameConstant = "override.yaml"
)

type testCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

type testConfiguration struct {
	Common testCommonConfiguration `mapstructure:"common"`
}

func newTestConfigurationLoader() *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		nil,
	)
}

func TestLoadConfigurationAppliesDefaults(testInstance *testing.T) {
	configurationLoader := newTestConfigurationLoader()

	loadedConfiguration := testConfiguration{}
	configurationMetadata, loadError := configurationLoader.LoadConfiguration(
		"",
		map[string]any{"common.log_level": "info", "common.log_format": "structured"},
		&loadedConfiguration,
	)

	require.NoError(testInstance, loadError)
	require.Empty(testInstance, configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "info", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", loadedConfiguration.Common.LogFormat)
}

func TestLoadConfigurationMergesEmbeddedConfiguration(testInstance *testing.T) {
	configurationLoader := newTestConfigurationLoader()
	configurationLoader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant))

	loadedConfiguration := testConfiguration{}
	_, loadError := configurationLoader.LoadConfiguration("", nil, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "warn", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "console", loadedConfiguration.Common.LogFormat)
}

func TestLoadConfigurationPrefersExplicitFile(testInstance *testing.T) {
	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationFilePath, []byte(testFileConfigurationConstant), 0o644))

	configurationLoader := newTestConfigurationLoader()
	configurationLoader.SetEmbeddedConfiguration([]byte(testEmbeddedConfigurationConstant))

	loadedConfiguration := testConfiguration{}
	configurationMetadata, loadError := configurationLoader.LoadConfiguration(configurationFilePath, nil, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationFilePath, configurationMetadata.ConfigFileUsed)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "console", loadedConfiguration.Common.LogFormat)
}

func TestLoadConfigurationReportsUnreadableFile(testInstance *testing.T) {
	configurationLoader := newTestConfigurationLoader()

	loadedConfiguration := testConfiguration{}
	_, loadError := configurationLoader.LoadConfiguration(
		filepath.Join(testInstance.TempDir(), "missing.yaml"),
		nil,
		&loadedConfiguration,
	)

	require.Error(testInstance, loadError)
}
