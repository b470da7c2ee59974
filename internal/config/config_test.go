package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigFromFile_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("KEY", "")
	t.Setenv("TOKEN", "")

	cfg, err := LoadConfigFromFile(writeConfig(t, "log_level = \"warn\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "prebuilt-read", cfg.AzureModel)
	assert.Equal(t, "2023-07-31", cfg.AzureAPIVersion)
	assert.Equal(t, DefaultDocumentCloudAPIURL, cfg.DocumentCloudAPIURL)
	assert.Equal(t, time.Second, cfg.PollInterval())
	assert.Empty(t, cfg.AzureKey)
}

func TestLoadConfigFromFile_EnvironmentOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("KEY", "env-key")
	t.Setenv("TOKEN", "https://example.cognitiveservices.azure.com/")
	t.Setenv("DOCUMENTCLOUD_TOKEN", "dc-token")
	t.Setenv("DC_OCR_POLL_INTERVAL_MS", "250")

	cfg, err := LoadConfigFromFile(writeConfig(t, `
azure_key = "file-key"
documentcloud_api_url = "http://localhost:8000/api"
`))
	require.NoError(t, err)

	assert.Equal(t, "env-key", cfg.AzureKey)
	assert.Equal(t, "https://example.cognitiveservices.azure.com/", cfg.AzureEndpoint)
	assert.Equal(t, "dc-token", cfg.DocumentCloudToken)
	assert.Equal(t, "http://localhost:8000/api/", cfg.DocumentCloudAPIURL)
	assert.Equal(t, 250*time.Millisecond, cfg.PollInterval())
}

func TestLoadConfigFromFile_InvalidLogFormat(t *testing.T) {
	viper.Reset()

	_, err := LoadConfigFromFile(writeConfig(t, "log_format = \"xml\"\n"))
	assert.Error(t, err)
}

func TestLoadConfigFromFile_Missing(t *testing.T) {
	viper.Reset()

	_, err := LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestGetDefaultConfig_Parses(t *testing.T) {
	viper.Reset()
	t.Setenv("KEY", "")
	t.Setenv("TOKEN", "")

	cfg, err := LoadConfigFromFile(writeConfig(t, GetDefaultConfig()))
	require.NoError(t, err)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, 1000, cfg.PollIntervalMS)
}
