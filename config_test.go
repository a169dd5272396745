package terminai

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable LoadConfig reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		EnvUpstreamAPIKey, EnvAPIKey, "GROQ_BASE_URL", "PORT",
		"TERMINAI_SERVER_ADDR", "TERMINAI_GENERATION_MODEL",
		"TERMINAI_GENERATION_API_KEY", "TERMINAI_AUTH_API_KEY",
		"TERMINAI_GENERATION_BASE_URL", "TERMINAI_LOG_LEVEL",
	} {
		t.Setenv(name, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ":8000", cfg.Server.Addr)
	assert.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Generation.BaseURL)
	assert.Equal(t, "llama3-70b-8192", cfg.Generation.Model)
	assert.Equal(t, 100, cfg.Generation.MaxTokens)
	assert.InDelta(t, 0.1, cfg.Generation.Temperature, 1e-6)
	assert.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, 5*time.Minute, cfg.Generation.PromptTTL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Auth.APIKey)
	assert.Empty(t, cfg.Generation.APIKey)
}

func TestLoadConfigSecretsFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvUpstreamAPIKey, "gsk_upstream")
	t.Setenv(EnvAPIKey, "shared-secret")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gsk_upstream", cfg.Generation.APIKey)
	assert.Equal(t, "shared-secret", cfg.Auth.APIKey)
}

func TestLoadConfigPrefixedEnvWins(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvAPIKey, "plain")
	t.Setenv("TERMINAI_AUTH_API_KEY", "prefixed")
	t.Setenv("TERMINAI_GENERATION_MODEL", "llama-3.1-8b-instant")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "prefixed", cfg.Auth.APIKey)
	assert.Equal(t, "llama-3.1-8b-instant", cfg.Generation.Model)
}

func TestLoadConfigPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Addr)
}

func TestLoadConfigFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "terminai.toml")
	data := `
[generation]
model = "mixtral-8x7b-32768"
timeout = "10s"

[log]
level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "mixtral-8x7b-32768", cfg.Generation.Model)
	assert.Equal(t, 10*time.Second, cfg.Generation.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	// Untouched keys keep their defaults.
	assert.Equal(t, 100, cfg.Generation.MaxTokens)
	assert.Equal(t, ":8000", cfg.Server.Addr)
}

// unsetEnv removes name for the duration of the test.
func unsetEnv(t *testing.T, name string) {
	t.Helper()
	t.Setenv(name, "")
	require.NoError(t, os.Unsetenv(name))
}

func TestLoadConfigDotEnv(t *testing.T) {
	clearEnv(t)
	unsetEnv(t, EnvUpstreamAPIKey)
	unsetEnv(t, EnvAPIKey)
	t.Setenv("TERMINAI_GENERATION_MODEL", "from-process")

	dir := t.TempDir()
	data := "GROQ_API_KEY=gsk_dotenv\nTERMINAI_API_KEY=dotenv-secret\nTERMINAI_GENERATION_MODEL=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte(data), 0600))
	t.Chdir(dir)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "gsk_dotenv", cfg.Generation.APIKey)
	assert.Equal(t, "dotenv-secret", cfg.Auth.APIKey)
	// The process environment takes precedence over the file.
	assert.Equal(t, "from-process", cfg.Generation.Model)
}

func TestLoadConfigWithoutDotEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, cfg.Auth.APIKey)
}

func TestLoadConfigMalformedDotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFile), []byte("KEY='unterminated\n"), 0600))
	t.Chdir(dir)

	_, err := LoadConfig("")
	assert.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestValidateMissingSecrets(t *testing.T) {
	cfg := DefaultConfig()
	err := cfg.Validate()
	require.ErrorIs(t, err, ErrMissingSecret)
	assert.Contains(t, err.Error(), EnvUpstreamAPIKey)

	cfg.Generation.APIKey = "gsk"
	err = cfg.Validate()
	require.ErrorIs(t, err, ErrMissingSecret)
	assert.Contains(t, err.Error(), EnvAPIKey)

	cfg.Auth.APIKey = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateConfigWarnings(t *testing.T) {
	assert.Empty(t, ValidateConfig(nil))

	cfg := DefaultConfig()
	warnings := ValidateConfig(cfg)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "CORS")

	cfg.Generation.Timeout = 0
	cfg.Generation.Temperature = 3
	cfg.Generation.MaxTokens = 0
	assert.Len(t, ValidateConfig(cfg), 4)
}
