package terminai

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	defaults "github.com/terminai/terminai-api/default"
)

// ErrMissingSecret is returned when a required secret is not configured.
var ErrMissingSecret = errors.New("required secret not set")

// Environment variables holding the two required secrets.
const (
	EnvUpstreamAPIKey = "GROQ_API_KEY"
	EnvAPIKey         = "TERMINAI_API_KEY"
)

// DotEnvFile is read from the working directory, if present, before the
// environment is consulted. Variables already set in the process win.
const DotEnvFile = ".env"

// Config represents the TerminAI API configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Generation GenerationConfig `mapstructure:"generation"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// AuthConfig holds the shared secret callers present in x-api-key.
type AuthConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// GenerationConfig holds settings for the upstream completion API.
type GenerationConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PromptFile  string        `mapstructure:"prompt_file"`
	PromptTTL   time.Duration `mapstructure:"prompt_ttl"`
}

// LogConfig holds logger and log rotation settings.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// defaultSettings decodes the embedded default_config.toml.
func defaultSettings() map[string]any {
	var m map[string]any
	if _, err := toml.Decode(defaults.DefaultConfigTOML, &m); err != nil {
		panic("terminai: invalid embedded default_config.toml: " + err.Error())
	}
	return m
}

func newViper() *viper.Viper {
	v := viper.New()
	if err := v.MergeConfigMap(defaultSettings()); err != nil {
		panic("terminai: cannot load embedded defaults: " + err.Error())
	}
	return v
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// DefaultConfig returns the configuration from the embedded default_config.toml.
func DefaultConfig() *Config {
	cfg, err := unmarshal(newViper())
	if err != nil {
		panic("terminai: " + err.Error())
	}
	return cfg
}

// LoadConfig builds the configuration from embedded defaults, the optional
// config file at path, and the environment, in that order of precedence.
//
// Every key can be set as TERMINAI_<SECTION>_<KEY>. The secrets are also read
// from GROQ_API_KEY and TERMINAI_API_KEY, and PORT sets the listen port.
// Variables may come from a .env file (see DotEnvFile).
func LoadConfig(path string) (*Config, error) {
	if err := loadDotEnv(DotEnvFile); err != nil {
		return nil, err
	}

	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("TERMINAI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindings := map[string][]string{
		"generation.api_key":  {"TERMINAI_GENERATION_API_KEY", EnvUpstreamAPIKey},
		"generation.base_url": {"TERMINAI_GENERATION_BASE_URL", "GROQ_BASE_URL"},
		"auth.api_key":        {"TERMINAI_AUTH_API_KEY", EnvAPIKey},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, err
		}
	}

	if port := os.Getenv("PORT"); port != "" && os.Getenv("TERMINAI_SERVER_ADDR") == "" {
		v.Set("server.addr", ":"+port)
	}

	return unmarshal(v)
}

func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("read %s: %w", path, err)
}

// Validate reports a missing required secret. The process must not start
// without both.
func (c *Config) Validate() error {
	if c.Generation.APIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingSecret, EnvUpstreamAPIKey)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("%w: %s", ErrMissingSecret, EnvAPIKey)
	}
	return nil
}

// ValidateConfig checks configuration for potential issues and returns warnings.
func ValidateConfig(cfg *Config) []string {
	var warnings []string
	if cfg == nil {
		return warnings
	}
	if cfg.Generation.Timeout <= 0 {
		warnings = append(warnings, "generation.timeout is not set; upstream calls are bounded only by client disconnects")
	}
	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 2 {
		warnings = append(warnings, fmt.Sprintf("generation.temperature %.2f is outside [0, 2]", cfg.Generation.Temperature))
	}
	if cfg.Generation.MaxTokens <= 0 {
		warnings = append(warnings, "generation.max_tokens is not set; the upstream default applies")
	}
	warnings = append(warnings, "CORS allows every origin; restrict it before exposing the API publicly")
	return warnings
}
