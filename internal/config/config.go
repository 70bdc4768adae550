// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v9"
	"github.com/hashicorp/go-multierror"
	"github.com/samber/lo"

	"github.com/jeranaias/rigchat/internal/model"
	"github.com/jeranaias/rigchat/internal/util"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "RIGCHAT_"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete rigchat configuration.
type Config struct {
	Cloud     CloudConfig     `toml:"cloud" envPrefix:"CLOUD_"`
	Assistant AssistantConfig `toml:"assistant" envPrefix:"ASSISTANT_"`
	User      UserConfig      `toml:"user" envPrefix:"USER_"`
	UI        UIConfig        `toml:"ui" envPrefix:"UI_"`
	Logging   LoggingConfig   `toml:"logging" envPrefix:"LOG_"`
}

// CloudConfig contains the completion service settings.
type CloudConfig struct {
	// APIKey is the bearer credential. Empty disables requests.
	APIKey  string `toml:"api_key" env:"API_KEY"`
	BaseURL string `toml:"base_url" env:"BASE_URL"`
	Model   string `toml:"model" env:"MODEL"`

	// Sampling parameters sent with every request.
	Temperature float64 `toml:"temperature" env:"TEMPERATURE"`
	MaxTokens   int     `toml:"max_tokens" env:"MAX_TOKENS"`
	TopP        float64 `toml:"top_p" env:"TOP_P"`

	TimeoutSecs       int `toml:"timeout_secs" env:"TIMEOUT_SECS"`
	MaxRetries        int `toml:"max_retries" env:"MAX_RETRIES"`
	RequestsPerMinute int `toml:"requests_per_minute" env:"REQUESTS_PER_MINUTE"`
}

// AssistantConfig describes the assistant persona.
type AssistantConfig struct {
	// Name is shown next to assistant replies.
	Name string `toml:"name" env:"NAME"`
	// SystemPrompt is the preamble sent with every request. Empty means
	// the built-in prompt.
	SystemPrompt string `toml:"system_prompt" env:"SYSTEM_PROMPT"`
}

// UserConfig describes the person at the keyboard.
type UserConfig struct {
	DisplayName string `toml:"display_name" env:"DISPLAY_NAME"`
	Avatar      string `toml:"avatar" env:"AVATAR"`
}

// UIConfig contains UI configuration. These are the only settings applied
// live when the file changes.
type UIConfig struct {
	// CodeTheme is the chroma style used for code blocks.
	CodeTheme string `toml:"code_theme" env:"CODE_THEME"`
	// ShowTimestamps shows the time next to each message.
	ShowTimestamps bool `toml:"show_timestamps" env:"SHOW_TIMESTAMPS"`
	// WrapWidth caps the width of prose. Zero means the terminal width.
	WrapWidth int `toml:"wrap_width" env:"WRAP_WIDTH"`
	// HelpOnStart opens the help overlay when the TUI starts.
	HelpOnStart bool `toml:"help_on_start" env:"HELP_ON_START"`
}

// LoggingConfig controls the diagnostic log.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" env:"LEVEL"`
	// File is the log path. Empty means rigchat.log in the config directory.
	File string `toml:"file" env:"FILE"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Cloud: CloudConfig{
			BaseURL:           "https://api.openai.com/v1",
			Model:             "gpt-4o-mini",
			Temperature:       0.7,
			MaxTokens:         1024,
			TopP:              1.0,
			TimeoutSecs:       60,
			MaxRetries:        1,
			RequestsPerMinute: 20,
		},
		Assistant: AssistantConfig{
			Name: "Assistant",
		},
		UI: UIConfig{
			CodeTheme:      "monokai",
			ShowTimestamps: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// Dir returns the rigchat configuration directory. RIGCHAT_HOME overrides
// the default of ~/.rigchat.
func Dir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".rigchat"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// HistoryPath returns the REPL input history file.
func HistoryPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load reads the config file at path, or the default path when path is
// empty. A missing file is not an error; defaults are used. Environment
// overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := Path()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg := Default()
	if _, err := os.Stat(path); err == nil {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// decodeFile decodes the TOML file at path over c. Keys absent from the
// file keep their current values.
func (c *Config) decodeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := lo.Map(undecoded, func(k toml.Key, _ int) string { return k.String() })
		return fmt.Errorf("unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration as TOML to path with 0600 permissions.
func Save(cfg *Config, path string) error {
	var buf bytes.Buffer
	buf.WriteString("# rigchat configuration file\n")
	buf.WriteString("# Environment variables named RIGCHAT_<SECTION>_<KEY> override these values.\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides overlays RIGCHAT_* environment variables, for example
// RIGCHAT_CLOUD_API_KEY or RIGCHAT_UI_CODE_THEME. OPENAI_API_KEY is used
// when no key is configured at all.
func (c *Config) ApplyEnvOverrides() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}
	c.Cloud.APIKey = lo.CoalesceOrEmpty(strings.TrimSpace(c.Cloud.APIKey), strings.TrimSpace(os.Getenv("OPENAI_API_KEY")))
	return nil
}

// SetDefaults fills empty string settings and normalizes values.
func (c *Config) SetDefaults() {
	defaults := Default()
	c.Cloud.BaseURL = strings.TrimSuffix(lo.CoalesceOrEmpty(c.Cloud.BaseURL, defaults.Cloud.BaseURL), "/")
	c.Cloud.Model = lo.CoalesceOrEmpty(c.Cloud.Model, defaults.Cloud.Model)
	c.Assistant.Name = lo.CoalesceOrEmpty(c.Assistant.Name, defaults.Assistant.Name)
	c.UI.CodeTheme = lo.CoalesceOrEmpty(c.UI.CodeTheme, defaults.UI.CodeTheme)
	c.Logging.Level = strings.ToLower(lo.CoalesceOrEmpty(c.Logging.Level, defaults.Logging.Level))
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every setting and returns all problems at once as a
// *multierror.Error of *ValidationError values.
func (c *Config) Validate() error {
	var result *multierror.Error
	add := func(field, format string, args ...any) {
		result = multierror.Append(result, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if u, err := url.Parse(c.Cloud.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("cloud.base_url", "must be an absolute http(s) URL, got %q", c.Cloud.BaseURL)
	}
	if c.Cloud.Temperature < 0 || c.Cloud.Temperature > 2 {
		add("cloud.temperature", "must be between 0 and 2, got %g", c.Cloud.Temperature)
	}
	if c.Cloud.TopP <= 0 || c.Cloud.TopP > 1 {
		add("cloud.top_p", "must be greater than 0 and at most 1, got %g", c.Cloud.TopP)
	}
	if c.Cloud.MaxTokens <= 0 {
		add("cloud.max_tokens", "must be positive, got %d", c.Cloud.MaxTokens)
	}
	if c.Cloud.TimeoutSecs <= 0 || c.Cloud.TimeoutSecs > 600 {
		add("cloud.timeout_secs", "must be between 1 and 600, got %d", c.Cloud.TimeoutSecs)
	}
	if c.Cloud.MaxRetries < 1 || c.Cloud.MaxRetries > 10 {
		add("cloud.max_retries", "must be between 1 and 10, got %d", c.Cloud.MaxRetries)
	}
	if c.Cloud.RequestsPerMinute < 0 {
		add("cloud.requests_per_minute", "must not be negative, got %d", c.Cloud.RequestsPerMinute)
	}
	if c.UI.WrapWidth < 0 || (c.UI.WrapWidth > 0 && c.UI.WrapWidth < 20) {
		add("ui.wrap_width", "must be 0 or at least 20, got %d", c.UI.WrapWidth)
	}
	if !lo.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.Logging.Level)) {
		add("logging.level", "must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}

	return result.ErrorOrNil()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// HasCredential reports whether an API key is configured.
func (c *Config) HasCredential() bool {
	return c.Cloud.APIKey != ""
}

// Timeout returns the request timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Cloud.TimeoutSecs) * time.Second
}

// CurrentUser returns the user descriptor for display.
func (c *Config) CurrentUser() model.User {
	return model.User{DisplayName: c.User.DisplayName, Avatar: c.User.Avatar}
}

// LogFile returns the configured log path or the default one.
func (c *Config) LogFile() (string, error) {
	if c.Logging.File != "" {
		return c.Logging.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "rigchat.log"), nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as TOML with the API key redacted.
func (c *Config) String() string {
	safe := c.Clone()
	if safe.Cloud.APIKey != "" {
		safe.Cloud.APIKey = "[REDACTED]"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(safe); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return buf.String()
}
