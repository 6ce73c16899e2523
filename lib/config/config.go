// Copyright 2026 The Dutydesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for the Dutydesk bot.
//
// Settings are loaded from a single YAML file specified by either the
// DUTYDESK_CONFIG environment variable (via [Load]) or a --config flag
// (via [LoadFile]). There are no fallbacks and no automatic file
// search; when no file is named, [Load] returns the defaults. This
// keeps configuration deterministic and auditable.
//
// Credentials never live in the file. The Telegram bot token, the
// Anthropic API key, and the optional operator allow-list are read
// from the environment by [Config.FromEnvironment]:
//
//   - DUTYDESK_TELEGRAM_TOKEN: Telegram Bot API token (required)
//   - DUTYDESK_ANTHROPIC_API_KEY: Anthropic API key (required)
//   - DUTYDESK_ALLOWED_USERS: comma-separated Telegram user IDs;
//     empty or unset means every user is allowed
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the Dutydesk bot.
type Config struct {
	// Telegram configures the chat transport.
	Telegram TelegramConfig `yaml:"telegram"`

	// Extraction configures the document-understanding engine.
	Extraction ExtractionConfig `yaml:"extraction"`

	// Access configures the operator allow-list.
	Access AccessConfig `yaml:"access"`
}

// TelegramConfig holds Telegram Bot API settings.
type TelegramConfig struct {
	// Token is the bot token. Environment-only, never read from YAML.
	Token string `yaml:"-"`

	// BaseURL overrides the Bot API endpoint. Defaults to the
	// production endpoint; tests point it at a local server.
	BaseURL string `yaml:"base_url"`

	// PollTimeoutSeconds is the server-side long-poll hold time for
	// getUpdates. Default: 30, the Bot API recommendation.
	PollTimeoutSeconds int `yaml:"poll_timeout_seconds"`
}

// ExtractionConfig holds document-understanding engine settings.
type ExtractionConfig struct {
	// APIKey is the Anthropic API key. Environment-only, never read
	// from YAML.
	APIKey string `yaml:"-"`

	// BaseURL overrides the Anthropic API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model is the model identifier used for invoice extraction.
	Model string `yaml:"model"`

	// MaxTokens is the maximum output tokens per extraction call.
	MaxTokens int `yaml:"max_tokens"`

	// RequestTimeout bounds one extraction call, parsed with
	// time.ParseDuration (e.g., "120s"). The extraction API imposes no
	// timeout of its own; without this bound a hung call would block
	// the owning session indefinitely.
	RequestTimeout string `yaml:"request_timeout"`
}

// AccessConfig holds the static operator allow-list.
type AccessConfig struct {
	// AllowedUsers is the list of Telegram user IDs permitted to use
	// the bot. Empty means every user is allowed.
	AllowedUsers []int64 `yaml:"allowed_users"`
}

// Allows reports whether the user may operate the bot. An empty
// allow-list admits everyone.
func (access AccessConfig) Allows(userID int64) bool {
	if len(access.AllowedUsers) == 0 {
		return true
	}
	for _, allowed := range access.AllowedUsers {
		if allowed == userID {
			return true
		}
	}
	return false
}

// Default returns the default configuration. These defaults are a
// base merged under the config file and environment; credentials have
// no default and must come from the environment.
func Default() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeoutSeconds: 30,
		},
		Extraction: ExtractionConfig{
			Model:          "claude-sonnet-4-20250514",
			MaxTokens:      4000,
			RequestTimeout: "120s",
		},
	}
}

// Load loads configuration from the file named by DUTYDESK_CONFIG,
// or returns the defaults when the variable is unset. Environment
// credentials are applied in both cases.
func Load() (*Config, error) {
	configPath := os.Getenv("DUTYDESK_CONFIG")
	if configPath == "" {
		cfg := Default()
		if err := cfg.FromEnvironment(); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over the defaults, then applies environment credentials.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.FromEnvironment(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnvironment reads credentials and the allow-list from the
// process environment. YAML-sourced values for these fields do not
// exist; the environment is the only intake.
func (c *Config) FromEnvironment() error {
	c.Telegram.Token = os.Getenv("DUTYDESK_TELEGRAM_TOKEN")
	c.Extraction.APIKey = os.Getenv("DUTYDESK_ANTHROPIC_API_KEY")

	allowed, err := parseAllowedUsers(os.Getenv("DUTYDESK_ALLOWED_USERS"))
	if err != nil {
		return err
	}
	if len(allowed) > 0 {
		c.Access.AllowedUsers = allowed
	}
	return nil
}

// Validate checks that the configuration is complete enough to start
// the bot.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("config: DUTYDESK_TELEGRAM_TOKEN is not set")
	}
	if c.Extraction.APIKey == "" {
		return fmt.Errorf("config: DUTYDESK_ANTHROPIC_API_KEY is not set")
	}
	if c.Telegram.PollTimeoutSeconds < 0 {
		return fmt.Errorf("config: telegram.poll_timeout_seconds must not be negative")
	}
	if c.Extraction.MaxTokens <= 0 {
		return fmt.Errorf("config: extraction.max_tokens must be positive")
	}
	if _, err := c.ExtractionTimeout(); err != nil {
		return err
	}
	return nil
}

// ExtractionTimeout parses Extraction.RequestTimeout. A zero duration
// means no client-side bound.
func (c *Config) ExtractionTimeout() (time.Duration, error) {
	if c.Extraction.RequestTimeout == "" {
		return 0, nil
	}
	timeout, err := time.ParseDuration(c.Extraction.RequestTimeout)
	if err != nil {
		return 0, fmt.Errorf("config: invalid extraction.request_timeout %q: %w",
			c.Extraction.RequestTimeout, err)
	}
	return timeout, nil
}

// parseAllowedUsers parses a comma-separated list of Telegram user
// IDs. Blank entries are skipped; non-numeric entries are an error
// rather than a silently narrowed allow-list.
func parseAllowedUsers(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	var users []int64
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		userID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid user ID %q in DUTYDESK_ALLOWED_USERS", field)
		}
		users = append(users, userID)
	}
	return users, nil
}
