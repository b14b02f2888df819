package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Discord   DiscordConfig   `yaml:"discord" mapstructure:"discord"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`

	PageSize       int    `yaml:"page_size" mapstructure:"page_size"`
	TransportLimit int    `yaml:"transport_limit" mapstructure:"transport_limit"`
	LogLevel       string `yaml:"log_level" mapstructure:"log_level"`
}

type DiscordConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	Prefix string `yaml:"prefix" mapstructure:"prefix"`
}

type AnthropicConfig struct {
	APIKey         string `yaml:"api_key" mapstructure:"api_key"`
	Model          string `yaml:"model" mapstructure:"model"`
	BaseURL        string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries" mapstructure:"max_retries"`
}

type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// Timeout returns the completion request timeout as a duration.
func (a AnthropicConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

var envVarRe = regexp.MustCompile(`\$([A-Z_][A-Z0-9_]*)`)

func expandEnv(s string) string {
	return envVarRe.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "$")
		if val, ok := os.LookupEnv(name); ok {
			return val
		}
		return match
	})
}

func DefaultConfig() *Config {
	return &Config{
		Discord: DiscordConfig{
			Token:  "$DISCORD_TOKEN",
			Prefix: "!",
		},
		Anthropic: AnthropicConfig{
			APIKey:         "$ANTHROPIC_API_KEY",
			Model:          "claude-3-5-sonnet-20240620",
			TimeoutSeconds: 60,
			MaxRetries:     0,
		},
		Store: StoreConfig{
			Path: "goals.json",
		},
		PageSize:       3,
		TransportLimit: 2000,
		LogLevel:       "info",
	}
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Search paths
	viper.AddConfigPath(".")
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		viper.AddConfigPath(filepath.Join(xdg, "goalkeeper"))
	}
	home, _ := os.UserHomeDir()
	viper.AddConfigPath(filepath.Join(home, ".config", "goalkeeper"))

	// Environment variables
	viper.SetEnvPrefix("GOALKEEPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found; ignore and use defaults
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Secrets usually arrive as $VAR references in the config file
	cfg.Discord.Token = expandEnv(cfg.Discord.Token)
	cfg.Anthropic.APIKey = expandEnv(cfg.Anthropic.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks structural settings. Credentials are checked by the
// commands that need them so that doctor can run without a bot token.
func (c *Config) Validate() error {
	if c.Discord.Prefix == "" {
		return fmt.Errorf("config: discord.prefix must not be empty")
	}
	if c.Anthropic.Model == "" {
		return fmt.Errorf("config: anthropic.model must not be empty")
	}
	if c.Store.Path == "" {
		return fmt.Errorf("config: store.path must not be empty")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("config: page_size must be at least 1")
	}
	if c.TransportLimit < 1 {
		return fmt.Errorf("config: transport_limit must be at least 1")
	}
	if c.Anthropic.MaxRetries < 0 {
		return fmt.Errorf("config: anthropic.max_retries must not be negative")
	}
	return nil
}

// unexpanded reports whether a secret still holds an unresolved $VAR
// reference, meaning the environment variable was never set.
func unexpanded(s string) bool {
	return strings.HasPrefix(s, "$")
}

// RequireDiscordToken errors when no usable bot token is configured.
func (c *Config) RequireDiscordToken() error {
	if c.Discord.Token == "" || unexpanded(c.Discord.Token) {
		return fmt.Errorf("config: discord.token is not set (export DISCORD_TOKEN or set it in config.yaml)")
	}
	return nil
}

// RequireAnthropicKey errors when no usable API key is configured.
func (c *Config) RequireAnthropicKey() error {
	if c.Anthropic.APIKey == "" || unexpanded(c.Anthropic.APIKey) {
		return fmt.Errorf("config: anthropic.api_key is not set (export ANTHROPIC_API_KEY or set it in config.yaml)")
	}
	return nil
}
