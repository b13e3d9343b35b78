package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edisonhq/edison/internal/consts"
)

type (
	Config struct {
		Logging  LoggingConfig            `yaml:"logging"`
		Skills   SkillsConfig             `yaml:"skills"`
		Channels map[string]ChannelConfig `yaml:"channels"`
		Reminder ReminderConfig           `yaml:"reminder"`

		// Vars holds the host configuration values skills declare in their
		// required_config/optional_config lists. Environment variables of
		// the same name act as a fallback.
		Vars map[string]string `yaml:"vars"`
	}

	LoggingConfig struct {
		Level      string `yaml:"level"`  // debug, info, warn, error
		Format     string `yaml:"format"` // json, text
		Output     string `yaml:"output"` // stdout, file, both
		File       string `yaml:"file"`
		MaxSize    int    `yaml:"max_size"` // MB
		MaxBackups int    `yaml:"max_backups"`
		MaxAge     int    `yaml:"max_age"` // days
	}

	SkillsConfig struct {
		Dir string `yaml:"dir"`
	}

	ChannelConfig struct {
		ID      string         `yaml:"-"`
		Type    string         `yaml:"type"` // telegram
		Enabled bool           `yaml:"enabled"`
		Config  map[string]any `yaml:"config"`
	}

	ReminderConfig struct {
		StorePath          string `yaml:"store_path"`
		MaxConcurrentFires int    `yaml:"max_concurrent_fires"`
		FireTimeoutSec     int    `yaml:"fire_timeout_sec"`
	}
)

func Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	c.Skills.Dir = strings.TrimSpace(c.Skills.Dir)
	if c.Skills.Dir == "" {
		c.Skills.Dir = consts.DefaultSkillsDir()
	}

	normalized := make(map[string]ChannelConfig, len(c.Channels))
	for key, one := range c.Channels {
		channelID := strings.TrimSpace(key)
		if channelID == "" {
			return fmt.Errorf("channel id cannot be empty")
		}
		one.ID = channelID
		if strings.TrimSpace(one.Type) == "" {
			return fmt.Errorf("channel %s: type is required", channelID)
		}
		normalized[channelID] = one
	}
	c.Channels = normalized

	return nil
}

// Value implements skill.ConfigSource: configured vars first, environment
// second, nil when the key is unknown.
func (c *Config) Value(key string) any {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	if c != nil {
		if v, ok := c.Vars[key]; ok {
			return v
		}
		if v, ok := c.Vars[strings.ToUpper(key)]; ok {
			return v
		}
	}

	if v, ok := os.LookupEnv(strings.ToUpper(key)); ok {
		return v
	}
	return nil
}
