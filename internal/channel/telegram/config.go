package telegram

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/gg/gconv"
)

type Config struct {
	Token        string // Telegram Bot Token
	PollTimeout  time.Duration
	AllowedUsers []int64
}

func (c *Config) Validate() error {
	if c.Token == "" {
		return errors.New("telegram bot token cannot be empty")
	}
	if c.PollTimeout == 0 {
		c.PollTimeout = 30 * time.Second
	}
	return nil
}

func ParseConfig(configMap map[string]any) (*Config, error) {
	cfg := &Config{}

	token := gconv.To[string](configMap["token"])
	if token == "" {
		return nil, errors.New("telegram token is required")
	}
	cfg.Token = token

	if pollTimeout := gconv.To[int](configMap["poll_timeout"]); pollTimeout > 0 {
		cfg.PollTimeout = time.Duration(pollTimeout) * time.Second
	} else {
		cfg.PollTimeout = 30 * time.Second
	}

	if allowedUsersRaw, ok := configMap["allowed_users"].([]any); ok && len(allowedUsersRaw) > 0 {
		cfg.AllowedUsers = make([]int64, 0, len(allowedUsersRaw))
		for _, u := range allowedUsersRaw {
			userID := gconv.To[int64](u)
			if userID == 0 {
				return nil, fmt.Errorf("invalid user ID: %v", u)
			}
			cfg.AllowedUsers = append(cfg.AllowedUsers, userID)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid telegram config: %w", err)
	}

	return cfg, nil
}
