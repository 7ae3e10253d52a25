package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Telegram TelegramConfig `yaml:"telegram"`
	Auth     AuthConfig     `yaml:"auth"`
	Rewards  RewardsConfig  `yaml:"rewards"`
}

type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	BaseURL        string   `yaml:"base_url"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type TelegramConfig struct {
	Token    string  `yaml:"token"`
	AdminIDs []int64 `yaml:"admin_ids"`
}

type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	AdminSecret   string        `yaml:"admin_secret"`
	AdminTokenTTL time.Duration `yaml:"admin_token_ttl"`
}

type RewardsConfig struct {
	// ResetHour is a pointer so an explicit 0 (midnight) survives the
	// defaulting pass.
	ResetHour      *int          `yaml:"reset_hour"`
	Timezone       string        `yaml:"timezone"`
	AdTokenTTL     time.Duration `yaml:"ad_token_ttl"`
	DailyViewLimit int           `yaml:"daily_view_limit"`
	CheckinPoints  int64         `yaml:"checkin_points"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POINTSBOT_TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("POINTSBOT_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("POINTSBOT_ADMIN_SECRET"); v != "" {
		c.Auth.AdminSecret = v
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.Auth.AdminSecret == "" {
		return fmt.Errorf("auth.admin_secret is required")
	}
	if c.Rewards.ResetHour != nil && (*c.Rewards.ResetHour < 0 || *c.Rewards.ResetHour > 23) {
		return fmt.Errorf("rewards.reset_hour must be between 0 and 23")
	}
	if c.Rewards.Timezone != "" {
		if _, err := time.LoadLocation(c.Rewards.Timezone); err != nil {
			return fmt.Errorf("rewards.timezone: %w", err)
		}
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://%s:%d", c.Server.Host, c.Server.Port)
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/pointsbot.db"
	}
	if c.Auth.AdminTokenTTL == 0 {
		c.Auth.AdminTokenTTL = 12 * time.Hour
	}
	if c.Rewards.ResetHour == nil {
		hour := 10
		c.Rewards.ResetHour = &hour
	}
	if c.Rewards.Timezone == "" {
		c.Rewards.Timezone = "Asia/Shanghai"
	}
	if c.Rewards.AdTokenTTL == 0 {
		c.Rewards.AdTokenTTL = 300 * time.Second
	}
	if c.Rewards.DailyViewLimit == 0 {
		c.Rewards.DailyViewLimit = 3
	}
	if c.Rewards.CheckinPoints == 0 {
		c.Rewards.CheckinPoints = 5
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// ResetHour returns the configured reset hour. setDefaults() has already
// filled it in.
func (c *Config) ResetHour() int {
	return *c.Rewards.ResetHour
}

// Location resolves the configured timezone. validate() has already checked
// it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Rewards.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// IsAdmin reports whether a Telegram user ID is in the admin list.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.Telegram.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// VerifyURL builds the ad-verification callback link handed to users.
func (c *Config) VerifyURL(token string) string {
	return fmt.Sprintf("%s/api/v1/ads/verify?token=%s", strings.TrimRight(c.Server.BaseURL, "/"), token)
}
