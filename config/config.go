package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type ServerConfig struct {
	Port      int    `toml:"port"`
	StaticDir string `toml:"static_dir"` // built SPA bundle
}

type StorageConfig struct {
	DataDir string `toml:"data_dir"`
}

type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret"`
	SessionHours   int    `toml:"session_hours"`
	MinPasswordLen int    `toml:"min_password_len"`
	LoginDelayMs   int    `toml:"login_delay_ms"` // artificial latency on failed credentials
	RatePerMinute  int    `toml:"rate_per_minute"`
	SecureCookies  bool   `toml:"secure_cookies"`
}

type PomodoroConfig struct {
	FocusMinutes      int `toml:"focus_minutes"`
	ShortBreakMinutes int `toml:"short_break_minutes"`
	LongBreakMinutes  int `toml:"long_break_minutes"`
}

type Config struct {
	Server   ServerConfig   `toml:"server"`
	Storage  StorageConfig  `toml:"storage"`
	Auth     AuthConfig     `toml:"auth"`
	Pomodoro PomodoroConfig `toml:"pomodoro"`
}

// LoadConfig reads the TOML config file, falling back to defaults for any
// missing value. A .env file, if present, is loaded first so environment
// overrides work both in containers and in local development.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	config := defaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, config); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (or set PREPPILOT_JWT_SECRET)")
	}

	return config, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      8080,
			StaticDir: "./dist",
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Auth: AuthConfig{
			SessionHours:   24,
			MinPasswordLen: 6,
			LoginDelayMs:   1000,
			RatePerMinute:  100,
		},
		Pomodoro: PomodoroConfig{
			FocusMinutes:      25,
			ShortBreakMinutes: 5,
			LongBreakMinutes:  15,
		},
	}
}

func applyEnvOverrides(config *Config) {
	if v := os.Getenv("PREPPILOT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Server.Port = port
		}
	}
	if v := os.Getenv("PREPPILOT_STATIC_DIR"); v != "" {
		config.Server.StaticDir = v
	}
	if v := os.Getenv("PREPPILOT_DATA_DIR"); v != "" {
		config.Storage.DataDir = v
	}
	if v := os.Getenv("PREPPILOT_JWT_SECRET"); v != "" {
		config.Auth.JWTSecret = v
	}
}

// SessionTTL returns the configured session lifetime.
func (c *AuthConfig) SessionTTL() time.Duration {
	return time.Duration(c.SessionHours) * time.Hour
}

// LoginDelay returns the artificial delay applied to failed logins.
func (c *AuthConfig) LoginDelay() time.Duration {
	return time.Duration(c.LoginDelayMs) * time.Millisecond
}
