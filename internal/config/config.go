package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted in BACKEND.
const (
	BackendLocal    = "local"
	BackendFirebase = "firebase"
)

// Config holds all configuration for the application.
type Config struct {
	Port      string `mapstructure:"PORT"`
	GinMode   string `mapstructure:"GIN_MODE"`
	ClientURL string `mapstructure:"CLIENT_URL"`
	Backend   string `mapstructure:"BACKEND"`

	FirebaseProjectID                string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseAPIKey                   string `mapstructure:"FIREBASE_API_KEY"` // Web API key, used for password sign-in/sign-up
	GoogleApplicationCredentials     string `mapstructure:"GOOGLE_APPLICATION_CREDENTIALS"`
	FirebaseServiceAccountJSONBase64 string `mapstructure:"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64"`

	LocalDBPath    string `mapstructure:"LOCAL_DB_PATH"`
	LocalJWTSecret string `mapstructure:"LOCAL_JWT_SECRET"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	SessionTTLMinutes int `mapstructure:"SESSION_TTL_MINUTES"`
	// StorageTTLHours is how long a browser's sid cookie and its durable
	// storage (the saved theme) live without a visit. It outlives sessions.
	StorageTTLHours int `mapstructure:"STORAGE_TTL_HOURS"`
}

var keys = []string{
	"PORT",
	"GIN_MODE",
	"CLIENT_URL",
	"BACKEND",
	"FIREBASE_PROJECT_ID",
	"FIREBASE_API_KEY",
	"GOOGLE_APPLICATION_CREDENTIALS",
	"FIREBASE_SERVICE_ACCOUNT_JSON_BASE64",
	"LOCAL_DB_PATH",
	"LOCAL_JWT_SECRET",
	"REDIS_ADDR",
	"REDIS_PASSWORD",
	"REDIS_DB",
	"SESSION_TTL_MINUTES",
	"STORAGE_TTL_HOURS",
}

// LoadDotEnv loads a .env file outside release mode. A missing file is not an
// error; environment variables set directly always win.
func LoadDotEnv() error {
	if strings.EqualFold(os.Getenv("GIN_MODE"), "release") {
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from environment variables using Viper.
// Each call uses a fresh Viper instance so tests can load repeatedly.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("BACKEND", BackendLocal)
	v.SetDefault("LOCAL_DB_PATH", "portfolio.db")
	v.SetDefault("SESSION_TTL_MINUTES", 60)
	v.SetDefault("STORAGE_TTL_HOURS", 24*30)

	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the selected backend depends on.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendFirebase:
		if c.FirebaseProjectID == "" {
			return errors.New("FIREBASE_PROJECT_ID is required")
		}
		if c.FirebaseAPIKey == "" {
			return errors.New("FIREBASE_API_KEY is required")
		}
		if c.GoogleApplicationCredentials == "" && c.FirebaseServiceAccountJSONBase64 == "" {
			return errors.New("either GOOGLE_APPLICATION_CREDENTIALS or FIREBASE_SERVICE_ACCOUNT_JSON_BASE64 is required")
		}
	case BackendLocal:
		if len(c.LocalJWTSecret) < 16 {
			return errors.New("LOCAL_JWT_SECRET must be at least 16 bytes")
		}
	default:
		return fmt.Errorf("unknown BACKEND %q", c.Backend)
	}
	if c.SessionTTLMinutes <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}
	if c.StorageTTLHours <= 0 {
		return errors.New("STORAGE_TTL_HOURS must be positive")
	}
	return nil
}

// IsRelease reports whether gin should run in release mode.
func (c *Config) IsRelease() bool {
	return strings.EqualFold(c.GinMode, "release")
}

// SessionTTL is how long an idle in-memory session is kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// StorageTTL is how long a browser's durable storage is kept without a visit.
func (c *Config) StorageTTL() time.Duration {
	return time.Duration(c.StorageTTLHours) * time.Hour
}

// ThemeFile returns the file portfolioctl keeps the theme preference in:
// THEME_FILE when set, DefaultThemeFile otherwise. It does not need the
// backend settings LoadConfig validates.
func ThemeFile() string {
	v := viper.New()
	v.SetDefault("THEME_FILE", DefaultThemeFile())
	if err := v.BindEnv("THEME_FILE"); err != nil {
		return DefaultThemeFile()
	}
	return v.GetString("THEME_FILE")
}

// DefaultThemeFile is the per-user theme file under the OS config directory.
func DefaultThemeFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".portfolio-theme.json"
	}
	return dir + string(os.PathSeparator) + "portfolio" + string(os.PathSeparator) + "storage.json"
}
