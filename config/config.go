package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Search    SearchConfig
	Cache     CacheConfig
	Cart      CartConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds the retailer search service configuration
type SearchConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	DefaultLimit  int           `mapstructure:"default_limit"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate_per_second"`
	Burst         int           `mapstructure:"burst"`
	MaxAttempts   int           `mapstructure:"max_attempts"`
}

// CacheConfig holds search cache configuration
type CacheConfig struct {
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// CartConfig holds cart persistence configuration
type CartConfig struct {
	Type string `mapstructure:"type"` // "memory", "file" or "sqlite"
	Path string `mapstructure:"path"` // directory for "file", database file for "sqlite"
}

// SessionConfig holds shopping session configuration
type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "text"; empty picks by environment
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/preciosya/")

	// Environment variable settings: PRECIOSYA_SEARCH_BASE_URL -> search.base_url
	v.SetEnvPrefix("PRECIOSYA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return godotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "http://localhost:5173"})

	// Search service defaults
	v.SetDefault("search.base_url", "http://localhost:3000")
	v.SetDefault("search.default_limit", 15)
	v.SetDefault("search.timeout", "30s")
	v.SetDefault("search.rate_per_second", 5.0)
	v.SetDefault("search.burst", 10)
	v.SetDefault("search.max_attempts", 3)

	// Cache defaults
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.cleanup_interval", "5m")

	// Cart defaults
	v.SetDefault("cart.type", "file")
	v.SetDefault("cart.path", "data")

	// Session defaults
	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.sweep_interval", "10m")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)

	// Log defaults
	v.SetDefault("log.level", "")
	v.SetDefault("log.format", "")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Search.BaseURL == "" {
		return fmt.Errorf("search base URL is required (set PRECIOSYA_SEARCH_BASE_URL)")
	}
	if u, err := url.Parse(config.Search.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("search base URL must be an absolute URL, got: %s", config.Search.BaseURL)
	}

	if config.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search default limit must be positive, got: %d", config.Search.DefaultLimit)
	}

	switch config.Cart.Type {
	case "memory":
	case "file", "sqlite":
		if config.Cart.Path == "" {
			return fmt.Errorf("cart path is required when cart type is '%s'", config.Cart.Type)
		}
	default:
		return fmt.Errorf("cart type must be 'memory', 'file' or 'sqlite', got: %s", config.Cart.Type)
	}

	switch config.Log.Format {
	case "", "json", "text":
	default:
		return fmt.Errorf("log format must be 'json' or 'text', got: %s", config.Log.Format)
	}

	return nil
}
