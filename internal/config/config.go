package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PlaceholderSecret is the shipped session secret. Deployments must replace it.
const PlaceholderSecret = "change-me-kitchenhub-secret"

// Config holds all KitchenHub configuration.
type Config struct {
	SiteName string `yaml:"site_name"`

	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Session  SessionConfig  `yaml:"session"`
	Auth     AuthConfig     `yaml:"auth"`
	Contact  ContactConfig  `yaml:"contact"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	ReadTimeout    string   `yaml:"read_timeout"`
	WriteTimeout   string   `yaml:"write_timeout"`
	IdleTimeout    string   `yaml:"idle_timeout"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig configures the SQLite store.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// SessionConfig configures the signed session cookie.
type SessionConfig struct {
	Secret       string `yaml:"secret"`
	CookieName   string `yaml:"cookie_name"`
	TTL          string `yaml:"ttl"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

// AuthConfig configures password hashing and recipe ownership.
type AuthConfig struct {
	PasswordHash     string `yaml:"password_hash"` // argon2id, bcrypt
	EnforceOwnership bool   `yaml:"enforce_ownership"`
}

// ContactConfig selects where contact messages go.
type ContactConfig struct {
	Transport string      `yaml:"transport"` // log, redis
	Redis     RedisConfig `yaml:"redis"`
}

// RedisConfig configures the contact queue.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	List     string `yaml:"list"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		SiteName: "KitchenHub",
		Server: ServerConfig{
			Addr:         ":8081",
			ReadTimeout:  "15s",
			WriteTimeout: "15s",
			IdleTimeout:  "60s",
		},
		Database: DatabaseConfig{
			Path: "kitchenhub.db",
		},
		Session: SessionConfig{
			Secret:     PlaceholderSecret,
			CookieName: "kitchenhub_session",
			TTL:        "24h",
		},
		Auth: AuthConfig{
			PasswordHash: "argon2id",
		},
		Contact: ContactConfig{
			Transport: "log",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				List: "kitchenhub:contact",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A .env file in the working
// directory is read first; environment variables override the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// defaults
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("KITCHENHUB_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("KITCHENHUB_DB"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("KITCHENHUB_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("KITCHENHUB_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("KITCHENHUB_CONTACT_TRANSPORT"); v != "" {
		c.Contact.Transport = v
	}

	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Contact.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Contact.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Contact.Redis.DB = n
		}
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("session secret is required")
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name is required")
	}

	switch c.Auth.PasswordHash {
	case "argon2id", "bcrypt":
	default:
		return fmt.Errorf("unknown password hash %q", c.Auth.PasswordHash)
	}

	switch c.Contact.Transport {
	case "log":
	case "redis":
		if c.Contact.Redis.List == "" {
			return errors.New("contact.redis.list is required for the redis transport")
		}
	default:
		return fmt.Errorf("unknown contact transport %q", c.Contact.Transport)
	}
	return nil
}

// UsesPlaceholderSecret reports whether the shipped secret is still in use.
func (c *Config) UsesPlaceholderSecret() bool {
	return c.Session.Secret == PlaceholderSecret
}

// GetSessionTTL returns the session lifetime as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	return parseDuration(c.Session.TTL, 24*time.Hour)
}

// GetReadTimeout returns the server read timeout as a duration.
func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

// GetWriteTimeout returns the server write timeout as a duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 15*time.Second)
}

// GetIdleTimeout returns the server idle timeout as a duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return parseDuration(c.Server.IdleTimeout, 60*time.Second)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
