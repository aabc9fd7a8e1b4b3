package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath = "config.toml"
	DefaultHTTPAddr   = ":8080"
	DefaultPGHost     = "127.0.0.1"
	DefaultPGPort     = 5432
	DefaultPGUser     = "postgres"
	DefaultPGDatabase = "handoff"
	DefaultPGSSLMode  = "disable"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	Platform PlatformConfig `toml:"platform"`
	Session  SessionConfig  `toml:"session"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
}

type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// DSN returns the pgx connection string for the configured database.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// PlatformConfig holds the contact-center platform connection settings.
// WebhookSecret is the shared secret for inbound webhook signature
// verification; when empty, signature validation is skipped by policy.
type PlatformConfig struct {
	OAuthURL      string `toml:"oauth_url" validate:"required,url"`
	APIURL        string `toml:"api_url" validate:"required,url"`
	IntegrationID string `toml:"integration_id" validate:"required"`
	ClientID      string `toml:"client_id" validate:"required"`
	ClientSecret  string `toml:"client_secret" validate:"required"`
	WebhookSecret string `toml:"webhook_secret"`
}

// SessionConfig configures the conversational-AI session endpoint.
type SessionConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
}

func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks that the platform section carries everything the relay and
// authenticator need. Called at startup rather than in Load so commands that
// never reach the platform can still run with a partial config file.
func (c Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.Platform); err != nil {
		return fmt.Errorf("platform config: %w", err)
	}
	return nil
}
