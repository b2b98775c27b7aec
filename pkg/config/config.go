package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Data source modes.
const (
	DataSourceFixture = "fixture"
	DataSourceLive    = "live"
)

// Mail providers used by the live data source.
const (
	MailProviderHTTP  = "http"
	MailProviderGmail = "gmail"
)

// Database drivers for the task repository.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string

	// Ingestion
	DataSource   string
	MailProvider string
	FetchTimeout time.Duration

	// HTTP mail API
	MailAPIURL        string
	MailAPIToken      string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthScopes       string

	// Gmail
	GmailCredentialsFile string
	GmailTokenFile       string
	GmailQuery           string
	GmailMaxResults      int

	// Circuit breaker
	BreakerMaxFailures int
	BreakerTimeout     time.Duration

	// Database
	DatabaseDriver string
	SQLitePath     string
	DatabaseURL    string

	// Redis
	RedisURL   string
	SessionTTL time.Duration

	// RabbitMQ
	RabbitMQURL    string
	EventsExchange string

	// HTTP API
	HTTPAddr string

	// MCP
	MCPAddr      string
	MCPAuthToken string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()
	return fromEnv()
}

// LoadFile loads configuration from the given .env file and the environment.
// Variables already set in the environment win over the file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return Load()
	}
	if err := godotenv.Load(path); err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return fromEnv()
}

func fromEnv() (*Config, error) {
	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
		UserID:    getEnv("CALMBOX_USER_ID", "local"),

		DataSource:   getEnv("DATA_SOURCE", DataSourceFixture),
		MailProvider: getEnv("MAIL_PROVIDER", MailProviderHTTP),
		FetchTimeout: getDurationEnv("FETCH_TIMEOUT", 15*time.Second),

		MailAPIURL:        getEnv("MAIL_API_URL", ""),
		MailAPIToken:      getEnv("MAIL_API_TOKEN", ""),
		OAuthClientID:     getEnv("MAIL_OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("MAIL_OAUTH_CLIENT_SECRET", ""),
		OAuthTokenURL:     getEnv("MAIL_OAUTH_TOKEN_URL", ""),
		OAuthScopes:       getEnv("MAIL_OAUTH_SCOPES", ""),

		GmailCredentialsFile: getEnv("GMAIL_CREDENTIALS_FILE", "credentials.json"),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		GmailQuery:           getEnv("GMAIL_QUERY", "in:inbox"),
		GmailMaxResults:      getIntEnv("GMAIL_MAX_RESULTS", 25),

		BreakerMaxFailures: getIntEnv("BREAKER_MAX_FAILURES", 3),
		BreakerTimeout:     getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		DatabaseDriver: getEnv("DATABASE_DRIVER", DriverSQLite),
		SQLitePath:     getEnv("SQLITE_PATH", defaultSQLitePath()),
		DatabaseURL:    getEnv("DATABASE_URL", ""),

		RedisURL:   getEnv("REDIS_URL", ""),
		SessionTTL: getDurationEnv("SESSION_TTL", 24*time.Hour),

		RabbitMQURL:    getEnv("RABBITMQ_URL", ""),
		EventsExchange: getEnv("EVENTS_EXCHANGE", "calmbox.events"),

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		MCPAddr:      getEnv("MCP_ADDR", ":8090"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate reports the first inconsistent setting.
func (c *Config) Validate() error {
	switch c.DataSource {
	case DataSourceFixture, DataSourceLive:
	default:
		return fmt.Errorf("invalid DATA_SOURCE %q: want %s or %s", c.DataSource, DataSourceFixture, DataSourceLive)
	}

	switch c.MailProvider {
	case MailProviderHTTP, MailProviderGmail:
	default:
		return fmt.Errorf("invalid MAIL_PROVIDER %q: want %s or %s", c.MailProvider, MailProviderHTTP, MailProviderGmail)
	}

	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid DATABASE_DRIVER %q: want %s or %s", c.DatabaseDriver, DriverSQLite, DriverPostgres)
	}

	if c.FetchTimeout <= 0 {
		return errors.New("FETCH_TIMEOUT must be positive")
	}

	if c.DatabaseDriver == DriverPostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres driver")
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesLiveData reports whether ingestion talks to a real mail provider.
func (c *Config) UsesLiveData() bool {
	return c.DataSource == DataSourceLive
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".calmbox", "calmbox.db")
	}
	return filepath.Join(home, ".calmbox", "calmbox.db")
}
