package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all calmbox-related environment variables.
func clearEnvVars() {
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "CALMBOX_USER_ID",
		"DATA_SOURCE", "MAIL_PROVIDER", "FETCH_TIMEOUT",
		"MAIL_API_URL", "MAIL_API_TOKEN",
		"MAIL_OAUTH_CLIENT_ID", "MAIL_OAUTH_CLIENT_SECRET", "MAIL_OAUTH_TOKEN_URL", "MAIL_OAUTH_SCOPES",
		"GMAIL_CREDENTIALS_FILE", "GMAIL_TOKEN_FILE", "GMAIL_QUERY", "GMAIL_MAX_RESULTS",
		"BREAKER_MAX_FAILURES", "BREAKER_TIMEOUT",
		"DATABASE_DRIVER", "SQLITE_PATH", "DATABASE_URL",
		"REDIS_URL", "SESSION_TTL",
		"RABBITMQ_URL", "EVENTS_EXCHANGE",
		"HTTP_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "local", cfg.UserID)

	assert.Equal(t, DataSourceFixture, cfg.DataSource)
	assert.Equal(t, MailProviderHTTP, cfg.MailProvider)
	assert.Equal(t, 15*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.UsesLiveData())

	assert.Equal(t, "credentials.json", cfg.GmailCredentialsFile)
	assert.Equal(t, "token.json", cfg.GmailTokenFile)
	assert.Equal(t, "in:inbox", cfg.GmailQuery)
	assert.Equal(t, 25, cfg.GmailMaxResults)

	assert.Equal(t, 3, cfg.BreakerMaxFailures)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)

	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Contains(t, cfg.SQLitePath, "calmbox.db")
	assert.Empty(t, cfg.DatabaseURL)

	assert.Empty(t, cfg.RedisURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, "calmbox.events", cfg.EventsExchange)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":8090", cfg.MCPAddr)
	assert.Empty(t, cfg.MCPAuthToken)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("APP_ENV", "production")
	os.Setenv("DATA_SOURCE", "live")
	os.Setenv("MAIL_PROVIDER", "gmail")
	os.Setenv("FETCH_TIMEOUT", "5s")
	os.Setenv("GMAIL_MAX_RESULTS", "50")
	os.Setenv("DATABASE_DRIVER", "postgres")
	os.Setenv("DATABASE_URL", "postgres://calmbox@localhost/calmbox")
	os.Setenv("SESSION_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.UsesLiveData())
	assert.Equal(t, MailProviderGmail, cfg.MailProvider)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 50, cfg.GmailMaxResults)
	assert.Equal(t, DriverPostgres, cfg.DatabaseDriver)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
}

func TestLoad_InvalidNumbersFallBackToDefaults(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("GMAIL_MAX_RESULTS", "many")
	os.Setenv("BREAKER_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.GmailMaxResults)
	assert.Equal(t, 30*time.Second, cfg.BreakerTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			DataSource:     DataSourceFixture,
			MailProvider:   MailProviderHTTP,
			DatabaseDriver: DriverSQLite,
			FetchTimeout:   time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown data source", mutate: func(c *Config) { c.DataSource = "mock" }, wantErr: "DATA_SOURCE"},
		{name: "unknown provider", mutate: func(c *Config) { c.MailProvider = "imap" }, wantErr: "MAIL_PROVIDER"},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: "DATABASE_DRIVER"},
		{name: "zero timeout", mutate: func(c *Config) { c.FetchTimeout = 0 }, wantErr: "FETCH_TIMEOUT"},
		{name: "postgres without url", mutate: func(c *Config) { c.DatabaseDriver = DriverPostgres }, wantErr: "DATABASE_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RejectsInvalidDataSource(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	os.Setenv("DATA_SOURCE", "mock")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	path := filepath.Join(t.TempDir(), "calmbox.env")
	require.NoError(t, os.WriteFile(path, []byte("CALMBOX_USER_ID=alex\nFETCH_TIMEOUT=5s\n"), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "alex", cfg.UserID)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
}

func TestLoadFile_Missing(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
