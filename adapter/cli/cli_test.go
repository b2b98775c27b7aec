package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	internalApp "github.com/felixgeelhaar/calmbox/internal/app"
	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg := &config.Config{
		AppEnv:         "test",
		UserID:         "local",
		DataSource:     config.DataSourceFixture,
		FetchTimeout:   time.Second,
		DatabaseDriver: config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "calmbox.db"),
		SessionTTL:     time.Hour,
	}
	ctx := context.Background()
	container, err := internalApp.NewContainer(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(container.Close)
	_, err = container.Bootstrap(ctx)
	require.NoError(t, err)
	return NewApp(container)
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := Execute(context.Background())
	return out.String(), errOut.String(), err
}

func TestRoot_InitializesAppOnce(t *testing.T) {
	SetApp(nil)
	defer SetApp(nil)
	defer SetInitializer(nil)

	calls := 0
	SetInitializer(func(ctx context.Context, configFile string, verbose bool) (*App, error) {
		calls++
		assert.Equal(t, "calmbox.env", configFile)
		app := newTestApp(t)
		app.Notices = []datasource.Notice{{Message: datasource.SampleDataMessage}}
		return app, nil
	})

	out, errOut, err := execute(t, "", "stress", "--config", "calmbox.env")
	require.NoError(t, err)
	assert.Contains(t, out, "Stress: HIGH (1 of 3 emails high, 33%)")
	assert.Contains(t, errOut, "note: "+datasource.SampleDataMessage)

	_, _, err = execute(t, "", "stress", "--config", "calmbox.env")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestVersion_SkipsApp(t *testing.T) {
	SetApp(nil)
	defer SetInitializer(nil)
	SetInitializer(func(context.Context, string, bool) (*App, error) {
		t.Fatal("version must not build the application")
		return nil, nil
	})

	out, _, err := execute(t, "", "version")

	require.NoError(t, err)
	assert.Contains(t, out, "calmbox dev")
	assert.Nil(t, GetApp())
}

func TestAnalyze_FromStdin(t *testing.T) {
	SetApp(newTestApp(t))
	defer SetApp(nil)

	out, _, err := execute(t, "URGENT: the deadline moved. Please send the numbers today.", "analyze", "-")
	require.NoError(t, err)

	assert.Contains(t, out, "Stress:    MEDIUM")
	assert.Contains(t, out, "Priority:  HIGH")
	assert.Contains(t, out, "Sentiment: -2")
	assert.Contains(t, out, "Summary:   URGENT: the deadline moved")
	assert.Contains(t, out, "- Please send the numbers today")
}

func TestAnalyze_EmptyText(t *testing.T) {
	SetApp(newTestApp(t))
	defer SetApp(nil)

	_, _, err := execute(t, "   ", "analyze")

	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	SetApp(newTestApp(t))
	defer SetApp(nil)

	out, _, err := execute(t, "", "health")
	require.NoError(t, err)

	assert.Contains(t, out, "status: healthy")
	assert.Contains(t, out, "sqlite")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "Server ...", Truncate("Server Outage", 10))
	assert.Equal(t, "ab", Truncate("abcdef", 2))
}

func TestLevelBadge(t *testing.T) {
	assert.Equal(t, "[HIGH]", LevelBadge(inbox.LevelHigh))
	assert.Equal(t, "[LOW] ", LevelBadge(inbox.LevelLow))
	assert.Equal(t, "[ -- ]", LevelBadge(""))
}
