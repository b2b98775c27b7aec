package cli

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/calmbox/internal/app"
	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inboxCommands "github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// ErrAppNotInitialized is returned by commands run without an application.
var ErrAppNotInitialized = errors.New("application not initialized")

// SessionSaver keeps the inbox between invocations.
type SessionSaver interface {
	SetSource(source string)
	PersistSession(ctx context.Context) error
}

// App holds the CLI application dependencies.
type App struct {
	// Inbox Command Handlers
	SyncInboxHandler     *inboxCommands.SyncInboxHandler
	ProcessEmailsHandler *inboxCommands.ProcessEmailsHandler
	MarkEmailHandler     *inboxCommands.MarkEmailHandler

	// Inbox Query Handlers
	ListEmailsHandler  *inboxQueries.ListEmailsHandler
	GetEmailHandler    *inboxQueries.GetEmailHandler
	StatsHandler       *inboxQueries.GetStatsHandler
	AnalyzeTextHandler *inboxQueries.AnalyzeTextHandler

	// Task Command Handlers
	CreateTaskHandler       *commands.CreateTaskHandler
	UpdateTaskStatusHandler *commands.UpdateTaskStatusHandler
	ExtractTasksHandler     *commands.ExtractTasksHandler

	// Task Query Handlers
	ListTasksHandler *queries.ListTasksHandler
	GetTaskHandler   *queries.GetTaskHandler

	Health  *observability.HealthRegistry
	Metrics *observability.InMemoryMetrics
	Config  *config.Config

	// Notices are the fallback advisories raised while loading the session.
	Notices []datasource.Notice

	// Current user (configured per environment)
	CurrentUserID string

	session SessionSaver
}

// NewApp creates a CLI application backed by the container.
func NewApp(c *app.Container) *App {
	return &App{
		SyncInboxHandler:        c.SyncInboxHandler,
		ProcessEmailsHandler:    c.ProcessEmailsHandler,
		MarkEmailHandler:        c.MarkEmailHandler,
		ListEmailsHandler:       c.ListEmailsHandler,
		GetEmailHandler:         c.GetEmailHandler,
		StatsHandler:            c.StatsHandler,
		AnalyzeTextHandler:      c.AnalyzeTextHandler,
		CreateTaskHandler:       c.CreateTaskHandler,
		UpdateTaskStatusHandler: c.UpdateTaskStatusHandler,
		ExtractTasksHandler:     c.ExtractTasksHandler,
		ListTasksHandler:        c.ListTasksHandler,
		GetTaskHandler:          c.GetTaskHandler,
		Health:                  c.Health,
		Metrics:                 c.Metrics,
		Config:                  c.Config,
		CurrentUserID:           c.Config.UserID,
		session:                 c,
	}
}

// SetSessionSaver replaces the session saver; nil keeps state in memory only.
func (a *App) SetSessionSaver(saver SessionSaver) {
	a.session = saver
}

// SaveSession persists the inbox after a mutating command. An empty source
// keeps the previous one.
func (a *App) SaveSession(ctx context.Context, source string) error {
	if a.session == nil {
		return nil
	}
	if source != "" {
		a.session.SetSource(source)
	}
	return a.session.PersistSession(ctx)
}

var currentApp *App

// SetApp sets the global CLI application.
func SetApp(app *App) {
	currentApp = app
}

// GetApp returns the global CLI application.
func GetApp() *App {
	return currentApp
}

// RequireApp returns the application or ErrAppNotInitialized.
func RequireApp() (*App, error) {
	if currentApp == nil {
		return nil, ErrAppNotInitialized
	}
	return currentApp, nil
}
