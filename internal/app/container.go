package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/calmbox/internal/datasource"
	inboxCommands "github.com/felixgeelhaar/calmbox/internal/inbox/application/commands"
	inboxQueries "github.com/felixgeelhaar/calmbox/internal/inbox/application/queries"
	"github.com/felixgeelhaar/calmbox/internal/inbox/application/session"
	inboxDomain "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	inboxServices "github.com/felixgeelhaar/calmbox/internal/inbox/services"
	inboxStore "github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/commands"
	"github.com/felixgeelhaar/calmbox/internal/productivity/application/queries"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	taskStore "github.com/felixgeelhaar/calmbox/internal/productivity/store"
	sharedDomain "github.com/felixgeelhaar/calmbox/internal/shared/domain"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/calmbox/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/calmbox/pkg/config"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Database
	SQLite   *sql.DB
	Postgres *pgxpool.Pool

	// Redis
	RedisClient *redis.Client

	// Repositories
	TaskRepo     task.Repository
	SnapshotRepo inboxDomain.SnapshotRepository

	// Events
	Bus            *eventbus.InProcessBus
	EventPublisher eventbus.Publisher

	// Ingestion
	DataSource datasource.DataSource

	// Session state
	Analyzer *inboxServices.HeuristicAnalyzer
	Emails   *inboxStore.EmailStore
	Tasks    *taskStore.TaskStore
	Session  *session.Service

	// Inbox handlers
	SyncInboxHandler     *inboxCommands.SyncInboxHandler
	ProcessEmailsHandler *inboxCommands.ProcessEmailsHandler
	MarkEmailHandler     *inboxCommands.MarkEmailHandler
	ListEmailsHandler    *inboxQueries.ListEmailsHandler
	GetEmailHandler      *inboxQueries.GetEmailHandler
	StatsHandler         *inboxQueries.GetStatsHandler
	AnalyzeTextHandler   *inboxQueries.AnalyzeTextHandler

	// Task handlers
	CreateTaskHandler       *commands.CreateTaskHandler
	UpdateTaskStatusHandler *commands.UpdateTaskStatusHandler
	ExtractTasksHandler     *commands.ExtractTasksHandler
	SyncTasksHandler        *commands.SyncTasksHandler
	ListTasksHandler        *queries.ListTasksHandler
	GetTaskHandler          *queries.GetTaskHandler

	// lastSource names where the inbox came from, for the session snapshot.
	sourceMu   sync.Mutex
	lastSource string
}

// NewContainer creates a new container with all dependencies.
// In development, unreachable Redis or RabbitMQ degrade to local
// stand-ins; elsewhere they are fatal.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	logger = observability.OrDefault(logger)
	c := &Container{
		Config:     cfg,
		Logger:     logger,
		Metrics:    observability.NewInMemoryMetrics(),
		Health:     observability.NewHealthRegistry(),
		lastSource: datasource.NameFixture,
	}

	if err := c.openDatabase(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.connectRedis(ctx); err != nil {
		c.Close()
		return nil, err
	}

	factory := NewRepositoryFactory(c.SQLite, c.Postgres, c.RedisClient)
	taskRepo, err := factory.TaskRepository()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create task repository: %w", err)
	}
	c.TaskRepo = taskRepo
	c.SnapshotRepo = factory.SnapshotRepository(cfg.SessionTTL)

	if err := c.connectEvents(); err != nil {
		c.Close()
		return nil, err
	}

	source, err := datasource.New(ctx, cfg, c.TaskRepo, c.Metrics, logger)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to create data source: %w", err)
	}
	c.DataSource = source

	c.wire()

	logger.Info("container ready",
		"user_id", cfg.UserID,
		"data_source", source.Name(),
		"database", cfg.DatabaseDriver,
		"redis", c.RedisClient != nil,
	)
	return c, nil
}

func (c *Container) openDatabase(ctx context.Context) error {
	cfg := c.Config

	switch cfg.DatabaseDriver {
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.Postgres = pool
		c.Health.Register("postgres", observability.PingChecker("postgres", true, pool.Ping))
		c.Logger.Info("connected to PostgreSQL")

	default:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite: %w", err)
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.SQLite = db
		c.Health.Register("sqlite", observability.PingChecker("sqlite", true, db.PingContext))
		c.Logger.Debug("opened SQLite database", "path", cfg.SQLitePath)
	}
	return nil
}

func (c *Container) connectRedis(ctx context.Context) error {
	cfg := c.Config
	if cfg.RedisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, inbox session will use local storage", "error", err)
		return nil
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, inbox session will use local storage", "error", err)
		return nil
	}

	c.RedisClient = client
	c.Health.Register("redis", observability.PingChecker("redis", false, func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}))
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) connectEvents() error {
	cfg := c.Config
	c.Bus = eventbus.NewInProcessBus(c.Logger)
	c.Bus.Subscribe(inboxDomain.RoutingKeyStressChanged, c.adviseBreak)

	var broker eventbus.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.EventsExchange, c.Logger)
		switch {
		case err == nil:
			broker = publisher
			c.Health.Register("rabbitmq", observability.PingChecker("rabbitmq", false, publisher.Ping))
		case cfg.IsDevelopment():
			c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
		default:
			return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
	}
	if broker == nil {
		broker = eventbus.NewNoopPublisher(c.Logger)
	}

	c.EventPublisher = eventbus.NewMultiPublisher(c.Metrics, c.Bus, broker)
	return nil
}

// adviseBreak logs a break suggestion whenever stress reaches the top level.
func (c *Container) adviseBreak(ctx context.Context, event sharedDomain.Event) error {
	var changed inboxDomain.StressChanged
	if err := event.DecodePayload(&changed); err != nil {
		return fmt.Errorf("failed to decode stress change: %w", err)
	}
	if changed.Current.NeedsBreak {
		c.Logger.WarnContext(ctx, "inbox stress is high, consider taking a break",
			"high_count", changed.Current.HighCount,
			"total", changed.Current.Total,
		)
	}
	return nil
}

func (c *Container) wire() {
	cfg := c.Config
	logger := c.Logger

	c.Analyzer = inboxServices.NewHeuristicAnalyzer(inboxServices.WithAnalyzerLogger(logger))
	c.Emails = inboxStore.NewEmailStore(c.Analyzer,
		inboxStore.WithClassifier(inboxServices.NewClassifier()),
		inboxStore.WithMetrics(c.Metrics),
		inboxStore.WithLogger(logger),
	)
	c.Tasks = taskStore.NewTaskStore(cfg.UserID)
	c.Session = session.NewService(cfg.UserID, c.Emails, c.SnapshotRepo, logger)

	// Create inbox handlers
	c.SyncInboxHandler = inboxCommands.NewSyncInboxHandler(cfg.UserID, c.Emails, c.DataSource, c.EventPublisher, logger)
	c.ProcessEmailsHandler = inboxCommands.NewProcessEmailsHandler(cfg.UserID, c.Emails, c.EventPublisher, logger)
	c.MarkEmailHandler = inboxCommands.NewMarkEmailHandler(c.Emails, logger)
	c.ListEmailsHandler = inboxQueries.NewListEmailsHandler(c.Emails)
	c.GetEmailHandler = inboxQueries.NewGetEmailHandler(c.Emails)
	c.StatsHandler = inboxQueries.NewGetStatsHandler(c.Emails)
	c.AnalyzeTextHandler = inboxQueries.NewAnalyzeTextHandler(c.Analyzer)

	// Create task handlers
	c.CreateTaskHandler = commands.NewCreateTaskHandler(c.Tasks, c.DataSource, c.EventPublisher, c.Metrics, logger)
	c.UpdateTaskStatusHandler = commands.NewUpdateTaskStatusHandler(c.Tasks, c.DataSource, c.EventPublisher, c.Metrics, logger)
	c.ExtractTasksHandler = commands.NewExtractTasksHandler(c.Emails, c.Tasks, c.DataSource, c.EventPublisher, c.Metrics, logger)
	c.SyncTasksHandler = commands.NewSyncTasksHandler(c.Tasks, c.DataSource, logger)
	c.ListTasksHandler = queries.NewListTasksHandler(c.Tasks)
	c.GetTaskHandler = queries.NewGetTaskHandler(c.Tasks)
}

// Bootstrap fills the session: the saved inbox is restored, or synced from
// the data source when nothing was saved, and tasks are loaded. The returned
// notices are the non-fatal advisories of any fallback.
func (c *Container) Bootstrap(ctx context.Context) ([]datasource.Notice, error) {
	var notices []datasource.Notice

	// A broken session store only costs the saved state; Restore logs it.
	restored, _ := c.Session.Restore(ctx)
	if !restored {
		result, err := c.SyncInboxHandler.Handle(ctx, inboxCommands.SyncInboxCommand{})
		if err != nil {
			return nil, err
		}
		c.SetSource(result.Source)
		if result.Notice != nil {
			notices = append(notices, *result.Notice)
		}
	}

	tasks, err := c.SyncTasksHandler.Handle(ctx, commands.SyncTasksCommand{})
	if err != nil {
		return notices, err
	}
	if tasks.Notice != nil {
		notices = append(notices, *tasks.Notice)
	}
	return notices, nil
}

// SetSource records where the inbox was last synced from.
func (c *Container) SetSource(source string) {
	c.sourceMu.Lock()
	c.lastSource = source
	c.sourceMu.Unlock()
}

// Source returns where the inbox was last synced from.
func (c *Container) Source() string {
	c.sourceMu.Lock()
	defer c.sourceMu.Unlock()
	return c.lastSource
}

// PersistSession saves the inbox; failures are logged by the session service.
func (c *Container) PersistSession(ctx context.Context) error {
	return c.Session.Persist(ctx, c.Source())
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		}
	}

	if c.Postgres != nil {
		c.Postgres.Close()
		c.Logger.Debug("PostgreSQL connection closed")
	}

	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			c.Logger.Warn("error closing SQLite connection", "error", err)
		}
	}
}
