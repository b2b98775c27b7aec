package app

import (
	"database/sql"
	"errors"
	"time"

	inboxDomain "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	inboxPersistence "github.com/felixgeelhaar/calmbox/internal/inbox/persistence"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	productivityPersistence "github.com/felixgeelhaar/calmbox/internal/productivity/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ErrNoDatabase is returned when a repository needs a database that was not opened.
var ErrNoDatabase = errors.New("no database connection")

// RepositoryFactory creates repositories for whichever stores are connected.
type RepositoryFactory struct {
	sqlite   *sql.DB
	postgres *pgxpool.Pool
	redis    *redis.Client
}

// NewRepositoryFactory creates a new repository factory. Any argument may be nil.
func NewRepositoryFactory(sqlite *sql.DB, postgres *pgxpool.Pool, redisClient *redis.Client) *RepositoryFactory {
	return &RepositoryFactory{
		sqlite:   sqlite,
		postgres: postgres,
		redis:    redisClient,
	}
}

// TaskRepository prefers Postgres over SQLite.
func (f *RepositoryFactory) TaskRepository() (task.Repository, error) {
	switch {
	case f.postgres != nil:
		return productivityPersistence.NewPostgresTaskRepository(f.postgres), nil
	case f.sqlite != nil:
		return productivityPersistence.NewSQLiteTaskRepository(f.sqlite), nil
	default:
		return nil, ErrNoDatabase
	}
}

// SnapshotRepository picks Redis, then SQLite, then process memory.
func (f *RepositoryFactory) SnapshotRepository(ttl time.Duration) inboxDomain.SnapshotRepository {
	switch {
	case f.redis != nil:
		return inboxPersistence.NewRedisSnapshotRepository(f.redis, ttl)
	case f.sqlite != nil:
		return inboxPersistence.NewSQLiteSnapshotRepository(f.sqlite)
	default:
		return inboxPersistence.NewMemorySnapshotRepository()
	}
}
