package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresUpsertTask = `
INSERT INTO tasks (
    id, user_id, title, description, status, priority, category, due_date,
    email_id, tags, position, created_at, updated_at, completed_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
    (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE user_id = $2),
    $11, $12, $13
)
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    status = EXCLUDED.status,
    priority = EXCLUDED.priority,
    category = EXCLUDED.category,
    due_date = EXCLUDED.due_date,
    email_id = EXCLUDED.email_id,
    tags = EXCLUDED.tags,
    updated_at = EXCLUDED.updated_at,
    completed_at = EXCLUDED.completed_at`

const postgresSelectTask = `
SELECT id, user_id, title, description, status, priority, category, due_date,
       email_id, tags, created_at, updated_at, completed_at
FROM tasks`

// PostgresTaskRepository implements task.Repository using PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// Save persists a task to the database.
func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	_, err := r.pool.Exec(ctx, postgresUpsertTask,
		t.ID().String(),
		t.UserID(),
		t.Title(),
		t.Description(),
		t.Status().String(),
		t.Priority().String(),
		t.Category(),
		t.DueDate(),
		t.EmailID(),
		t.Tags(),
		t.CreatedAt(),
		t.UpdatedAt(),
		t.CompletedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID(), err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*task.Task, error) {
	row := r.pool.QueryRow(ctx, postgresSelectTask+` WHERE user_id = $1 AND id = $2`, userID, id.String())
	t, err := scanPostgresTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

// FindByUserID retrieves all tasks for a user.
func (r *PostgresTaskRepository) FindByUserID(ctx context.Context, userID string) ([]*task.Task, error) {
	rows, err := r.pool.Query(ctx, postgresSelectTask+` WHERE user_id = $1 ORDER BY position, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanPostgresTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func scanPostgresTask(row pgx.Row) (*task.Task, error) {
	var (
		id, status, priority string
		dueDate, completedAt *time.Time
		snap                 task.Snapshot
	)

	err := row.Scan(&id, &snap.UserID, &snap.Title, &snap.Description, &status, &priority,
		&snap.Category, &dueDate, &snap.EmailID, &snap.Tags, &snap.CreatedAt, &snap.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	if snap.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	if snap.Status, err = task.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("invalid status in database: %w", err)
	}
	if snap.Priority, err = value_objects.ParsePriority(priority); err != nil {
		return nil, fmt.Errorf("invalid priority in database: %w", err)
	}
	snap.DueDate = dueDate
	snap.CompletedAt = completedAt

	return task.Rehydrate(snap)
}
