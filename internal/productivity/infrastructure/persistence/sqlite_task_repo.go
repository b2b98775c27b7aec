package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
)

const sqliteUpsertTask = `
INSERT INTO tasks (
    id, user_id, title, description, status, priority, category, due_date,
    email_id, tags, position, created_at, updated_at, completed_at
) VALUES (
    ?, ?, ?, ?, ?, ?, ?, ?, ?, ?,
    (SELECT COALESCE(MAX(position), 0) + 1 FROM tasks WHERE user_id = ?),
    ?, ?, ?
)
ON CONFLICT (id) DO UPDATE SET
    title = excluded.title,
    description = excluded.description,
    status = excluded.status,
    priority = excluded.priority,
    category = excluded.category,
    due_date = excluded.due_date,
    email_id = excluded.email_id,
    tags = excluded.tags,
    updated_at = excluded.updated_at,
    completed_at = excluded.completed_at`

const sqliteSelectTask = `
SELECT id, user_id, title, description, status, priority, category, due_date,
       email_id, tags, created_at, updated_at, completed_at
FROM tasks`

// SQLiteTaskRepository implements task.Repository using SQLite.
type SQLiteTaskRepository struct {
	dbConn *sql.DB
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(dbConn *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{dbConn: dbConn}
}

// Save persists a task to the database.
func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	tags, err := json.Marshal(t.Tags())
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	_, err = r.dbConn.ExecContext(ctx, sqliteUpsertTask,
		t.ID().String(),
		t.UserID(),
		t.Title(),
		t.Description(),
		t.Status().String(),
		t.Priority().String(),
		t.Category(),
		formatNullTime(t.DueDate()),
		t.EmailID(),
		string(tags),
		t.UserID(),
		t.CreatedAt().Format(time.RFC3339Nano),
		t.UpdatedAt().Format(time.RFC3339Nano),
		formatNullTime(t.CompletedAt()),
	)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID(), err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, userID string, id uuid.UUID) (*task.Task, error) {
	row := r.dbConn.QueryRowContext(ctx, sqliteSelectTask+` WHERE user_id = ? AND id = ?`, userID, id.String())
	t, err := scanSQLiteTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", task.ErrTaskNotFound, id)
		}
		return nil, err
	}
	return t, nil
}

// FindByUserID retrieves all tasks for a user.
func (r *SQLiteTaskRepository) FindByUserID(ctx context.Context, userID string) ([]*task.Task, error) {
	rows, err := r.dbConn.QueryContext(ctx, sqliteSelectTask+` WHERE user_id = ? ORDER BY position, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanSQLiteTask(rows)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*task.Task, error) {
	var (
		id, userID, title, description, status, priority, category string
		emailID, tags, createdAt, updatedAt                        string
		dueDate, completedAt                                       sql.NullString
	)

	err := row.Scan(&id, &userID, &title, &description, &status, &priority, &category,
		&dueDate, &emailID, &tags, &createdAt, &updatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	snap := task.Snapshot{
		UserID:      userID,
		Title:       title,
		Description: description,
		Category:    category,
		EmailID:     emailID,
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
	if err := json.Unmarshal([]byte(tags), &snap.Tags); err != nil {
		return nil, fmt.Errorf("invalid tags in database: %w", err)
	}
	if snap.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at: %w", err)
	}
	if snap.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("invalid updated_at: %w", err)
	}
	if snap.DueDate, err = parseNullTime(dueDate); err != nil {
		return nil, fmt.Errorf("invalid due_date: %w", err)
	}
	if snap.CompletedAt, err = parseNullTime(completedAt); err != nil {
		return nil, fmt.Errorf("invalid completed_at: %w", err)
	}

	return task.Rehydrate(snap)
}

func formatNullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339Nano), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
