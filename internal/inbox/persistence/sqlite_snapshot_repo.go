package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
)

// SQLiteSnapshotRepository keeps snapshots in the inbox_snapshots table of
// the local database.
type SQLiteSnapshotRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSnapshotRepository creates a SQLite-backed repository.
func NewSQLiteSnapshotRepository(dbConn *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{dbConn: dbConn}
}

// Save implements domain.SnapshotRepository.
func (r *SQLiteSnapshotRepository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	value, err := encodeSnapshot(snapshot)
	if err != nil {
		return err
	}

	_, err = r.dbConn.ExecContext(ctx, `
INSERT INTO inbox_snapshots (user_id, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		snapshot.UserID, string(value), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save inbox snapshot: %w", err)
	}
	return nil
}

// Load implements domain.SnapshotRepository.
func (r *SQLiteSnapshotRepository) Load(ctx context.Context, userID string) (*domain.Snapshot, error) {
	var payload string
	err := r.dbConn.QueryRowContext(ctx,
		`SELECT payload FROM inbox_snapshots WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load inbox snapshot: %w", err)
	}
	return decodeSnapshot([]byte(payload))
}

// Delete implements domain.SnapshotRepository.
func (r *SQLiteSnapshotRepository) Delete(ctx context.Context, userID string) error {
	if _, err := r.dbConn.ExecContext(ctx, `DELETE FROM inbox_snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("failed to delete inbox snapshot: %w", err)
	}
	return nil
}
