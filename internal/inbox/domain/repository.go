package domain

import (
	"context"
	"time"
)

// Snapshot is the persisted state of one user's inbox session.
type Snapshot struct {
	UserID  string    `json:"user_id"`
	Source  string    `json:"source"`
	Emails  []Email   `json:"emails"`
	SavedAt time.Time `json:"saved_at"`
}

// SnapshotRepository persists inbox sessions between runs.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot Snapshot) error
	// Load returns ErrSnapshotNotFound when nothing was saved for userID.
	Load(ctx context.Context, userID string) (*Snapshot, error)
	Delete(ctx context.Context, userID string) error
}
