package task

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for task persistence.
type Repository interface {
	// Save inserts or updates a task. New tasks are ordered after every
	// task the user already has.
	Save(ctx context.Context, task *Task) error
	// FindByID returns ErrTaskNotFound when the user has no such task.
	FindByID(ctx context.Context, userID string, id uuid.UUID) (*Task, error)
	// FindByUserID returns the user's tasks in insertion order.
	FindByUserID(ctx context.Context, userID string) ([]*Task, error)
}
