// Package session keeps an inbox alive between CLI invocations by saving
// the email store to a snapshot repository.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// Service restores and persists the inbox of one user.
type Service struct {
	userID string
	emails *store.EmailStore
	repo   domain.SnapshotRepository
	logger *slog.Logger
}

// NewService creates a session service. A nil repo disables persistence.
func NewService(userID string, emails *store.EmailStore, repo domain.SnapshotRepository, logger *slog.Logger) *Service {
	return &Service{
		userID: userID,
		emails: emails,
		repo:   repo,
		logger: observability.OrDefault(logger),
	}
}

// Restore loads the saved inbox into the store. It reports false when no
// snapshot exists.
func (s *Service) Restore(ctx context.Context) (bool, error) {
	if s.repo == nil {
		return false, nil
	}

	snapshot, err := s.repo.Load(ctx, s.userID)
	if errors.Is(err, domain.ErrSnapshotNotFound) {
		return false, nil
	}
	if err != nil {
		s.logger.WarnContext(ctx, "inbox session unavailable", "error", err)
		return false, fmt.Errorf("failed to restore inbox session: %w", err)
	}

	s.emails.Replace(snapshot.Emails)
	s.logger.DebugContext(ctx, "inbox session restored",
		"emails", len(snapshot.Emails),
		"source", snapshot.Source,
		"saved_at", snapshot.SavedAt,
	)
	return true, nil
}

// Persist saves the current inbox.
func (s *Service) Persist(ctx context.Context, source string) error {
	if s.repo == nil {
		return nil
	}

	err := s.repo.Save(ctx, domain.Snapshot{
		UserID: s.userID,
		Source: source,
		Emails: s.emails.List(),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist inbox session", "error", err)
		return fmt.Errorf("failed to persist inbox session: %w", err)
	}
	return nil
}

// Clear deletes the saved inbox.
func (s *Service) Clear(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Delete(ctx, s.userID); err != nil {
		return fmt.Errorf("failed to clear inbox session: %w", err)
	}
	return nil
}
