package datasource

import (
	"context"
	"fmt"
	"time"

	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
)

// DefaultFetchTimeout bounds every network fetch.
const DefaultFetchTimeout = 15 * time.Second

// LiveDataSource reads email from a mail provider and tasks from the task
// repository.
type LiveDataSource struct {
	mail    MailFetcher
	tasks   task.Repository
	userID  string
	timeout time.Duration
}

// NewLiveDataSource creates a live source. A non-positive timeout uses
// DefaultFetchTimeout.
func NewLiveDataSource(mail MailFetcher, tasks task.Repository, userID string, timeout time.Duration) *LiveDataSource {
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	return &LiveDataSource{
		mail:    mail,
		tasks:   tasks,
		userID:  userID,
		timeout: timeout,
	}
}

// Name implements DataSource.
func (l *LiveDataSource) Name() string { return NameLive }

// FetchEmails pulls the inbox from the mail provider.
func (l *LiveDataSource) FetchEmails(ctx context.Context) (EmailBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	raw, err := l.mail.FetchEmails(ctx)
	if err != nil {
		return EmailBatch{}, fmt.Errorf("%w: emails: %w", ErrFetchFailed, err)
	}

	emails := make([]inbox.Email, 0, len(raw))
	for _, e := range raw {
		if e = normalizeEmail(e); e.ID != "" {
			emails = append(emails, e)
		}
	}
	return EmailBatch{Emails: emails, Source: NameLive}, nil
}

// FetchTasks loads the user's tasks from the repository.
func (l *LiveDataSource) FetchTasks(ctx context.Context) (TaskBatch, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tasks, err := l.tasks.FindByUserID(ctx, l.userID)
	if err != nil {
		return TaskBatch{}, fmt.Errorf("%w: tasks: %w", ErrFetchFailed, err)
	}
	return TaskBatch{Tasks: tasks, Source: NameLive}, nil
}

// SaveTask writes t to the repository.
func (l *LiveDataSource) SaveTask(ctx context.Context, t *task.Task) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := l.tasks.Save(ctx, t); err != nil {
		return fmt.Errorf("failed to confirm task %s: %w", t.ID(), err)
	}
	return nil
}
