// Package datasource supplies emails and tasks to the session stores. A
// single DataSource is chosen when the application starts: fixture data for
// demos and tests, or a live mail provider plus the task repository.
package datasource

import (
	"context"
	"errors"
	"strings"

	inbox "github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
)

// Names reported by the data sources.
const (
	NameFixture = "fixture"
	NameLive    = "live"
)

// SampleDataMessage is shown whenever fixture data stands in for a failed
// live fetch.
const SampleDataMessage = "using sample data"

// ErrFetchFailed wraps every failure of a network-backed fetch.
var ErrFetchFailed = errors.New("fetch failed")

// Notice is a non-fatal advisory attached to fetched data.
type Notice struct {
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
}

// EmailBatch is the result of one email fetch.
type EmailBatch struct {
	Emails []inbox.Email
	Source string
	Notice *Notice
}

// Fallback reports whether the batch is sample data standing in for a failure.
func (b EmailBatch) Fallback() bool { return b.Notice != nil }

// TaskBatch is the result of one task fetch.
type TaskBatch struct {
	Tasks  []*task.Task
	Source string
	Notice *Notice
}

// Fallback reports whether the batch is sample data standing in for a failure.
func (b TaskBatch) Fallback() bool { return b.Notice != nil }

// DataSource feeds the session stores and confirms task changes.
type DataSource interface {
	Name() string
	FetchEmails(ctx context.Context) (EmailBatch, error)
	FetchTasks(ctx context.Context) (TaskBatch, error)
	// SaveTask confirms a task change. Failures are returned to the caller
	// so it can refetch authoritative state.
	SaveTask(ctx context.Context, t *task.Task) error
}

// MailFetcher retrieves raw emails from a mail provider.
type MailFetcher interface {
	FetchEmails(ctx context.Context) ([]inbox.Email, error)
}

// normalizeEmail tidies a record coming from a provider: levels are
// lowercased and default to low, and any analysis state is dropped so the
// email is analyzed locally.
func normalizeEmail(e inbox.Email) inbox.Email {
	e.ID = strings.TrimSpace(e.ID)
	e.Priority = normalizeLevel(e.Priority)
	e.StressLevel = normalizeLevel(e.StressLevel)
	e.Processed = false
	e.Summary = ""
	e.ActionItems = nil
	return e
}

func normalizeLevel(l inbox.Level) inbox.Level {
	parsed, err := inbox.ParseLevel(string(l))
	if err != nil {
		return inbox.LevelLow
	}
	return parsed
}
