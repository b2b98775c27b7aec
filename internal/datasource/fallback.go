package datasource

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// FallbackDataSource serves data from primary and substitutes the fallback
// source's data, with a notice, whenever a primary fetch fails. Saves are
// never redirected.
type FallbackDataSource struct {
	primary  DataSource
	fallback DataSource
	metrics  observability.Metrics
	logger   *slog.Logger
}

// WithFallback wraps primary. A nil metrics records nothing.
func WithFallback(primary, fallback DataSource, metrics observability.Metrics, logger *slog.Logger) *FallbackDataSource {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &FallbackDataSource{
		primary:  primary,
		fallback: fallback,
		metrics:  metrics,
		logger:   observability.OrDefault(logger),
	}
}

// Name reports the primary source.
func (f *FallbackDataSource) Name() string { return f.primary.Name() }

// FetchEmails implements DataSource.
func (f *FallbackDataSource) FetchEmails(ctx context.Context) (EmailBatch, error) {
	batch, err := f.primary.FetchEmails(ctx)
	if err == nil {
		return batch, nil
	}

	f.degrade(ctx, "emails", err)
	batch, ferr := f.fallback.FetchEmails(ctx)
	if ferr != nil {
		return EmailBatch{}, ferr
	}
	batch.Notice = &Notice{Message: SampleDataMessage, Reason: err.Error()}
	return batch, nil
}

// FetchTasks implements DataSource.
func (f *FallbackDataSource) FetchTasks(ctx context.Context) (TaskBatch, error) {
	batch, err := f.primary.FetchTasks(ctx)
	if err == nil {
		return batch, nil
	}

	f.degrade(ctx, "tasks", err)
	batch, ferr := f.fallback.FetchTasks(ctx)
	if ferr != nil {
		return TaskBatch{}, ferr
	}
	batch.Notice = &Notice{Message: SampleDataMessage, Reason: err.Error()}
	return batch, nil
}

// SaveTask implements DataSource.
func (f *FallbackDataSource) SaveTask(ctx context.Context, t *task.Task) error {
	return f.primary.SaveTask(ctx, t)
}

func (f *FallbackDataSource) degrade(ctx context.Context, kind string, err error) {
	f.metrics.Counter(observability.MetricIngestFallbacks, 1, observability.T("kind", kind))
	f.logger.WarnContext(ctx, "live fetch failed, "+SampleDataMessage,
		"kind", kind,
		"source", f.primary.Name(),
		"error", err,
	)
}
