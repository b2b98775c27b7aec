// Package store holds the in-memory inbox for a session.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/services"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

var errFallback = errors.New("analyzer returned the fallback record")

// ProgressFunc receives the fraction of requested emails handled so far.
type ProgressFunc func(fraction float64)

// ProcessReport lists what happened to each requested ID.
type ProcessReport struct {
	Processed []string `json:"processed"`
	Skipped   []string `json:"skipped"`
	Failed    []string `json:"failed"`
	Missing   []string `json:"missing"`
}

// IngestResult counts how an ingested batch was merged.
type IngestResult struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
}

// EmailStore is the ordered, ID-unique email collection of a session. Every
// public method is atomic; analysis runs outside the lock.
type EmailStore struct {
	mu     sync.RWMutex
	emails []domain.Email
	index  map[string]int

	analyzer   services.Analyzer
	classifier *services.Classifier
	metrics    observability.Metrics
	logger     *slog.Logger
}

// Option configures an EmailStore.
type Option func(*EmailStore)

// WithClassifier fills in missing categories on ingest.
func WithClassifier(c *services.Classifier) Option {
	return func(s *EmailStore) { s.classifier = c }
}

// WithMetrics records processing counters.
func WithMetrics(m observability.Metrics) Option {
	return func(s *EmailStore) { s.metrics = m }
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *EmailStore) { s.logger = logger }
}

// NewEmailStore creates an empty store that analyzes with analyzer.
func NewEmailStore(analyzer services.Analyzer, opts ...Option) *EmailStore {
	s := &EmailStore{
		index:    make(map[string]int),
		analyzer: analyzer,
		metrics:  observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = observability.OrDefault(s.logger)
	return s
}

// Ingest merges emails into the collection. Known IDs are updated in place
// and new IDs are appended in order; a later duplicate in the batch wins.
func (s *EmailStore) Ingest(emails []domain.Email) IngestResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result IngestResult
	for _, incoming := range emails {
		if i, ok := s.index[incoming.ID]; ok {
			s.emails[i] = s.merge(s.emails[i], incoming)
			result.Updated++
			continue
		}
		s.index[incoming.ID] = len(s.emails)
		s.emails = append(s.emails, s.prepare(incoming))
		result.Added++
	}

	s.metrics.Counter(observability.MetricEmailsIngested, int64(len(emails)))
	return result
}

// Replace makes emails the whole collection, in their order. Emails that
// were already known keep their analysis and local read/flag state.
func (s *EmailStore) Replace(emails []domain.Email) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := make(map[string]domain.Email, len(s.emails))
	for _, e := range s.emails {
		previous[e.ID] = e
	}

	s.emails = make([]domain.Email, 0, len(emails))
	s.index = make(map[string]int, len(emails))
	for _, incoming := range emails {
		next := s.prepare(incoming)
		if old, ok := previous[incoming.ID]; ok {
			next = s.merge(old, incoming)
		}
		if i, ok := s.index[incoming.ID]; ok {
			s.emails[i] = s.merge(s.emails[i], incoming)
			continue
		}
		s.index[incoming.ID] = len(s.emails)
		s.emails = append(s.emails, next)
	}

	s.metrics.Counter(observability.MetricEmailsIngested, int64(len(emails)))
}

func (s *EmailStore) prepare(e domain.Email) domain.Email {
	e = e.Clone()
	if e.Category == "" && s.classifier != nil {
		e.Category = s.classifier.Categorize(e)
	}
	return e
}

// merge combines a stored email with a fresh copy from the source. Analysis
// of a processed email survives, and read/flag state is never cleared.
func (s *EmailStore) merge(existing, incoming domain.Email) domain.Email {
	merged := s.prepare(incoming)
	merged.Read = existing.Read || incoming.Read
	merged.Flagged = existing.Flagged || incoming.Flagged
	if incoming.Category == "" && existing.Category != "" {
		merged.Category = existing.Category
	}

	if existing.Processed {
		merged.Processed = true
		merged.StressLevel = existing.StressLevel
		merged.Priority = existing.Priority
		merged.SentimentScore = existing.SentimentScore
		merged.Summary = existing.Summary
		merged.ActionItems = append([]domain.ActionItem(nil), existing.ActionItems...)
	}
	return merged
}

// MarkRead marks an email read. Unknown IDs are ignored; the return value
// reports whether the ID exists.
func (s *EmailStore) MarkRead(id string) bool {
	return s.update(id, func(e *domain.Email) { e.Read = true })
}

// Flag flags an email. Unknown IDs are ignored.
func (s *EmailStore) Flag(id string) bool {
	return s.update(id, func(e *domain.Email) { e.Flagged = true })
}

// Unflag clears the flag. Unknown IDs are ignored.
func (s *EmailStore) Unflag(id string) bool {
	return s.update(id, func(e *domain.Email) { e.Flagged = false })
}

func (s *EmailStore) update(id string, fn func(e *domain.Email)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return false
	}
	fn(&s.emails[i])
	return true
}

// Get returns a copy of the email with id.
func (s *EmailStore) Get(id string) (domain.Email, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Email{}, false
	}
	return s.emails[i].Clone(), true
}

// List returns a copy of the collection in order.
func (s *EmailStore) List() []domain.Email {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Email, len(s.emails))
	for i, e := range s.emails {
		out[i] = e.Clone()
	}
	return out
}

// Len returns the number of emails.
func (s *EmailStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.emails)
}

// PendingIDs returns the IDs of emails not yet processed, in order.
func (s *EmailStore) PendingIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for _, e := range s.emails {
		if !e.Processed {
			ids = append(ids, e.ID)
		}
	}
	return ids
}

// Stats derives statistics from the current collection.
func (s *EmailStore) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.ComputeStats(s.emails)
}

// Stress derives the current stress snapshot.
func (s *EmailStore) Stress() domain.StressSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return services.AggregateStress(s.emails)
}

// Process analyzes the referenced emails one at a time. Progress is
// reported after every ID, so it is non-decreasing and ends at 1. A failed
// analysis leaves that email unprocessed and the batch continues. Only
// context cancellation stops the batch early.
func (s *EmailStore) Process(ctx context.Context, ids []string, progress ProgressFunc) (ProcessReport, error) {
	report := ProcessReport{
		Processed: []string{},
		Skipped:   []string{},
		Failed:    []string{},
		Missing:   []string{},
	}
	if progress == nil {
		progress = func(float64) {}
	}
	if len(ids) == 0 {
		progress(1)
		return report, nil
	}

	start := time.Now()
	defer func() {
		s.metrics.Timing(observability.MetricProcessDuration, time.Since(start))
	}()

	total := float64(len(ids))
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		s.processOne(ctx, id, &report)
		progress(float64(i+1) / total)
	}

	return report, nil
}

func (s *EmailStore) processOne(ctx context.Context, id string, report *ProcessReport) {
	email, ok := s.Get(id)
	switch {
	case !ok:
		report.Missing = append(report.Missing, id)
		return
	case email.Processed:
		report.Skipped = append(report.Skipped, id)
		return
	}

	analysis, err := s.analyzer.Analyze(ctx, email.Body)
	if err == nil && analysis.Fallback {
		err = errFallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		report.Missing = append(report.Missing, id)
		return
	}

	if err != nil {
		s.emails[i].Processed = false
		report.Failed = append(report.Failed, id)
		s.metrics.Counter(observability.MetricAnalysisFailures, 1)
		s.logger.WarnContext(ctx, "email analysis failed", "email_id", id, "error", err)
		return
	}

	s.emails[i].Apply(analysis)
	report.Processed = append(report.Processed, id)
	s.metrics.Counter(observability.MetricEmailsProcessed, 1)
	s.logger.DebugContext(ctx, "email processed",
		"email_id", id,
		"stress", analysis.StressLevel,
		"priority", analysis.Priority,
	)
}
