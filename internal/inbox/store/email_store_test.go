package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/services"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAnalyzer fails for bodies listed in failOn and records call order.
type scriptedAnalyzer struct {
	mu       sync.Mutex
	failOn   map[string]error
	fallback map[string]bool
	calls    []string
	onCall   func()
}

func (a *scriptedAnalyzer) Analyze(_ context.Context, text string) (domain.Analysis, error) {
	a.mu.Lock()
	a.calls = append(a.calls, text)
	a.mu.Unlock()

	if a.onCall != nil {
		a.onCall()
	}
	if err := a.failOn[text]; err != nil {
		return domain.Analysis{}, err
	}
	if a.fallback[text] {
		return domain.FallbackAnalysis(), nil
	}
	return domain.Analysis{
		StressLevel: domain.LevelLow,
		Priority:    domain.LevelLow,
		Summary:     "summary of " + text,
	}, nil
}

func sampleEmails() []domain.Email {
	return []domain.Email{
		{ID: "1", Subject: "one", Body: "body one", Category: "work"},
		{ID: "2", Subject: "two", Body: "body two", Category: "work"},
		{ID: "3", Subject: "three", Body: "body three", Category: "social"},
	}
}

func ids(emails []domain.Email) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = e.ID
	}
	return out
}

func TestEmailStore_Ingest(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})

	result := s.Ingest(sampleEmails())
	assert.Equal(t, IngestResult{Added: 3}, result)
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.List()))

	result = s.Ingest([]domain.Email{
		{ID: "2", Subject: "two v2", Body: "body two"},
		{ID: "4", Subject: "four"},
	})
	assert.Equal(t, IngestResult{Added: 1, Updated: 1}, result)
	assert.Equal(t, []string{"1", "2", "3", "4"}, ids(s.List()))

	got, ok := s.Get("2")
	require.True(t, ok)
	assert.Equal(t, "two v2", got.Subject)
	assert.Equal(t, "work", got.Category, "empty incoming category keeps the known one")
}

func TestEmailStore_IngestDuplicateInBatchLastWins(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})

	s.Ingest([]domain.Email{
		{ID: "1", Subject: "first"},
		{ID: "1", Subject: "second"},
	})

	assert.Equal(t, 1, s.Len())
	got, _ := s.Get("1")
	assert.Equal(t, "second", got.Subject)
}

func TestEmailStore_IngestKeepsAnalysisOfProcessedEmails(t *testing.T) {
	s := NewEmailStore(services.NewHeuristicAnalyzer())
	s.Ingest([]domain.Email{{ID: "1", Body: "URGENT: please reboot the server."}})

	_, err := s.Process(context.Background(), []string{"1"}, nil)
	require.NoError(t, err)
	before, _ := s.Get("1")
	require.True(t, before.Processed)

	s.Ingest([]domain.Email{{
		ID:          "1",
		Body:        "URGENT: please reboot the server.",
		StressLevel: domain.LevelLow,
		Priority:    domain.LevelLow,
		Processed:   false,
	}})

	after, _ := s.Get("1")
	assert.True(t, after.Processed)
	assert.Equal(t, before.StressLevel, after.StressLevel)
	assert.Equal(t, before.Priority, after.Priority)
	assert.Equal(t, before.Summary, after.Summary)
	assert.Equal(t, before.ActionItems, after.ActionItems)
}

func TestEmailStore_IngestKeepsLocalReadAndFlag(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})
	s.Ingest(sampleEmails())
	s.MarkRead("1")
	s.Flag("2")

	s.Ingest(sampleEmails())

	one, _ := s.Get("1")
	two, _ := s.Get("2")
	assert.True(t, one.Read)
	assert.True(t, two.Flagged)
}

func TestEmailStore_IngestCategorizesWithClassifier(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{}, WithClassifier(services.NewClassifier()))
	s.Ingest([]domain.Email{
		{ID: "1", Subject: "Server outage"},
		{ID: "2", Subject: "Lunch", Category: "custom"},
	})

	one, _ := s.Get("1")
	two, _ := s.Get("2")
	assert.Equal(t, "alerts", one.Category)
	assert.Equal(t, "custom", two.Category)
}

func TestEmailStore_Replace(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})
	s.Ingest(sampleEmails())
	s.MarkRead("3")
	_, err := s.Process(context.Background(), []string{"3"}, nil)
	require.NoError(t, err)

	s.Replace([]domain.Email{
		{ID: "3", Subject: "three", Body: "body three"},
		{ID: "5", Subject: "five"},
	})

	assert.Equal(t, []string{"3", "5"}, ids(s.List()))
	three, ok := s.Get("3")
	require.True(t, ok)
	assert.True(t, three.Read)
	assert.True(t, three.Processed)
	assert.Equal(t, "summary of body three", three.Summary)

	_, ok = s.Get("1")
	assert.False(t, ok)
}

func TestEmailStore_MarkReadAndFlag(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})
	s.Ingest(sampleEmails())

	assert.True(t, s.MarkRead("1"))
	assert.True(t, s.MarkRead("1"), "idempotent")
	assert.True(t, s.Flag("2"))
	assert.True(t, s.Flag("2"), "idempotent")

	assert.False(t, s.MarkRead("missing"))
	assert.False(t, s.Flag("missing"))
	assert.Equal(t, 3, s.Len(), "unknown IDs do not create records")

	one, _ := s.Get("1")
	two, _ := s.Get("2")
	assert.True(t, one.Read)
	assert.True(t, two.Flagged)

	assert.True(t, s.Unflag("2"))
	two, _ = s.Get("2")
	assert.False(t, two.Flagged)
}

func TestEmailStore_GetReturnsCopy(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})
	s.Ingest([]domain.Email{{ID: "1", ActionItems: []domain.ActionItem{{ID: "a"}}}})

	got, _ := s.Get("1")
	got.ActionItems[0].Completed = true
	got.Subject = "changed"

	again, _ := s.Get("1")
	assert.False(t, again.ActionItems[0].Completed)
	assert.Empty(t, again.Subject)
}

func TestEmailStore_Process(t *testing.T) {
	analyzer := &scriptedAnalyzer{}
	s := NewEmailStore(analyzer)
	s.Ingest(sampleEmails())

	var progress []float64
	report, err := s.Process(context.Background(), []string{"1", "2", "3"}, func(f float64) {
		progress = append(progress, f)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3"}, report.Processed)
	assert.Equal(t, []string{"body one", "body two", "body three"}, analyzer.calls)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 2.0 / 3, 1}, progress, 1e-9)
	assert.Equal(t, 1.0, progress[len(progress)-1])

	for _, e := range s.List() {
		assert.True(t, e.Processed)
		assert.NotEmpty(t, e.Summary)
		assert.True(t, e.StressLevel.IsValid())
	}
	assert.Empty(t, s.PendingIDs())
}

func TestEmailStore_ProcessContinuesAfterFailures(t *testing.T) {
	analyzer := &scriptedAnalyzer{
		failOn:   map[string]error{"body one": errors.New("model unavailable")},
		fallback: map[string]bool{"body two": true},
	}
	metrics := observability.NewInMemoryMetrics()
	s := NewEmailStore(analyzer, WithMetrics(metrics))
	s.Ingest(sampleEmails())

	var progress []float64
	report, err := s.Process(context.Background(), []string{"1", "2", "3"}, func(f float64) {
		progress = append(progress, f)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, report.Failed)
	assert.Equal(t, []string{"3"}, report.Processed)
	require.Len(t, progress, 3)
	assert.Equal(t, 1.0, progress[2])

	one, _ := s.Get("1")
	two, _ := s.Get("2")
	assert.False(t, one.Processed)
	assert.False(t, two.Processed)
	assert.Equal(t, []string{"1", "2"}, s.PendingIDs())

	assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricAnalysisFailures))
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEmailsProcessed))
	assert.Len(t, metrics.GetTimings(observability.MetricProcessDuration), 1)
}

func TestEmailStore_ProcessSkipsProcessedAndMissing(t *testing.T) {
	analyzer := &scriptedAnalyzer{}
	s := NewEmailStore(analyzer)
	s.Ingest(sampleEmails())
	_, err := s.Process(context.Background(), []string{"1"}, nil)
	require.NoError(t, err)

	var progress []float64
	report, err := s.Process(context.Background(), []string{"1", "ghost", "2"}, func(f float64) {
		progress = append(progress, f)
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, report.Skipped)
	assert.Equal(t, []string{"ghost"}, report.Missing)
	assert.Equal(t, []string{"2"}, report.Processed)
	assert.Len(t, analyzer.calls, 2, "processed email is not analyzed twice")
	assert.Len(t, progress, 3)
	assert.Equal(t, 1.0, progress[2])
}

func TestEmailStore_ProcessEmptyReportsComplete(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})

	var progress []float64
	report, err := s.Process(context.Background(), nil, func(f float64) {
		progress = append(progress, f)
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, progress)
	assert.Empty(t, report.Processed)
}

func TestEmailStore_ProcessProgressIsMonotonic(t *testing.T) {
	analyzer := &scriptedAnalyzer{failOn: map[string]error{"body two": errors.New("boom")}}
	s := NewEmailStore(analyzer)
	s.Ingest(sampleEmails())

	last := 0.0
	_, err := s.Process(context.Background(), []string{"3", "2", "1", "nope", "2"}, func(f float64) {
		assert.GreaterOrEqual(t, f, last)
		last = f
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, last)
}

func TestEmailStore_ProcessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	analyzer := &scriptedAnalyzer{}
	analyzer.onCall = cancel

	s := NewEmailStore(analyzer)
	s.Ingest(sampleEmails())

	report, err := s.Process(ctx, []string{"1", "2", "3"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"1"}, report.Processed)
	assert.Equal(t, []string{"2", "3"}, s.PendingIDs())
}

func TestEmailStore_StatsAndStress(t *testing.T) {
	s := NewEmailStore(services.NewHeuristicAnalyzer())
	s.Ingest([]domain.Email{
		{ID: "1", Body: "Please send the report.", Category: "work"},
		{ID: "2", Body: "Lunch on Friday.", Category: "social"},
	})
	_, err := s.Process(context.Background(), s.PendingIDs(), nil)
	require.NoError(t, err)

	stats := s.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, domain.LevelLow, stats.OverallPriority)
	require.Len(t, stats.ActionRequired, 1)
	assert.Equal(t, "1", stats.ActionRequired[0].ID)

	stress := s.Stress()
	assert.Equal(t, domain.LevelLow, stress.OverallLevel)
	assert.False(t, stress.NeedsBreak)

	s.MarkRead("1")
	assert.Equal(t, 1, s.Stats().Unread, "stats are recomputed after every mutation")
}

func TestEmailStore_ConcurrentMutations(t *testing.T) {
	s := NewEmailStore(&scriptedAnalyzer{})
	s.Ingest(sampleEmails())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(3)
		go func() { defer wg.Done(); s.MarkRead("1") }()
		go func() { defer wg.Done(); s.Flag("2") }()
		go func() { defer wg.Done(); _ = s.Stats() }()
	}
	wg.Wait()

	stats := s.Stats()
	assert.Equal(t, 2, stats.Unread)
	assert.Equal(t, 1, stats.Flagged)
}
