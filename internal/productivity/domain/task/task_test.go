package task_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/task"
	"github.com/felixgeelhaar/calmbox/internal/productivity/domain/value_objects"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestNewTask(t *testing.T) {
	tk, err := task.NewTask("local", "  Review the plan  ", t0)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, tk.ID())
	assert.Equal(t, "local", tk.UserID())
	assert.Equal(t, "Review the plan", tk.Title())
	assert.Equal(t, task.StatusPending, tk.Status())
	assert.Equal(t, value_objects.PriorityMedium, tk.Priority())
	assert.Equal(t, t0, tk.CreatedAt())
	assert.Nil(t, tk.CompletedAt())
	assert.Empty(t, tk.Tags())
}

func TestNewTask_EmptyTitle(t *testing.T) {
	_, err := task.NewTask("local", "   ", t0)
	assert.ErrorIs(t, err, task.ErrEmptyTitle)
}

func TestTask_SetStatus(t *testing.T) {
	t.Run("complete stamps completed_at", func(t *testing.T) {
		tk, _ := task.NewTask("local", "Ship", t0)

		changed, err := tk.SetStatus(task.StatusComplete, t0.Add(time.Hour))
		require.NoError(t, err)
		assert.True(t, changed)
		require.NotNil(t, tk.CompletedAt())
		assert.Equal(t, t0.Add(time.Hour), *tk.CompletedAt())
		assert.True(t, tk.IsComplete())
	})

	t.Run("completing twice keeps the first stamp", func(t *testing.T) {
		tk, _ := task.NewTask("local", "Ship", t0)
		_, _ = tk.SetStatus(task.StatusComplete, t0.Add(time.Hour))

		changed, err := tk.SetStatus(task.StatusComplete, t0.Add(2*time.Hour))
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, t0.Add(time.Hour), *tk.CompletedAt())
	})

	t.Run("leaving complete clears the stamp", func(t *testing.T) {
		tk, _ := task.NewTask("local", "Ship", t0)
		_, _ = tk.SetStatus(task.StatusComplete, t0.Add(time.Hour))

		_, err := tk.SetStatus(task.StatusDeferred, t0.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Nil(t, tk.CompletedAt())
		assert.Equal(t, t0.Add(2*time.Hour), tk.UpdatedAt())
	})

	t.Run("any transition is allowed", func(t *testing.T) {
		statuses := []task.Status{
			task.StatusDeferred, task.StatusInProgress, task.StatusPending,
			task.StatusComplete, task.StatusInProgress, task.StatusDeferred,
		}
		tk, _ := task.NewTask("local", "Loop", t0)
		for _, s := range statuses {
			_, err := tk.SetStatus(s, t0)
			require.NoError(t, err)
			assert.Equal(t, s, tk.Status())
			assert.Equal(t, s == task.StatusComplete, tk.CompletedAt() != nil)
		}
	})

	t.Run("invalid status", func(t *testing.T) {
		tk, _ := task.NewTask("local", "Ship", t0)
		_, err := tk.SetStatus(task.Status(42), t0)
		assert.ErrorIs(t, err, task.ErrInvalidStatus)
		assert.Equal(t, task.StatusPending, tk.Status())
	})
}

func TestTask_AddTags(t *testing.T) {
	tk, _ := task.NewTask("local", "Tagged", t0)
	tk.AddTags("email", " work ", "", "email")

	assert.Equal(t, []string{"email", "work"}, tk.Tags())
	assert.True(t, tk.HasTag("work"))
	assert.False(t, tk.HasTag("home"))
}

func TestTask_SetPriority(t *testing.T) {
	tk, _ := task.NewTask("local", "Prioritized", t0)

	require.NoError(t, tk.SetPriority(value_objects.PriorityCritical))
	assert.Equal(t, value_objects.PriorityCritical, tk.Priority())

	err := tk.SetPriority(value_objects.PriorityNone)
	assert.ErrorIs(t, err, value_objects.ErrInvalidPriority)
	assert.Equal(t, value_objects.PriorityCritical, tk.Priority())
}

func TestTask_CloneIsIndependent(t *testing.T) {
	due := t0.Add(48 * time.Hour)
	tk, _ := task.NewTask("local", "Original", t0)
	tk.SetDueDate(&due)
	tk.AddTags("a")

	c := tk.Clone()
	c.AddTags("b")
	c.SetDueDate(nil)

	assert.Equal(t, []string{"a"}, tk.Tags())
	require.NotNil(t, tk.DueDate())
	assert.Equal(t, due, *tk.DueDate())
	assert.Equal(t, tk.ID(), c.ID())
}

func TestRehydrate(t *testing.T) {
	id := uuid.New()

	t.Run("round trip through snapshot", func(t *testing.T) {
		tk, _ := task.NewTask("local", "Persist me", t0)
		tk.SetCategory("work")
		tk.LinkEmail("email-1")
		tk.AddTags("email")
		_, _ = tk.SetStatus(task.StatusComplete, t0.Add(time.Minute))

		restored, err := task.Rehydrate(tk.Snapshot())
		require.NoError(t, err)
		assert.Equal(t, tk.Snapshot(), restored.Snapshot())
	})

	t.Run("complete without stamp gets one", func(t *testing.T) {
		restored, err := task.Rehydrate(task.Snapshot{
			ID: id, Title: "Done", Status: task.StatusComplete,
			Priority: value_objects.PriorityLow, CreatedAt: t0, UpdatedAt: t0.Add(time.Hour),
		})
		require.NoError(t, err)
		require.NotNil(t, restored.CompletedAt())
		assert.Equal(t, t0.Add(time.Hour), *restored.CompletedAt())
	})

	t.Run("stamp dropped for open task", func(t *testing.T) {
		stamp := t0
		restored, err := task.Rehydrate(task.Snapshot{
			ID: id, Title: "Open", Status: task.StatusPending, CompletedAt: &stamp,
		})
		require.NoError(t, err)
		assert.Nil(t, restored.CompletedAt())
		assert.Equal(t, value_objects.PriorityMedium, restored.Priority())
	})

	t.Run("rejects empty title and nil id", func(t *testing.T) {
		_, err := task.Rehydrate(task.Snapshot{ID: id})
		assert.ErrorIs(t, err, task.ErrEmptyTitle)

		_, err = task.Rehydrate(task.Snapshot{Title: "x"})
		assert.Error(t, err)
	})
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    task.Status
		wantErr bool
	}{
		{"pending", task.StatusPending, false},
		{"in_progress", task.StatusInProgress, false},
		{"in-progress", task.StatusInProgress, false},
		{"complete", task.StatusComplete, false},
		{"Completed", task.StatusComplete, false},
		{"deferred", task.StatusDeferred, false},
		{"archived", task.StatusPending, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := task.ParseStatus(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, task.ErrInvalidStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustRoundTrip(t, got))
		})
	}
}

func mustRoundTrip(t *testing.T, s task.Status) task.Status {
	t.Helper()
	b, err := s.MarshalText()
	require.NoError(t, err)
	var out task.Status
	require.NoError(t, out.UnmarshalText(b))
	return out
}

func TestEvents(t *testing.T) {
	tk, _ := task.NewTask("local", "Evented", t0)
	tk.LinkEmail("email-9")

	created, err := task.NewCreatedEvent(tk)
	require.NoError(t, err)
	assert.Equal(t, task.RoutingKeyCreated, created.RoutingKey)

	var body task.Created
	require.NoError(t, created.DecodePayload(&body))
	assert.Equal(t, "Evented", body.Title)
	assert.Equal(t, "email-9", body.EmailID)
	assert.Equal(t, "medium", body.Priority)

	_, _ = tk.SetStatus(task.StatusComplete, t0)
	changed, err := task.NewStatusChangedEvent(tk, task.StatusPending)
	require.NoError(t, err)

	var sc task.StatusChanged
	require.NoError(t, changed.DecodePayload(&sc))
	assert.Equal(t, "pending", sc.From)
	assert.Equal(t, "complete", sc.To)
	assert.NotNil(t, sc.CompletedAt)
}
