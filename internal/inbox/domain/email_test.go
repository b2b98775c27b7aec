package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "high", want: LevelHigh},
		{in: "HIGH", want: LevelHigh},
		{in: " Medium ", want: LevelMedium},
		{in: "low", want: LevelLow},
		{in: "critical", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLevel)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLevel_Rank(t *testing.T) {
	assert.Greater(t, LevelHigh.Rank(), LevelMedium.Rank())
	assert.Greater(t, LevelMedium.Rank(), LevelLow.Rank())
	assert.False(t, Level("").IsValid())
}

func TestSender_String(t *testing.T) {
	assert.Equal(t, "Sarah <sarah@example.com>", Sender{Name: "Sarah", Address: "sarah@example.com"}.String())
	assert.Equal(t, "sarah@example.com", Sender{Address: "sarah@example.com"}.String())
	assert.Equal(t, "Sarah", Sender{Name: "Sarah"}.String())
}

func TestEmail_Apply(t *testing.T) {
	email := Email{ID: "1", Body: "hello"}
	items := []ActionItem{{ID: "a", Description: "Please reply"}}

	email.Apply(Analysis{
		StressLevel:    LevelHigh,
		Priority:       LevelMedium,
		SentimentScore: -3,
		Summary:        "hello",
		ActionItems:    items,
	})

	assert.True(t, email.Processed)
	assert.Equal(t, LevelHigh, email.StressLevel)
	assert.Equal(t, LevelMedium, email.Priority)
	assert.Equal(t, -3.0, email.SentimentScore)
	assert.Equal(t, "hello", email.Summary)
	assert.True(t, email.HasOpenActionItems())

	// The email owns its copy of the slice.
	items[0].Completed = true
	assert.False(t, email.ActionItems[0].Completed)
}

func TestFallbackAnalysis(t *testing.T) {
	a := FallbackAnalysis()
	assert.True(t, a.Fallback)
	assert.Equal(t, LevelMedium, a.StressLevel)
	assert.Equal(t, LevelMedium, a.Priority)
	assert.Zero(t, a.SentimentScore)
	assert.Empty(t, a.Summary)
	assert.Empty(t, a.ActionItems)
}

func TestComputeStats(t *testing.T) {
	open := []ActionItem{{ID: "x", Description: "Please review"}}
	done := []ActionItem{{ID: "y", Description: "Please sign", Completed: true}}

	emails := []Email{
		{ID: "1", Priority: LevelHigh, StressLevel: LevelHigh, Category: "work", ActionItems: open},
		{ID: "2", Priority: LevelHigh, StressLevel: LevelLow, Category: "work", Read: true},
		{ID: "3", Priority: LevelMedium, StressLevel: LevelMedium, Category: "social", Flagged: true, ActionItems: done},
		{ID: "4", Priority: LevelHigh, Processed: true},
		{ID: "5", Priority: LevelHigh},
		{ID: "6", Priority: LevelHigh},
	}

	stats := ComputeStats(emails)

	assert.Equal(t, 6, stats.Total)
	assert.Equal(t, 5, stats.Unread)
	assert.Equal(t, 1, stats.Flagged)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, map[string]int{"work": 2, "social": 1}, stats.ByCategory)
	assert.Equal(t, 5, stats.ByPriority[LevelHigh])
	assert.Equal(t, 1, stats.ByPriority[LevelMedium])
	assert.Equal(t, 1, stats.ByStress[LevelHigh])
	assert.Equal(t, LevelHigh, stats.OverallPriority)

	var urgentIDs []string
	for _, e := range stats.UrgentUnread {
		urgentIDs = append(urgentIDs, e.ID)
	}
	assert.Equal(t, []string{"1", "4", "5"}, urgentIDs)

	require.Len(t, stats.ActionRequired, 1)
	assert.Equal(t, "1", stats.ActionRequired[0].ID)
}

func TestComputeStats_OverallPriority(t *testing.T) {
	tests := []struct {
		name   string
		emails []Email
		want   Level
	}{
		{name: "empty", emails: nil, want: LevelLow},
		{name: "only low", emails: []Email{{Priority: LevelLow}}, want: LevelLow},
		{name: "medium wins over low", emails: []Email{{Priority: LevelLow}, {Priority: LevelMedium}}, want: LevelMedium},
		{name: "any high", emails: []Email{{Priority: LevelMedium}, {Priority: LevelHigh}}, want: LevelHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputeStats(tt.emails).OverallPriority)
		})
	}
}

func TestComputeStats_ActionRequiredCapped(t *testing.T) {
	var emails []Email
	for i := 0; i < 8; i++ {
		emails = append(emails, Email{
			ID:          fmt.Sprint(i),
			Read:        true,
			ActionItems: []ActionItem{{ID: "a", Description: "Please check"}},
		})
	}

	stats := ComputeStats(emails)
	assert.Len(t, stats.ActionRequired, ActionRequiredLimit)
	assert.Equal(t, "0", stats.ActionRequired[0].ID)
	assert.Empty(t, stats.UrgentUnread)
}
