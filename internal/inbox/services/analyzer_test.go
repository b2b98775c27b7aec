package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func words(n int, w string) string {
	return strings.TrimSpace(strings.Repeat(w+" ", n))
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func TestHeuristicAnalyzer_StressAndPriority(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantStress   domain.Level
		wantPriority domain.Level
	}{
		{
			name:         "plain short email",
			text:         "See you at the standup tomorrow",
			wantStress:   domain.LevelLow,
			wantPriority: domain.LevelLow,
		},
		{
			name:         "urgent and short",
			text:         "This is urgent, call me",
			wantStress:   domain.LevelMedium,
			wantPriority: domain.LevelHigh,
		},
		{
			name:         "urgent at exactly 100 words",
			text:         "ASAP " + words(99, "ok"),
			wantStress:   domain.LevelMedium,
			wantPriority: domain.LevelHigh,
		},
		{
			name:         "urgent and long",
			text:         "Emergency " + words(100, "ok"),
			wantStress:   domain.LevelHigh,
			wantPriority: domain.LevelHigh,
		},
		{
			name:         "many words without keywords",
			text:         words(101, "ok"),
			wantStress:   domain.LevelLow,
			wantPriority: domain.LevelMedium,
		},
		{
			name:         "over 500 characters but few words",
			text:         words(50, "abcdefghij"),
			wantStress:   domain.LevelMedium,
			wantPriority: domain.LevelLow,
		},
		{
			name:         "exactly 500 characters",
			text:         strings.Repeat("x", 500),
			wantStress:   domain.LevelLow,
			wantPriority: domain.LevelLow,
		},
		{
			name:         "keywords are case insensitive",
			text:         "DeAdLiNe moved",
			wantStress:   domain.LevelMedium,
			wantPriority: domain.LevelHigh,
		},
	}

	analyzer := NewHeuristicAnalyzer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := analyzer.Classify(tt.text)
			assert.Equal(t, tt.wantStress, got.StressLevel)
			assert.Equal(t, tt.wantPriority, got.Priority)
			assert.False(t, got.Fallback)
		})
	}
}

func TestHeuristicAnalyzer_Sentiment(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{text: "See you tomorrow", want: 0},
		{text: "Thanks for the help", want: 2},
		{text: "Thanks for the help!", want: 1},
		{text: "Urgent reply needed", want: -2},
		{text: "URGENT reply needed!", want: -3},
		{text: "Great news, the deadline moved", want: 0},
		{text: "Wow!", want: -1},
	}

	analyzer := NewHeuristicAnalyzer()
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, analyzer.Classify(tt.text).SentimentScore)
		})
	}
}

func TestHeuristicAnalyzer_Summary(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	t.Run("first sentence", func(t *testing.T) {
		got := analyzer.Classify("  Lunch is on Friday. Bring snacks! Any questions?")
		assert.Equal(t, "Lunch is on Friday", got.Summary)
	})

	t.Run("question mark ends sentence", func(t *testing.T) {
		got := analyzer.Classify("Are you free? Let me know")
		assert.Equal(t, "Are you free", got.Summary)
	})

	t.Run("truncated to 50 characters", func(t *testing.T) {
		long := strings.Repeat("a", 60) + ". Second."
		got := analyzer.Classify(long)
		assert.Equal(t, strings.Repeat("a", 50)+"...", got.Summary)
	})

	t.Run("exactly 50 characters is kept", func(t *testing.T) {
		exact := strings.Repeat("b", 50)
		got := analyzer.Classify(exact)
		assert.Equal(t, exact, got.Summary)
	})

	t.Run("multibyte characters count once", func(t *testing.T) {
		text := strings.Repeat("é", 55)
		got := analyzer.Classify(text)
		assert.Equal(t, strings.Repeat("é", 50)+"...", got.Summary)
	})

	t.Run("empty body", func(t *testing.T) {
		got := analyzer.Classify("")
		assert.Empty(t, got.Summary)
		assert.Empty(t, got.ActionItems)
		assert.Equal(t, domain.LevelLow, got.StressLevel)
	})
}

func TestHeuristicAnalyzer_ActionItems(t *testing.T) {
	analyzer := NewHeuristicAnalyzer(WithIDGenerator(sequentialIDs()))

	t.Run("sentences containing please", func(t *testing.T) {
		got := analyzer.Classify("Hi team. Please review the doc. It is long. Could you PLEASE sign it? Bye")
		require.Len(t, got.ActionItems, 2)
		assert.Equal(t, "Please review the doc", got.ActionItems[0].Description)
		assert.Equal(t, "Could you PLEASE sign it", got.ActionItems[1].Description)
		for _, item := range got.ActionItems {
			assert.NotEmpty(t, item.ID)
			assert.False(t, item.Completed)
		}
	})

	t.Run("capped at three", func(t *testing.T) {
		got := analyzer.Classify("Please a. Please b. Please c. Please d.")
		require.Len(t, got.ActionItems, 3)
		assert.Equal(t, "Please c", got.ActionItems[2].Description)
	})

	t.Run("none found", func(t *testing.T) {
		got := analyzer.Classify("Nothing to do here.")
		assert.NotNil(t, got.ActionItems)
		assert.Empty(t, got.ActionItems)
	})
}

func TestHeuristicAnalyzer_GeneratesDistinctIDs(t *testing.T) {
	got := NewHeuristicAnalyzer().Classify("Please one. Please two.")
	require.Len(t, got.ActionItems, 2)
	assert.NotEqual(t, got.ActionItems[0].ID, got.ActionItems[1].ID)
}

func TestHeuristicAnalyzer_RecoversWithFallback(t *testing.T) {
	analyzer := NewHeuristicAnalyzer(WithIDGenerator(func() string {
		panic("id source exhausted")
	}))

	var got domain.Analysis
	require.NotPanics(t, func() {
		got = analyzer.Classify("URGENT: please restart the server")
	})

	assert.Equal(t, domain.FallbackAnalysis(), got)
	assert.Equal(t, domain.LevelMedium, got.StressLevel)
}

func TestHeuristicAnalyzer_AnalyzeNeverErrors(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()

	got, err := analyzer.Analyze(context.Background(), "Thanks, great work")
	require.NoError(t, err)
	assert.Equal(t, 2.0, got.SentimentScore)
}

func TestHeuristicAnalyzer_NoKeywordsShortIsLow(t *testing.T) {
	bodies := []string{
		"See you at noon",
		"The report is attached",
		words(80, "ok"),
		strings.Repeat("z", 499),
	}

	analyzer := NewHeuristicAnalyzer()
	for _, body := range bodies {
		got := analyzer.Classify(body)
		assert.Equal(t, domain.LevelLow, got.StressLevel, body)
		assert.Equal(t, domain.LevelLow, got.Priority, body)
	}
}
