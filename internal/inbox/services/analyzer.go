package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
	"github.com/google/uuid"
)

const (
	longEmailWords    = 100
	longEmailChars    = 500
	summaryMaxChars   = 50
	maxActionItems    = 3
	actionItemKeyword = "please"
	summaryEllipsis   = "..."
)

var (
	urgentWords   = regexp.MustCompile(`(?i)urgent|asap|immediately|emergency|critical|deadline`)
	positiveWords = regexp.MustCompile(`(?i)thanks|appreciate|great|good|excellent`)
	sentenceEnd   = regexp.MustCompile(`[.!?]`)
)

// Analyzer classifies an email body.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (domain.Analysis, error)
}

// HeuristicAnalyzer classifies email text with keyword and length rules.
// It never fails: any internal error yields domain.FallbackAnalysis.
type HeuristicAnalyzer struct {
	newID  func() string
	logger *slog.Logger
}

// AnalyzerOption configures a HeuristicAnalyzer.
type AnalyzerOption func(*HeuristicAnalyzer)

// WithIDGenerator replaces the action item ID generator.
func WithIDGenerator(fn func() string) AnalyzerOption {
	return func(a *HeuristicAnalyzer) {
		a.newID = fn
	}
}

// WithAnalyzerLogger sets the logger used to report recovered failures.
func WithAnalyzerLogger(logger *slog.Logger) AnalyzerOption {
	return func(a *HeuristicAnalyzer) {
		a.logger = logger
	}
}

// NewHeuristicAnalyzer creates an analyzer.
func NewHeuristicAnalyzer(opts ...AnalyzerOption) *HeuristicAnalyzer {
	a := &HeuristicAnalyzer{newID: uuid.NewString}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = observability.OrDefault(a.logger)
	return a
}

// Analyze implements Analyzer. The error is always nil; failures surface as
// a fallback analysis.
func (a *HeuristicAnalyzer) Analyze(_ context.Context, text string) (domain.Analysis, error) {
	return a.Classify(text), nil
}

// Classify maps raw email text to its stress level, priority, sentiment,
// summary and action items.
func (a *HeuristicAnalyzer) Classify(text string) (result domain.Analysis) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Warn("email analysis failed, using fallback", "panic", fmt.Sprint(r))
			result = domain.FallbackAnalysis()
		}
	}()

	words := len(strings.Fields(text))
	urgent := urgentWords.MatchString(text)
	positive := positiveWords.MatchString(text)
	sentences := sentenceEnd.Split(text, -1)

	return domain.Analysis{
		StressLevel:    stressLevel(urgent, words, utf8.RuneCountInString(text)),
		Priority:       priority(urgent, words),
		SentimentScore: sentiment(text, urgent, positive),
		Summary:        summarize(sentences),
		ActionItems:    a.actionItems(sentences),
	}
}

func stressLevel(urgent bool, words, chars int) domain.Level {
	switch {
	case urgent && words > longEmailWords:
		return domain.LevelHigh
	case urgent || chars > longEmailChars:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}

func priority(urgent bool, words int) domain.Level {
	switch {
	case urgent:
		return domain.LevelHigh
	case words > longEmailWords:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}

// sentiment is not clamped; it ranges over [-3, 2].
func sentiment(text string, urgent, positive bool) float64 {
	score := 0.0
	if positive {
		score += 2
	}
	if urgent {
		score -= 2
	}
	if strings.Contains(text, "!") {
		score--
	}
	return score
}

func summarize(sentences []string) string {
	first := strings.TrimSpace(sentences[0])
	if utf8.RuneCountInString(first) <= summaryMaxChars {
		return first
	}
	return string([]rune(first)[:summaryMaxChars]) + summaryEllipsis
}

func (a *HeuristicAnalyzer) actionItems(sentences []string) []domain.ActionItem {
	items := []domain.ActionItem{}
	for _, s := range sentences {
		if len(items) == maxActionItems {
			break
		}
		if !strings.Contains(strings.ToLower(s), actionItemKeyword) {
			continue
		}
		items = append(items, domain.ActionItem{
			ID:          a.newID(),
			Description: strings.TrimSpace(s),
		})
	}
	return items
}
