// Package domain models the inbox: emails, their heuristic analysis and
// the statistics derived from a collection of them.
package domain

import "time"

// Sender identifies who sent an email.
type Sender struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// String renders the sender the way a mail client would.
func (s Sender) String() string {
	switch {
	case s.Name == "":
		return s.Address
	case s.Address == "":
		return s.Name
	default:
		return s.Name + " <" + s.Address + ">"
	}
}

// ActionItem is a request detected inside an email body.
type ActionItem struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}

// Email is one message in the inbox.
//
// Processed is only true after an analysis has been applied, so a processed
// email always carries the analyzer's stress level and summary.
type Email struct {
	ID             string       `json:"id"`
	Subject        string       `json:"subject"`
	Body           string       `json:"body"`
	Sender         Sender       `json:"sender"`
	Timestamp      time.Time    `json:"timestamp"`
	Read           bool         `json:"read"`
	Flagged        bool         `json:"flagged"`
	Priority       Level        `json:"priority"`
	StressLevel    Level        `json:"stress_level"`
	SentimentScore float64      `json:"sentiment_score"`
	Category       string       `json:"category"`
	Processed      bool         `json:"processed"`
	Summary        string       `json:"summary,omitempty"`
	ActionItems    []ActionItem `json:"action_items,omitempty"`
}

// Analysis is the classification produced for one email body.
type Analysis struct {
	StressLevel    Level        `json:"stress_level"`
	Priority       Level        `json:"priority"`
	SentimentScore float64      `json:"sentiment_score"`
	Summary        string       `json:"summary"`
	ActionItems    []ActionItem `json:"action_items"`
	// Fallback marks the fixed record returned when analysis failed.
	Fallback bool `json:"fallback,omitempty"`
}

// FallbackAnalysis is returned whenever analysis cannot complete.
func FallbackAnalysis() Analysis {
	return Analysis{
		StressLevel: LevelMedium,
		Priority:    LevelMedium,
		ActionItems: []ActionItem{},
		Fallback:    true,
	}
}

// Apply merges an analysis into the email and marks it processed.
func (e *Email) Apply(a Analysis) {
	e.StressLevel = a.StressLevel
	e.Priority = a.Priority
	e.SentimentScore = a.SentimentScore
	e.Summary = a.Summary
	e.ActionItems = append([]ActionItem(nil), a.ActionItems...)
	e.Processed = true
}

// HasOpenActionItems reports whether any action item is still incomplete.
func (e Email) HasOpenActionItems() bool {
	for _, item := range e.ActionItems {
		if !item.Completed {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with e.
func (e Email) Clone() Email {
	if e.ActionItems != nil {
		e.ActionItems = append([]ActionItem(nil), e.ActionItems...)
	}
	return e
}
