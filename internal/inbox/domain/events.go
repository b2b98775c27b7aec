package domain

import shared "github.com/felixgeelhaar/calmbox/internal/shared/domain"

// Routing keys for inbox events.
const (
	RoutingKeyInboxSynced    = "inbox.synced"
	RoutingKeyEmailProcessed = "email.processed"
	RoutingKeyStressChanged  = "stress.changed"
)

// StressSnapshot is the aggregate stress reading for an inbox.
type StressSnapshot struct {
	OverallLevel Level   `json:"overall_level"`
	NeedsBreak   bool    `json:"needs_break"`
	HighCount    int     `json:"high_count"`
	Total        int     `json:"total"`
	HighFraction float64 `json:"high_fraction"`
}

// InboxSynced is published after a data source delivered emails.
type InboxSynced struct {
	Source   string `json:"source"`
	Count    int    `json:"count"`
	Fallback bool   `json:"fallback"`
}

// EmailProcessed is published once per successfully analyzed email.
type EmailProcessed struct {
	EmailID     string `json:"email_id"`
	StressLevel Level  `json:"stress_level"`
	Priority    Level  `json:"priority"`
	ActionItems int    `json:"action_items"`
}

// StressChanged is published when the overall stress level moves.
type StressChanged struct {
	Previous Level          `json:"previous"`
	Current  StressSnapshot `json:"current"`
}

// NewInboxSyncedEvent builds the event for a completed sync.
func NewInboxSyncedEvent(userID string, payload InboxSynced) (shared.Event, error) {
	return shared.NewEvent(RoutingKeyInboxSynced, userID, payload)
}

// NewEmailProcessedEvent builds the event for an analyzed email.
func NewEmailProcessedEvent(e Email) (shared.Event, error) {
	return shared.NewEvent(RoutingKeyEmailProcessed, e.ID, EmailProcessed{
		EmailID:     e.ID,
		StressLevel: e.StressLevel,
		Priority:    e.Priority,
		ActionItems: len(e.ActionItems),
	})
}

// NewStressChangedEvent builds the event for a move of the overall level.
func NewStressChangedEvent(userID string, previous Level, current StressSnapshot) (shared.Event, error) {
	return shared.NewEvent(RoutingKeyStressChanged, userID, StressChanged{
		Previous: previous,
		Current:  current,
	})
}
