package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/services"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
)

// ErrEmptyText is returned when there is nothing to analyze.
var ErrEmptyText = errors.New("text is required")

// InboxView is the derived state of the inbox.
type InboxView struct {
	Stats  domain.Stats          `json:"stats"`
	Stress domain.StressSnapshot `json:"stress"`
}

// GetStatsHandler returns statistics and stress for the current inbox.
type GetStatsHandler struct {
	emails *store.EmailStore
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(emails *store.EmailStore) *GetStatsHandler {
	return &GetStatsHandler{emails: emails}
}

// Stats computes the statistics view.
func (h *GetStatsHandler) Stats(ctx context.Context) InboxView {
	return InboxView{
		Stats:  h.emails.Stats(),
		Stress: h.emails.Stress(),
	}
}

// Stress computes the stress snapshot only.
func (h *GetStatsHandler) Stress(ctx context.Context) domain.StressSnapshot {
	return h.emails.Stress()
}

// AnalyzeTextQuery classifies free text without touching the inbox.
type AnalyzeTextQuery struct {
	Text string
}

// AnalyzeTextHandler handles the AnalyzeTextQuery.
type AnalyzeTextHandler struct {
	analyzer services.Analyzer
}

// NewAnalyzeTextHandler creates a new AnalyzeTextHandler.
func NewAnalyzeTextHandler(analyzer services.Analyzer) *AnalyzeTextHandler {
	return &AnalyzeTextHandler{analyzer: analyzer}
}

// Handle executes the AnalyzeTextQuery.
func (h *AnalyzeTextHandler) Handle(ctx context.Context, query AnalyzeTextQuery) (domain.Analysis, error) {
	if strings.TrimSpace(query.Text) == "" {
		return domain.Analysis{}, ErrEmptyText
	}
	return h.analyzer.Analyze(ctx, query.Text)
}
