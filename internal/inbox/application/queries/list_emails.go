package queries

import (
	"context"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
	"github.com/felixgeelhaar/calmbox/internal/inbox/store"
)

// ListEmailsQuery filters the inbox. Zero values match everything.
type ListEmailsQuery struct {
	UnreadOnly  bool
	FlaggedOnly bool
	Pending     bool // only emails not yet processed
	Category    string
	Priority    string
	StressLevel string
	Limit       int
}

// ListEmailsHandler handles the ListEmailsQuery.
type ListEmailsHandler struct {
	emails *store.EmailStore
}

// NewListEmailsHandler creates a new ListEmailsHandler.
func NewListEmailsHandler(emails *store.EmailStore) *ListEmailsHandler {
	return &ListEmailsHandler{emails: emails}
}

// Handle executes the ListEmailsQuery. Results keep inbox order.
func (h *ListEmailsHandler) Handle(ctx context.Context, query ListEmailsQuery) ([]domain.Email, error) {
	priority, err := optionalLevel(query.Priority)
	if err != nil {
		return nil, err
	}
	stress, err := optionalLevel(query.StressLevel)
	if err != nil {
		return nil, err
	}

	result := []domain.Email{}
	for _, e := range h.emails.List() {
		switch {
		case query.UnreadOnly && e.Read,
			query.FlaggedOnly && !e.Flagged,
			query.Pending && e.Processed,
			query.Category != "" && !strings.EqualFold(e.Category, query.Category),
			priority != "" && e.Priority != priority,
			stress != "" && e.StressLevel != stress:
			continue
		}
		result = append(result, e)
		if query.Limit > 0 && len(result) == query.Limit {
			break
		}
	}
	return result, nil
}

func optionalLevel(s string) (domain.Level, error) {
	if strings.TrimSpace(s) == "" {
		return "", nil
	}
	return domain.ParseLevel(s)
}

// GetEmailQuery fetches one email.
type GetEmailQuery struct {
	EmailID string
}

// GetEmailHandler handles the GetEmailQuery.
type GetEmailHandler struct {
	emails *store.EmailStore
}

// NewGetEmailHandler creates a new GetEmailHandler.
func NewGetEmailHandler(emails *store.EmailStore) *GetEmailHandler {
	return &GetEmailHandler{emails: emails}
}

// Handle executes the GetEmailQuery.
func (h *GetEmailHandler) Handle(ctx context.Context, query GetEmailQuery) (*domain.Email, error) {
	email, ok := h.emails.Get(query.EmailID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmailNotFound, query.EmailID)
	}
	return &email, nil
}
