package services

import (
	"strings"

	"github.com/felixgeelhaar/calmbox/internal/inbox/domain"
)

// DefaultCategory is used when no keyword matches.
const DefaultCategory = "general"

type categoryRule struct {
	category string
	keywords []string
}

// Rules are checked in order; the first match wins.
var categoryRules = []categoryRule{
	{category: "alerts", keywords: []string{"outage", "incident", "alert", "downtime", "security"}},
	{category: "finance", keywords: []string{"invoice", "payment", "receipt", "billing"}},
	{category: "social", keywords: []string{"lunch", "dinner", "party", "birthday", "celebrat"}},
	{category: "newsletter", keywords: []string{"unsubscribe", "newsletter", "digest"}},
	{category: "work", keywords: []string{"project", "meeting", "deadline", "review", "schedule"}},
}

// Classifier assigns a category to emails that arrive without one.
type Classifier struct{}

// NewClassifier returns a classifier instance.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Categorize returns a category for the email from its subject and body.
func (c *Classifier) Categorize(email domain.Email) string {
	text := strings.ToLower(email.Subject + " " + email.Body)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return DefaultCategory
}
