package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/calmbox/internal/shared/domain"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// Publisher defines the interface for publishing events to a message broker.
type Publisher interface {
	// Publish sends a message to the event bus.
	Publish(ctx context.Context, routingKey string, payload []byte) error

	// Close closes the publisher connection.
	Close() error
}

// PublishEvent stamps the event with the IDs carried by ctx, encodes it and
// hands it to p.
func PublishEvent(ctx context.Context, p Publisher, event domain.Event) error {
	if event.CorrelationID == "" {
		event.CorrelationID = observability.CorrelationIDFromContext(ctx)
	}
	if event.UserID == "" {
		event.UserID = observability.UserIDFromContext(ctx)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event %s: %w", event.RoutingKey, err)
	}

	return p.Publish(ctx, event.RoutingKey, payload)
}
