package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/felixgeelhaar/calmbox/internal/shared/domain"
	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// Handler reacts to a delivered event.
type Handler func(ctx context.Context, event domain.Event) error

type subscription struct {
	pattern string
	handler Handler
}

// InProcessBus delivers events synchronously to handlers registered in the
// same process. It stands in for RabbitMQ in local mode.
type InProcessBus struct {
	mu            sync.RWMutex
	subscriptions []subscription
	logger        *slog.Logger
}

// NewInProcessBus creates an empty bus.
func NewInProcessBus(logger *slog.Logger) *InProcessBus {
	return &InProcessBus{logger: observability.OrDefault(logger)}
}

// Subscribe registers handler for routing keys matching pattern. A pattern
// is an exact key, a prefix ending in ".*", or "#" for everything.
func (b *InProcessBus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscriptions = append(b.subscriptions, subscription{pattern: pattern, handler: handler})
}

// Publish decodes the envelope and dispatches it. Handler failures are
// logged and never returned; publishing must not fail the caller's command.
func (b *InProcessBus) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var event domain.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		b.logger.ErrorContext(ctx, "failed to decode event", "routing_key", routingKey, "error", err)
		return nil
	}
	if event.RoutingKey == "" {
		event.RoutingKey = routingKey
	}

	b.mu.RLock()
	subs := append([]subscription(nil), b.subscriptions...)
	b.mu.RUnlock()

	for _, sub := range subs {
		if !matches(sub.pattern, routingKey) {
			continue
		}
		if err := sub.handler(ctx, event); err != nil {
			b.logger.ErrorContext(ctx, "event handler failed",
				"routing_key", routingKey,
				"event_id", event.EventID,
				"error", err,
			)
		}
	}
	return nil
}

// Close is a no-op.
func (b *InProcessBus) Close() error {
	return nil
}

func matches(pattern, key string) bool {
	switch {
	case pattern == "#":
		return true
	case strings.HasSuffix(pattern, ".*"):
		return strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))
	default:
		return pattern == key
	}
}
