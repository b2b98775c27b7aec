package eventbus

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/calmbox/pkg/observability"
)

// MultiPublisher hands every message to all of its publishers, so the
// in-process bus and the broker both see each event.
type MultiPublisher struct {
	publishers []Publisher
	metrics    observability.Metrics
}

// NewMultiPublisher creates a fan-out publisher. Nil publishers are skipped.
func NewMultiPublisher(metrics observability.Metrics, publishers ...Publisher) *MultiPublisher {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	m := &MultiPublisher{metrics: metrics}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish delivers to every publisher and joins their errors.
func (m *MultiPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		m.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", routingKey))
	}
	return errors.Join(errs...)
}

// Close closes every publisher.
func (m *MultiPublisher) Close() error {
	var errs []error
	for _, p := range m.publishers {
		errs = append(errs, p.Close())
	}
	return errors.Join(errs...)
}
