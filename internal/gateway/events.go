package gateway

import (
	"context"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/SebastienMelki/numwindow/internal/nats"
	"github.com/SebastienMelki/numwindow/internal/observability"
)

// eventQueue hands merge events to a single background worker so that a
// slow or reconnecting broker never delays a response. Events that do not
// fit in the buffer are dropped.
type eventQueue struct {
	next    EventPublisher
	events  chan *nats.MergeEvent
	done    chan struct{}
	metrics *observability.Metrics
	logger  *slog.Logger

	mu     sync.RWMutex
	closed bool
}

var _ EventPublisher = (*eventQueue)(nil)

// newEventQueue starts the worker. metrics may be nil.
func newEventQueue(next EventPublisher, size int, metrics *observability.Metrics, logger *slog.Logger) *eventQueue {
	q := &eventQueue{
		next:    next,
		events:  make(chan *nats.MergeEvent, size),
		done:    make(chan struct{}),
		metrics: metrics,
		logger:  logger.With("component", "event-queue"),
	}
	go q.run()
	return q
}

// PublishMerge enqueues evt without blocking. It returns ErrEventQueueFull
// when the buffer is full and ErrEventQueueClosed after Close.
func (q *eventQueue) PublishMerge(ctx context.Context, evt *nats.MergeEvent) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrEventQueueClosed
	}

	select {
	case q.events <- evt:
		return nil
	default:
		if q.metrics != nil {
			q.metrics.EventPublishFailures.Add(ctx, 1, otelmetric.WithAttributes(
				attribute.String("category", evt.Category),
				attribute.String("reason", "queue_full"),
			))
		}
		return ErrEventQueueFull
	}
}

func (q *eventQueue) run() {
	defer close(q.done)

	for evt := range q.events {
		// The publisher applies its own timeout.
		if err := q.next.PublishMerge(context.Background(), evt); err != nil {
			q.logger.Warn("failed to publish merge event",
				"identifier", evt.Identifier,
				"error", err,
			)
		}
	}
}

// Close stops accepting events and waits until the queued ones are
// published or ctx ends.
func (q *eventQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()

	select {
	case <-q.done:
		return nil
	case <-ctx.Done():
		q.logger.Warn("merge events left unpublished at shutdown", "pending", len(q.events))
		return ctx.Err()
	}
}
