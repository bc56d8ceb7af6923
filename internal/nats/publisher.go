package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"

	"github.com/SebastienMelki/numwindow/internal/numbers"
	"github.com/SebastienMelki/numwindow/internal/observability"
)

// subjectPrefix is the root of every merge event subject.
const subjectPrefix = "numbers.merged"

// MergeEvent describes one successful window merge.
type MergeEvent struct {
	ID          string    `json:"id"`
	Identifier  string    `json:"identifier"`
	Category    string    `json:"category"`
	Fetched     []float64 `json:"numbers"`
	Previous    []float64 `json:"windowPrevState"`
	Current     []float64 `json:"windowCurrState"`
	Novel       []float64 `json:"novel"`
	Avg         string    `json:"avg"`
	TimestampMs int64     `json:"timestamp_ms"`
}

// jetStreamPublisher is the subset of jetstream.JetStream the publisher uses.
type jetStreamPublisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher publishes merge events to NATS JetStream.
type Publisher struct {
	js      jetStreamPublisher
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewPublisher creates a new merge event publisher. metrics may be nil and a
// zero timeout disables the per-publish deadline.
func NewPublisher(js jetStreamPublisher, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		js:      js,
		timeout: timeout,
		metrics: metrics,
		logger:  logger.With("component", "publisher"),
	}
}

// PublishMerge publishes evt to numbers.merged.<category>. Missing IDs and
// timestamps are filled in; the ID doubles as the JetStream message ID so
// server-side duplicate detection drops accidental republishes.
func (p *Publisher) PublishMerge(ctx context.Context, evt *MergeEvent) error {
	if evt == nil {
		return ErrNilEvent
	}

	p.enrich(evt)
	subject := DeriveSubject(evt)

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal merge event: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	ack, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(evt.ID))
	if err != nil {
		p.count(ctx, evt, false)
		return fmt.Errorf("failed to publish merge event: %w", err)
	}
	p.count(ctx, evt, true)

	p.logger.Debug("merge event published",
		"event_id", evt.ID,
		"subject", subject,
		"stream", ack.Stream,
		"sequence", ack.Sequence,
	)

	return nil
}

// enrich adds server-generated values to the event.
func (p *Publisher) enrich(evt *MergeEvent) {
	// UUID v7 is time-sortable
	if evt.ID == "" {
		evt.ID = uuid.Must(uuid.NewV7()).String()
	}
	if evt.TimestampMs == 0 {
		evt.TimestampMs = time.Now().UnixMilli()
	}
	if evt.Category == "" {
		evt.Category = numbers.Identifier(evt.Identifier).Category()
	}
}

func (p *Publisher) count(ctx context.Context, evt *MergeEvent, ok bool) {
	if p.metrics == nil {
		return
	}
	attrs := otelmetric.WithAttributes(attribute.String("category", evt.Category))
	if ok {
		p.metrics.EventsPublished.Add(ctx, 1, attrs)
	} else {
		p.metrics.EventPublishFailures.Add(ctx, 1, attrs)
	}
}

// DeriveSubject returns the subject for evt.
// Format: numbers.merged.{category}.
func DeriveSubject(evt *MergeEvent) string {
	category := evt.Category
	if category == "" {
		category = numbers.Identifier(evt.Identifier).Category()
	}
	return subjectPrefix + "." + numbers.SanitizeSubjectName(category)
}
