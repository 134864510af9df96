package outbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/agentbook/libs/db"
	"github.com/md-rashed-zaman/agentbook/libs/kafkax"
	otelx "github.com/md-rashed-zaman/agentbook/libs/otel"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// MessageWriter is the part of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Publisher struct {
	db        db.Querier
	writer    MessageWriter
	logger    *slog.Logger
	pollEvery time.Duration
	batchSize int
}

type PublisherConfig struct {
	PollEvery time.Duration
	BatchSize int
}

func NewPublisher(q db.Querier, writer MessageWriter, logger *slog.Logger, cfg PublisherConfig) *Publisher {
	if cfg.PollEvery <= 0 {
		cfg.PollEvery = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	return &Publisher{
		db:        q,
		writer:    writer,
		logger:    logger,
		pollEvery: cfg.PollEvery,
		batchSize: cfg.BatchSize,
	}
}

func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.pollEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := p.PublishBatch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Error("outbox publish failed", "err", err)
				continue
			}
			if n > 0 {
				p.logger.Debug("outbox published", "count", n)
			}
		}
	}
}

// PublishBatch sends up to batchSize unpublished events and marks them published in one
// transaction. Rows locked by another publisher are skipped.
func (p *Publisher) PublishBatch(ctx context.Context) (int, error) {
	var published int
	err := db.WithTx(ctx, p.db, func(tx pgx.Tx) error {
		records, err := FetchUnpublished(ctx, tx, p.batchSize)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(records))
		ids := make([]int64, 0, len(records))
		for _, r := range records {
			msgCtx := otelx.ContextWithTraceContext(ctx, r.Traceparent, r.Tracestate)
			msgCtx, span := otelx.Tracer("booking-service/outbox").Start(msgCtx, "outbox.publish "+r.EventType,
				trace.WithSpanKind(trace.SpanKindProducer),
				trace.WithAttributes(
					attribute.String("messaging.system", "kafka"),
					attribute.String("messaging.destination.name", r.EventType),
					attribute.String("event_id", r.EventID),
				),
			)
			msgs = append(msgs, kafkax.NewMessage(msgCtx, kafkax.EventMeta{EventID: r.EventID, EventType: r.EventType}, r.AggregateID, r.Payload))
			span.End()
			ids = append(ids, r.ID)
		}

		if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
			return err
		}
		if err := MarkPublished(ctx, tx, ids); err != nil {
			return err
		}
		published = len(ids)
		return nil
	})
	return published, err
}
