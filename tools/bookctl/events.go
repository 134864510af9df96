package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/md-rashed-zaman/agentbook/libs/config"
	"github.com/md-rashed-zaman/agentbook/libs/kafkax"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var eventTopics = []string{
	"booking.created.v1",
	"booking.rescheduled.v1",
	"booking.cancelled.v1",
	"company.registered.v1",
}

// formatEvent renders one message as a single log line.
func formatEvent(ctx context.Context, msg kafka.Message) string {
	meta := kafkax.ExtractEventMeta(msg)
	traceID := "-"
	if sc := trace.SpanContextFromContext(kafkax.ExtractTraceContext(ctx, msg)); sc.HasTraceID() {
		traceID = sc.TraceID().String()
	}
	return fmt.Sprintf("%s %s key=%s event_id=%s trace_id=%s %s",
		msg.Time.UTC().Format(time.RFC3339), meta.EventType, string(msg.Key), meta.EventID, traceID, string(msg.Value))
}

func runEvents(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("events", out)
	brokers := fs.String("brokers", config.String("KAFKA_BROKERS", "localhost:9092"), "comma-separated Kafka brokers")
	group := fs.String("group", "bookctl", "consumer group id")
	topics := fs.StringSlice("topic", eventTopics, "topics to follow")
	fromStart := fs.Bool("from-beginning", false, "start from the oldest retained event for a new group")
	limit := fs.Int("max", 0, "stop after this many events (0 = until interrupted)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	list := kafkax.SplitBrokers(*brokers)
	if len(list) == 0 {
		return errors.New("--brokers or KAFKA_BROKERS is required")
	}

	otel.SetTextMapPropagator(propagation.TraceContext{})
	start := kafka.LastOffset
	if *fromStart {
		start = kafka.FirstOffset
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     list,
		GroupID:     *group,
		GroupTopics: *topics,
		StartOffset: start,
		MaxWait:     time.Second,
	})
	defer reader.Close()

	for n := 0; *limit == 0 || n < *limit; n++ {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return err
		}
		fmt.Fprintln(out, formatEvent(ctx, msg))
	}
	return nil
}
