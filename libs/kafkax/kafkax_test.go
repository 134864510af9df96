package kafkax

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestExtractEventMetaFallsBackToKeyAndTopic(t *testing.T) {
	meta := ExtractEventMeta(kafka.Message{Topic: "booking.created.v1", Key: []byte("k1")})
	if meta.EventID != "k1" || meta.EventType != "booking.created.v1" {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestNewMessageCarriesHeadersAndTrace(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled, Remote: true})
	ctx := trace.ContextWithRemoteSpanContext(context.Background(), sc)

	msg := NewMessage(ctx, EventMeta{EventID: "e1", EventType: "booking.cancelled.v1"}, "b1", []byte(`{}`))
	if msg.Topic != "booking.cancelled.v1" || string(msg.Key) != "b1" {
		t.Fatalf("unexpected message %+v", msg)
	}
	if got := ExtractEventMeta(msg); got.EventID != "e1" {
		t.Fatalf("unexpected meta %+v", got)
	}
	if HeaderValue(msg.Headers, "traceparent") == "" {
		t.Fatal("expected traceparent header")
	}

	out := trace.SpanContextFromContext(ExtractTraceContext(context.Background(), msg))
	if out.TraceID() != traceID {
		t.Fatalf("expected trace id to round-trip, got %s", out.TraceID())
	}
}

func TestSplitBrokers(t *testing.T) {
	got := SplitBrokers(" a:9092, ,b:9092")
	if len(got) != 2 || got[1] != "b:9092" {
		t.Fatalf("unexpected brokers %v", got)
	}
}
