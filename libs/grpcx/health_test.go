package grpcx

import (
	"context"
	"errors"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestHealthServerReflectsChecks(t *testing.T) {
	dbErr := errors.New("db down")
	failing := true
	hs := NewHealthServer("booking-service", nil, HealthCheck{
		Name: "db",
		Check: func(context.Context) error {
			if failing {
				return dbErr
			}
			return nil
		},
	})

	lis := bufconn.Listen(1 << 20)
	go func() { _ = hs.Server.Serve(lis) }()
	defer hs.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	if got := hs.Refresh(ctx); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("expected NOT_SERVING, got %v", got)
	}
	status, err := Probe(ctx, conn, "booking-service")
	if err != nil || status != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("probe: %v %v", status, err)
	}

	failing = false
	hs.Refresh(ctx)
	status, err = Probe(ctx, conn, "")
	if err != nil || status != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("probe: %v %v", status, err)
	}
}
