package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/md-rashed-zaman/agentbook/libs/config"
	"github.com/md-rashed-zaman/agentbook/libs/grpcx"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func runHealth(ctx context.Context, args []string, out io.Writer) error {
	fs := newFlagSet("health", out)
	addr := fs.String("addr", config.String("BOOKING_GRPC_ADDR", "localhost:9090"), "gRPC health address")
	service := fs.String("service", "booking-service", "service name to query (empty for overall status)")
	timeout := fs.Duration("timeout", 3*time.Second, "dial and probe timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()
	conn, err := grpcx.Dial(ctx, *addr, grpcx.DialOptions{Timeout: *timeout})
	if err != nil {
		return fmt.Errorf("dial %s: %w", *addr, err)
	}
	defer conn.Close()

	status, err := grpcx.Probe(ctx, conn, *service)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", *addr, status)
	if status != healthpb.HealthCheckResponse_SERVING {
		return fmt.Errorf("%s is %s", *addr, status)
	}
	return nil
}
