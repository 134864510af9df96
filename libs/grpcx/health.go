package grpcx

import (
	"context"
	"log/slog"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// HealthCheck reports whether a dependency is ready. It mirrors runtime.ReadyCheck.
type HealthCheck struct {
	Name  string
	Check func(context.Context) error
}

// HealthServer serves grpc.health.v1.Health for one service name plus the overall ("") status.
type HealthServer struct {
	Server  *grpc.Server
	health  *health.Server
	service string
	checks  []HealthCheck
	logger  *slog.Logger
}

func NewHealthServer(service string, logger *slog.Logger, checks ...HealthCheck) *HealthServer {
	srv := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(UnaryServerRequestIDInterceptor()),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	hs.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthServer{Server: srv, health: hs, service: service, checks: checks, logger: logger}
}

// Refresh runs every check once and publishes the aggregate status.
func (h *HealthServer) Refresh(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	for _, c := range h.checks {
		cctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.Check(cctx)
		cancel()
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			if h.logger != nil {
				h.logger.Warn("health check failed", "check", c.Name, "err", err)
			}
		}
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(h.service, status)
	return status
}

// Run refreshes status every interval until ctx is done, then marks everything NOT_SERVING.
func (h *HealthServer) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	h.Refresh(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.health.Shutdown()
			return
		case <-ticker.C:
			h.Refresh(ctx)
		}
	}
}

// Serve blocks serving on addr.
func (h *HealthServer) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return h.Server.Serve(lis)
}

func (h *HealthServer) Stop() {
	h.Server.GracefulStop()
}

// Probe asks a health endpoint for service's status.
func Probe(ctx context.Context, conn *grpc.ClientConn, service string) (healthpb.HealthCheckResponse_ServingStatus, error) {
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, err
	}
	return resp.GetStatus(), nil
}
