package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// ServiceName is the service reported by the health probe alongside the
// overall ("") status.
const ServiceName = "saleswise.api"

// HealthServer serves grpc.health.v1 for orchestrators.
type HealthServer struct {
	server *grpc.Server
	health *health.Server
	logger *slog.Logger
}

// NewHealthServer creates a gRPC server with the stock health service
// registered. Both statuses start as NOT_SERVING.
func NewHealthServer(logger *slog.Logger) *HealthServer {
	server := grpc.NewServer(
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(server, hs)

	h := &HealthServer{server: server, health: hs, logger: logger}
	h.SetServing(false)
	return h
}

// SetServing flips the overall and the API service status.
func (h *HealthServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until the listener fails or the server is stopped.
func (h *HealthServer) Serve(lis net.Listener) error {
	h.logger.Info("🔌 [Health] gRPC health probe listening", "addr", lis.Addr().String())
	if err := h.server.Serve(lis); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// GracefulStop marks the service as not serving and drains open RPCs.
func (h *HealthServer) GracefulStop() {
	h.health.Shutdown()
	h.server.GracefulStop()
	h.logger.Info("🛑 [Health] gRPC health probe stopped")
}

// MonitorDatabase polls ping every interval and mirrors its result into the
// health status until ctx is cancelled.
func (h *HealthServer) MonitorDatabase(ctx context.Context, ping func(context.Context) error, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := ping(pingCtx)
			cancel()

			switch {
			case err != nil && healthy:
				h.logger.Warn("⚠️ [Health] Database unreachable, reporting NOT_SERVING", "error", err)
				h.SetServing(false)
				healthy = false
			case err == nil && !healthy:
				h.logger.Info("✅ [Health] Database reachable again, reporting SERVING")
				h.SetServing(true)
				healthy = true
			}
		}
	}
}

// Check dials addr and returns the reported status of service.
func Check(ctx context.Context, addr, service string, opts ...grpc.DialOption) (healthpb.HealthCheckResponse_ServingStatus, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("dial health probe: %w", err)
	}
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN, fmt.Errorf("health check: %w", err)
	}
	return resp.GetStatus(), nil
}
