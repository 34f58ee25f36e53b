// Package server exposes the gRPC health protocol of the meeting service so
// orchestrators can check it next to the HTTP API.
package server

import (
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service reported for the meeting API.
const ServiceName = "meetlab.MeetingService"

type HealthServer struct {
	log    *slog.Logger
	health *health.Server
}

func NewHealthServer(log *slog.Logger) *HealthServer {
	h := &HealthServer{log: log, health: health.NewServer()}
	h.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	return h
}

// Register attaches the health service and server reflection to s.
func (h *HealthServer) Register(s *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(s, h.health)
	reflection.Register(s)
}

// Serving flags the service and the server as healthy.
func (h *HealthServer) Serving() {
	h.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	h.health.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	h.log.Info("Health status set to SERVING", "service", ServiceName)
}

// Shutdown flags every service as not serving and ignores later updates.
func (h *HealthServer) Shutdown() {
	h.health.Shutdown()
	h.log.Info("Health status set to NOT_SERVING", "service", ServiceName)
}
