// Package health exposes the pipeline driver's readiness over gRPC,
// using the health-checking protocol's stock server implementation
// (no project-specific .proto is introduced — see DESIGN.md), with
// common.LoggingInterceptor attached for request logging.
package health

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/orderflow/matchcore/common"
)

// Server wraps a grpc.Server exposing the standard health service for
// a single service name, "matchcore.pipeline".
type Server struct {
	ServiceName string

	grpcServer *grpc.Server
	healthSrv  *health.Server
}

// New constructs a Server; initial status is NOT_SERVING until SetServing(true).
func New() *Server {
	healthSrv := health.NewServer()
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(common.LoggingInterceptor))
	healthpb.RegisterHealthServer(grpcServer, healthSrv)

	s := &Server{
		ServiceName: "matchcore.pipeline",
		grpcServer:  grpcServer,
		healthSrv:   healthSrv,
	}
	s.healthSrv.SetServingStatus(s.ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// SetServing flips the reported status, e.g. cmd/engine calls this with
// true once it has started the pipeline, and false when draining begins.
func (s *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.healthSrv.SetServingStatus(s.ServiceName, status)
}

// Serve blocks, accepting connections on addr until the listener errors
// or GracefulStop is called.
func (s *Server) Serve(addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("health: failed to listen on %s: %w", addr, err)
	}
	slog.Info("health: listening", "address", lis.Addr())
	return s.grpcServer.Serve(lis)
}

// GracefulStop stops accepting new RPCs and waits for pending ones to finish.
func (s *Server) GracefulStop() { s.grpcServer.GracefulStop() }
