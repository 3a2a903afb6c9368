// Package grpc serves the standard grpc.health.v1 service. Serving status
// follows a periodic database ping.
package grpc

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/orgdrive/internal/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health-checked service name. The empty name reports
// the same status.
const ServiceName = "orgdrive"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthServer struct {
	address  string
	db       Pinger
	interval time.Duration
	health   *health.Server
	logger   logging.Logger
}

func NewHealthServer(a string, db Pinger, interval time.Duration, l logging.Logger) *HealthServer {
	return &HealthServer{
		address:  a,
		db:       db,
		interval: interval,
		health:   health.NewServer(),
		logger:   l.With("module", "grpc_server"),
	}
}

// check pings the database once and publishes the result.
func (s *HealthServer) check(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.db.PingContext(ctx); err != nil {
		s.logger.Warn(ctx, "database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

func (s *HealthServer) watch(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *HealthServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve runs on an existing listener until ctx is cancelled.
func (s *HealthServer) Serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.health)

	s.check(ctx)
	go s.watch(ctx)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
