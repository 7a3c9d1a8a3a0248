package status

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	api "github.com/oshokin/wakeup-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
)

// ErrNoStatusAddress indicates missing status API configuration.
var ErrNoStatusAddress = errors.New("no status address configured")

// Listen opens a TCP listener on address.
func Listen(ctx context.Context, address string) (net.Listener, error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return lis, nil
}

// Serve runs the status API on lis until ctx is cancelled.
func Serve(ctx context.Context, lis net.Listener, svc api.Service) error {
	ctx = logger.WithName(ctx, "status")

	grpcServer := grpc.NewServer()
	api.RegisterAlarmServiceServer(grpcServer, api.NewServer(svc))

	logger.InfoKV(ctx, "Status API listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down status API")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "Status API stopped")

	return nil
}

// ListenAddress determines the bind address for the status API.
// If override is provided, uses it directly. Otherwise keeps only the port of
// configAddr so the API is reachable on every interface.
func ListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoStatusAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid status address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
