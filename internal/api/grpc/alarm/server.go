package alarm

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
	"github.com/oshokin/wakeup-alarm/internal/service/coordinator"
)

// Service abstracts the business operations the transport layer depends on.
type Service interface {
	Trigger(ctx context.Context, actor *domain.Actor) (*domain.State, error)
	State() *domain.State
	Locations() []domain.Location
}

// Server implements the status API.
type Server struct {
	// service provides the business logic for alarm operations.
	service Service
}

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service) *Server {
	return &Server{
		service: service,
	}
}

// GetAlarmState returns the current alarm status.
func (s *Server) GetAlarmState(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	state := s.service.State()

	response, err := ToProtoState(state, s.service.Locations())
	if err != nil {
		logger.ErrorKV(ctx, "Failed to encode alarm state", "error", err)

		return nil, status.Error(codes.Internal, "unable to encode state")
	}

	return response, nil
}

// TriggerAlarm arms the alarm on behalf of the requesting actor.
func (s *Server) TriggerAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	actor := FromProtoActor(req)
	if actor == nil {
		return nil, status.Error(codes.InvalidArgument, "actor is required")
	}

	state, err := s.service.Trigger(ctx, actor)

	switch {
	case errors.Is(err, coordinator.ErrClosed):
		return nil, status.Error(codes.Unavailable, "alarm is shutting down")
	case err != nil:
		logger.ErrorKV(ctx, "Remote trigger failed", "actor", actor.String(), "error", err)

		return nil, status.Error(codes.Internal, "unable to trigger alarm")
	}

	response, err := ToProtoState(state, s.service.Locations())
	if err != nil {
		return nil, status.Error(codes.Internal, "unable to encode state")
	}

	return response, nil
}
