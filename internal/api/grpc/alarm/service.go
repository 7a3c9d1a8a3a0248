package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Fully qualified names of the status API.
const (
	ServiceName         = "wakeupalarm.v1.AlarmService"
	GetAlarmStateMethod = "/" + ServiceName + "/GetAlarmState"
	TriggerAlarmMethod  = "/" + ServiceName + "/TriggerAlarm"
)

// AlarmServiceServer is the server API of the status service.
type AlarmServiceServer interface {
	GetAlarmState(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	TriggerAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

// AlarmServiceClient is the client API of the status service.
type AlarmServiceClient interface {
	GetAlarmState(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	TriggerAlarm(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

// ServiceDesc describes the status service for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Service descriptors are package-level by convention.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetAlarmState",
			Handler:    getAlarmStateHandler,
		},
		{
			MethodName: "TriggerAlarm",
			Handler:    triggerAlarmHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "wakeupalarm/v1/alarm.proto",
}

// RegisterAlarmServiceServer registers srv on the registrar.
func RegisterAlarmServiceServer(registrar grpc.ServiceRegistrar, srv AlarmServiceServer) {
	registrar.RegisterService(&ServiceDesc, srv)
}

// getAlarmStateHandler decodes the request and invokes GetAlarmState through the interceptor chain.
func getAlarmStateHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlarmServiceServer).GetAlarmState(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: GetAlarmStateMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlarmServiceServer).GetAlarmState(ctx, req.(*emptypb.Empty)) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	return interceptor(ctx, in, info, handler)
}

// triggerAlarmHandler decodes the request and invokes TriggerAlarm through the interceptor chain.
func triggerAlarmHandler(
	srv any,
	ctx context.Context, //nolint:revive // Signature is fixed by grpc.MethodHandler.
	dec func(any) error,
	interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}

	if interceptor == nil {
		return srv.(AlarmServiceServer).TriggerAlarm(ctx, in) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: TriggerAlarmMethod,
	}

	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AlarmServiceServer).TriggerAlarm(ctx, req.(*structpb.Struct)) //nolint:forcetypeassert // Guaranteed by HandlerType.
	}

	return interceptor(ctx, in, info, handler)
}

// alarmServiceClient invokes the status API over a client connection.
type alarmServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmServiceClient creates a client stub over cc.
//
//nolint:ireturn // Mirrors generated gRPC client constructors.
func NewAlarmServiceClient(cc grpc.ClientConnInterface) AlarmServiceClient {
	return &alarmServiceClient{cc: cc}
}

// GetAlarmState returns the current alarm state.
func (c *alarmServiceClient) GetAlarmState(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, GetAlarmStateMethod, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

// TriggerAlarm arms the alarm on behalf of the actor in req.
func (c *alarmServiceClient) TriggerAlarm(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, TriggerAlarmMethod, req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}
