// Package alarm implements the gRPC status API of the wake-up alarm.
//
// The service is registered with a hand-written grpc.ServiceDesc and uses
// protobuf well-known types on the wire: google.protobuf.Empty for requests
// without arguments and google.protobuf.Struct for state snapshots and actors.
// Server adapts a business-service interface; AlarmServiceClient is the
// matching client stub.
package alarm
