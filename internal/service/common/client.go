//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"

	api "github.com/oshokin/wakeup-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/wakeup-alarm/internal/config"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
)

// Client wraps the status API client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the controller.
	conn *grpc.ClientConn
	// api is the status API client stub.
	api api.AlarmServiceClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errActorRequired is returned when an actor is not provided but is required for the operation.
	errActorRequired = errors.New("actor must be provided")
)

// Dial creates a client for the status API at address.
// Note: this uses insecure transport credentials; the status API is meant for
// the local network the alarm lives on.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	return DialWith(address, nil, opts...)
}

// DialWith is like Dial with extra gRPC dial options, e.g. a custom dialer.
func DialWith(address string, extra []grpc.DialOption, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	dial := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, extra...)

	conn, err := grpc.NewClient(address, dial...)
	if err != nil {
		return nil, fmt.Errorf("dial alarm controller: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         api.NewAlarmServiceClient(conn),
		callTimeout: config.DefaultTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// GetAlarmState retrieves the current alarm state and the location enumeration.
func (c *Client) GetAlarmState(ctx context.Context) (*domain.State, []domain.Location, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetAlarmState(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, nil, fmt.Errorf("get alarm state: %w", err)
	}

	state, locations := api.FromProtoState(resp)

	return state, locations, nil
}

// TriggerAlarm arms the remote alarm on behalf of actor.
func (c *Client) TriggerAlarm(ctx context.Context, actor *domain.Actor) (*domain.State, error) {
	if actor == nil {
		return nil, errActorRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.TriggerAlarm(callCtx, api.ToProtoActor(actor))
	if err != nil {
		return nil, fmt.Errorf("trigger alarm: %w", err)
	}

	state, _ := api.FromProtoState(resp)

	return state, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
