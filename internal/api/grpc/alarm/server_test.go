package alarm

import (
	"context"
	"errors"
	"net"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"

	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/service/coordinator"
)

var errTestTrigger = errors.New("test trigger error")

// fakeService implements the alarm Service interface for unit testing the transport.
type fakeService struct {
	// triggerFn overrides Trigger when set.
	triggerFn func(ctx context.Context, actor *domain.Actor) (*domain.State, error)

	// state holds the current alarm state managed by the fake service.
	state *domain.State
}

// Trigger arms the fake alarm with the kitchen as target unless triggerFn is set.
func (f *fakeService) Trigger(ctx context.Context, actor *domain.Actor) (*domain.State, error) {
	if f.triggerFn != nil {
		return f.triggerFn(ctx, actor)
	}

	f.state = &domain.State{
		Phase:     domain.Armed,
		Target:    domain.Kitchen,
		CycleID:   "cycle-1",
		ArmedAt:   time.Now(),
		ChangedAt: time.Now(),
		LastActor: actor,
	}

	return f.state, nil
}

// State returns the current alarm state stored in the fake service.
func (f *fakeService) State() *domain.State { return f.state }

// Locations returns the default rooms.
func (f *fakeService) Locations() []domain.Location { return domain.DefaultLocations() }

// TestServer_TriggerAlarm_Validation ensures invalid requests return InvalidArgument errors.
func TestServer_TriggerAlarm_Validation(t *testing.T) {
	t.Parallel()

	s := NewServer(new(fakeService))

	_, err := s.TriggerAlarm(context.Background(), nil)
	require.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.TriggerAlarm(context.Background(), ToProtoActor(nil))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}

// TestServer_TriggerAlarm_Errors maps business errors onto status codes.
func TestServer_TriggerAlarm_Errors(t *testing.T) {
	t.Parallel()

	actor := ToProtoActor(&domain.Actor{Hostname: "h", Username: "u"})

	s := NewServer(&fakeService{triggerFn: func(context.Context, *domain.Actor) (*domain.State, error) {
		return nil, coordinator.ErrClosed
	}})

	_, err := s.TriggerAlarm(context.Background(), actor)
	require.Equal(t, codes.Unavailable, status.Code(err))

	s = NewServer(&fakeService{triggerFn: func(context.Context, *domain.Actor) (*domain.State, error) {
		return nil, errTestTrigger
	}})

	_, err = s.TriggerAlarm(context.Background(), actor)
	require.Equal(t, codes.Internal, status.Code(err))
}

// TestServer_Roundtrip exercises TriggerAlarm and GetAlarmState on the server implementation.
func TestServer_Roundtrip(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		s := NewServer(&fakeService{state: &domain.State{Phase: domain.Idle}})

		response, err := s.GetAlarmState(context.Background(), new(emptypb.Empty))
		require.NoError(t, err)

		state, locations := FromProtoState(response)
		require.Equal(t, domain.Idle, state.Phase)
		require.Equal(t, domain.DefaultLocations(), locations)

		request := ToProtoActor(&domain.Actor{Hostname: "test-hostname", Username: "test-user"})

		_, err = s.TriggerAlarm(context.Background(), request)
		require.NoError(t, err)

		synctest.Wait()

		response, err = s.GetAlarmState(context.Background(), new(emptypb.Empty))
		require.NoError(t, err)
		require.True(t, response.GetFields()["armed"].GetBoolValue())

		state, _ = FromProtoState(response)
		require.Equal(t, domain.Kitchen, state.Target)
		require.Equal(t, "cycle-1", state.CycleID)
		require.Equal(t, "test-hostname", state.LastActor.Hostname)
		require.Equal(t, "test-user", state.LastActor.Username)
	})
}

// TestProtoStateRoundtrip preserves every field through the Struct encoding.
func TestProtoStateRoundtrip(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 10, 19, 6, 30, 0, 123, time.UTC)
	want := &domain.State{
		Phase:      domain.Armed,
		Target:     domain.OtherRoom,
		CycleID:    "cycle-7",
		ArmedAt:    ts,
		ChangedAt:  ts,
		LastActor:  &domain.Actor{Hostname: "pico", Username: "alarm"},
		LastReport: domain.Bathroom,
	}

	encoded, err := ToProtoState(want, domain.DefaultLocations())
	require.NoError(t, err)

	got, locations := FromProtoState(encoded)
	require.Equal(t, want, got)
	require.Equal(t, domain.DefaultLocations(), locations)

	empty, err := ToProtoState(nil, nil)
	require.NoError(t, err)

	got, locations = FromProtoState(empty)
	require.Equal(t, domain.Idle, got.Phase)
	require.Nil(t, got.LastActor)
	require.Empty(t, locations)
}

// TestService_OverGRPC registers the service descriptor and calls it through the client stub.
func TestService_OverGRPC(t *testing.T) {
	t.Parallel()

	listener := bufconn.Listen(1 << 16)
	server := grpc.NewServer()
	RegisterAlarmServiceServer(server, NewServer(&fakeService{state: &domain.State{Phase: domain.Idle}}))

	go func() {
		_ = server.Serve(listener)
	}()

	t.Cleanup(server.Stop)

	conn, err := grpc.NewClient(
		"passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = conn.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client := NewAlarmServiceClient(conn)

	response, err := client.GetAlarmState(ctx, new(emptypb.Empty))
	require.NoError(t, err)
	require.Equal(t, "idle", response.GetFields()["phase"].GetStringValue())

	response, err = client.TriggerAlarm(ctx, ToProtoActor(&domain.Actor{Hostname: "h", Username: "u"}))
	require.NoError(t, err)
	require.Equal(t, "kitchen", response.GetFields()["target"].GetStringValue())

	_, err = client.TriggerAlarm(ctx, ToProtoActor(nil))
	require.Equal(t, codes.InvalidArgument, status.Code(err))
}
