package mqtt

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	mochi "github.com/mochi-mqtt/server/v2"
	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/mochi-mqtt/server/v2/listeners"
	"github.com/mochi-mqtt/server/v2/packets"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/wakeup-alarm/internal/config"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
)

// startBroker runs an in-process broker on a free local port until the test ends.
func startBroker(t *testing.T) (*mochi.Server, string) {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	address := l.Addr().String()
	require.NoError(t, l.Close())

	broker := mochi.New(&mochi.Options{InlineClient: true})
	require.NoError(t, broker.AddHook(new(auth.AllowHook), nil))
	require.NoError(t, broker.AddListener(listeners.NewTCP(listeners.Config{ID: "test", Address: address})))

	go func() {
		_ = broker.Serve()
	}()

	t.Cleanup(func() {
		_ = broker.Close()
	})

	return broker, address
}

// TestChannel_BrokerRoundTrip connects to a live broker, receives a location
// report through Poll and publishes the alarm status back.
func TestChannel_BrokerRoundTrip(t *testing.T) {
	t.Parallel()

	broker, address := startBroker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channel, err := Connect(ctx, &config.MQTT{
		BrokerURL: "mqtt://" + address,
		ClientID:  "wakeup-alarm-test",
		KeepAlive: 30 * time.Second,
	}, 5*time.Second, domain.TopicLocation)
	require.NoError(t, err)

	defer func() {
		require.NoError(t, channel.Close(context.Background()))
	}()

	// Status messages published by the controller.
	published := make(chan string, 4)

	err = broker.Subscribe(domain.TopicStart, 1, func(_ *mochi.Client, _ packets.Subscription, pk packets.Packet) {
		published <- string(pk.Payload)
	})
	require.NoError(t, err)

	var (
		mu       sync.Mutex
		received []string
	)

	// The subscription is made once the connection is up, so keep reporting
	// until the first report comes through.
	require.Eventually(t, func() bool {
		if publishErr := broker.Publish(domain.TopicLocation, []byte("kitchen"), false, 1); publishErr != nil {
			return false
		}

		channel.Poll(ctx, 50*time.Millisecond, func(_ context.Context, topic string, payload []byte) {
			mu.Lock()
			defer mu.Unlock()

			received = append(received, topic+"="+string(payload))
		})

		mu.Lock()
		defer mu.Unlock()

		return len(received) > 0
	}, 5*time.Second, 100*time.Millisecond)

	mu.Lock()
	require.Equal(t, "esp32/location=kitchen", received[0])
	mu.Unlock()

	require.NoError(t, channel.Publish(ctx, domain.TopicStart, []byte(domain.PayloadOff)))

	select {
	case payload := <-published:
		require.Equal(t, domain.PayloadOff, payload)
	case <-ctx.Done():
		require.Fail(t, "status message not delivered")
	}
}
