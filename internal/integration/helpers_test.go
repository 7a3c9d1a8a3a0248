package integration

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/wakeup-alarm/internal/actuator"
	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/display"
	"github.com/oshokin/wakeup-alarm/internal/service/coordinator"
	"github.com/oshokin/wakeup-alarm/internal/service/status"
)

// recordingPublisher stands in for the broker and keeps every publish.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []string
}

// Publish records topic=payload.
func (p *recordingPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, topic+"="+string(payload))

	return nil
}

// all returns a copy of the recorded messages.
func (p *recordingPublisher) all() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]string(nil), p.messages...)
}

// controller is a coordinator served over a live status API.
type controller struct {
	address     string
	coordinator *coordinator.Coordinator
	publisher   *recordingPublisher
	buzzer      *actuator.LogBuzzer
}

// startController serves a coordinator on a free local port until the test ends.
func startController(t *testing.T, opts ...coordinator.Option) *controller {
	t.Helper()

	c := &controller{
		publisher: new(recordingPublisher),
		buzzer:    actuator.NewLogBuzzer(),
	}

	alarm, err := coordinator.New(c.publisher, c.buzzer, display.NewLog(), opts...)
	require.NoError(t, err)

	c.coordinator = alarm

	ctx, cancel := context.WithCancel(context.Background())

	lis, err := status.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)

	c.address = lis.Addr().String()

	done := make(chan error, 1)

	go func() {
		done <- status.Serve(ctx, lis, alarm)
	}()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	return c
}

// writeConfig saves a settings file pointing the CLI tools at address.
func writeConfig(t *testing.T, address string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	require.NoError(t, config.Save(path, &config.Config{
		StatusAddress: address,
		Timeout:       2 * time.Second,
		MQTT:          config.MQTT{BrokerURL: "mqtt://127.0.0.1:1883"},
	}))

	return path
}

// kitchen always picks the second default location.
func kitchen() coordinator.Option {
	return coordinator.WithChooser(coordinator.ChooserFunc(func(int) int { return 1 }))
}
