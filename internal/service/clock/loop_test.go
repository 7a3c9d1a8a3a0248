package clock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/wakeup-alarm/internal/actuator"
	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/display"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/service/coordinator"
	"github.com/oshokin/wakeup-alarm/internal/transport/mqtt"
)

// recordingPublisher remembers every published topic and payload.
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

// countingAlarm counts triggers and ignores dispatches.
type countingAlarm struct {
	mu         sync.Mutex
	triggers   int
	dispatched []string
}

// Trigger counts the call.
func (a *countingAlarm) Trigger(context.Context, *domain.Actor) (*domain.State, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.triggers++

	return &domain.State{Phase: domain.Armed}, nil
}

// Dispatch records the topic.
func (a *countingAlarm) Dispatch(_ context.Context, topic string, _ []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.dispatched = append(a.dispatched, topic)
}

// snapshot returns the trigger count and dispatched topics.
func (a *countingAlarm) snapshot() (int, []string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.triggers, append([]string(nil), a.dispatched...)
}

func TestLoop_ArmsAfterDelayAndDisarmsOnMatch(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())

		publisher := new(recordingPublisher)
		buzzer := actuator.NewLogBuzzer()
		screen := display.NewLog()
		inbox := mqtt.NewInbox(mqtt.DefaultInboxSize)

		alarm, err := coordinator.New(publisher, buzzer, screen,
			coordinator.WithChooser(coordinator.ChooserFunc(func(int) int { return 1 })),
			coordinator.WithDisplayHold(0),
		)
		require.NoError(t, err)

		done := make(chan error, 1)

		go func() {
			done <- loop(ctx, inbox, alarm, screen, &domain.Actor{Hostname: "test"}, 5*time.Second, 100*time.Millisecond)
		}()

		synctest.Wait()
		require.False(t, alarm.State().IsArmed())
		require.Equal(t, display.Countdown(5*time.Second), screen.Last())

		time.Sleep(5 * time.Second)
		synctest.Wait()

		state := alarm.State()
		require.True(t, state.IsArmed())
		require.Equal(t, domain.Kitchen, state.Target)
		require.True(t, buzzer.IsSounding())

		inbox.Push(mqtt.Message{Topic: domain.TopicLocation, Payload: []byte("bathroom")})
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		require.True(t, alarm.State().IsArmed())
		require.Equal(t, domain.Bathroom, alarm.State().LastReport)

		inbox.Push(mqtt.Message{Topic: domain.TopicLocation, Payload: []byte("kitchen")})
		time.Sleep(200 * time.Millisecond)
		synctest.Wait()

		require.False(t, alarm.State().IsArmed())
		require.False(t, buzzer.IsSounding())
		require.Equal(t, display.Idle(), screen.Last())

		// The alarm is armed exactly once per run.
		time.Sleep(time.Minute)
		synctest.Wait()
		require.False(t, alarm.State().IsArmed())

		require.Equal(t, []string{
			domain.TopicStart + "=" + domain.PayloadOn,
			domain.TopicTargetLocation + "=kitchen",
			domain.TopicScan + "=" + domain.PayloadScanStart,
			domain.TopicStart + "=" + domain.PayloadOff,
		}, publisher.all())

		cancel()
		require.NoError(t, <-done)
	})
}

func TestLoop_DispatchesInArrivalOrder(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()

		alarm := new(countingAlarm)
		inbox := mqtt.NewInbox(4)

		inbox.Push(mqtt.Message{Topic: "a"})
		inbox.Push(mqtt.Message{Topic: "b"})
		inbox.Push(mqtt.Message{Topic: "c"})

		done := make(chan error, 1)

		go func() {
			done <- loop(ctx, inbox, alarm, display.NewLog(), nil, time.Hour, time.Second)
		}()

		time.Sleep(time.Second)
		synctest.Wait()

		triggers, topics := alarm.snapshot()
		require.Zero(t, triggers)
		require.Equal(t, []string{"a", "b", "c"}, topics)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestLoop_StopsBeforeTriggerWhenCancelled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(t.Context())
		alarm := new(countingAlarm)

		done := make(chan error, 1)

		go func() {
			done <- loop(ctx, mqtt.NewInbox(1), alarm, display.NewLog(), nil, time.Minute, time.Second)
		}()

		time.Sleep(30 * time.Second)
		cancel()
		require.NoError(t, <-done)

		triggers, _ := alarm.snapshot()
		require.Zero(t, triggers)
	})
}

func TestNewBuzzer(t *testing.T) {
	t.Parallel()

	require.IsType(t, new(actuator.LogBuzzer), newBuzzer(new(config.Buzzer), false))
	require.IsType(t, new(actuator.LogBuzzer), newBuzzer(&config.Buzzer{PWMPath: "/sys/class/pwm/pwmchip0/pwm0"}, true))
	require.IsType(t, new(actuator.PWMBuzzer), newBuzzer(&config.Buzzer{PWMPath: "/sys/class/pwm/pwmchip0/pwm0"}, false))
}

// TestRun_LogsToConfiguredFile checks that the controller's own log lines
// reach log_file, even when startup fails at the broker.
//
//nolint:paralleltest // Configure replaces the process-wide log output.
func TestRun_LogsToConfiguredFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "alarm.log")
	configPath := filepath.Join(dir, "settings.yaml")

	require.NoError(t, config.Save(configPath, &config.Config{
		LogLevel: "info",
		LogFile:  logPath,
		MQTT:     config.MQTT{BrokerURL: "mqtt://127.0.0.1:1"},
	}))

	ctx, cancel := context.WithTimeout(t.Context(), 300*time.Millisecond)
	defer cancel()

	err := Run(ctx, &Options{ConfigPath: configPath, DryRun: true})
	require.ErrorContains(t, err, "connect to broker")

	contents, err := os.ReadFile(logPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), `"logger":"alarm-clock"`)
	require.Contains(t, string(contents), `"msg":"Starting"`)
	require.Contains(t, string(contents), `"msg":"Connecting to broker"`)
}

func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	err := Run(t.Context(), &Options{ConfigPath: t.TempDir() + "/missing.yaml"})
	require.ErrorContains(t, err, "load settings")
}
