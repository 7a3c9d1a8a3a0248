package clock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oshokin/wakeup-alarm/internal/actuator"
	"github.com/oshokin/wakeup-alarm/internal/config"
	"github.com/oshokin/wakeup-alarm/internal/display"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
	"github.com/oshokin/wakeup-alarm/internal/service/common"
	"github.com/oshokin/wakeup-alarm/internal/service/coordinator"
	"github.com/oshokin/wakeup-alarm/internal/service/status"
	"github.com/oshokin/wakeup-alarm/internal/transport/mqtt"
	"github.com/oshokin/wakeup-alarm/internal/version"
)

// Options controls the alarm-clock process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// StatusAddress overrides the status API listen address.
	StatusAddress string
	// TriggerDelay overrides the configured delay before arming when positive.
	TriggerDelay time.Duration
	// DryRun simulates the buzzer in the log even if a PWM device is configured.
	DryRun bool
}

// Run connects to the broker and drives the alarm until ctx is cancelled.
// Only startup failures are returned; once running, faults are logged.
//
//nolint:funlen // Startup wiring reads best as one sequence.
func Run(ctx context.Context, opts *Options) error {
	// Load configuration first to get broker and buzzer settings.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	logFile, err := logger.Configure(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	defer func() {
		_ = logFile.Close()
	}()

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-clock")

	logger.InfoKV(ctx, "Starting", version.Fields()...)

	if opts.TriggerDelay > 0 {
		cfg.TriggerDelay = opts.TriggerDelay
	}

	// The buzzer must be quiet before anything else happens.
	buzzer := newBuzzer(&cfg.Buzzer, opts.DryRun)
	if err = buzzer.Silence(ctx); err != nil {
		return fmt.Errorf("silence buzzer: %w", err)
	}

	screen := display.NewLog()
	screen.Show(ctx, display.Connecting()...)

	logger.InfoKV(ctx, "Connecting to broker", "broker", cfg.MQTT.BrokerURL, "client_id", cfg.MQTT.ClientID)

	// Blocks until the first connection is up; retries until ctx is cancelled.
	channel, err := mqtt.Connect(ctx, &cfg.MQTT, cfg.Timeout, domain.TopicLocation)
	if err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}

	defer func() {
		if closeErr := channel.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.WarnKV(ctx, "Broker disconnect failed", "error", closeErr)
		}
	}()

	screen.Show(ctx, display.Connected(domain.TopicLocation)...)

	alarm, err := coordinator.New(
		channel,
		buzzer,
		screen,
		coordinator.WithLocations(cfg.Locations),
		coordinator.WithTone(actuator.Tone{Frequency: cfg.Buzzer.Frequency, Intensity: cfg.Buzzer.Intensity}),
		coordinator.WithDisplayHold(cfg.DisplayHold),
	)
	if err != nil {
		return fmt.Errorf("initialise coordinator: %w", err)
	}

	defer func() {
		if closeErr := alarm.Close(context.WithoutCancel(ctx)); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to silence alarm on shutdown", "error", closeErr)
		}
	}()

	var servers sync.WaitGroup
	defer servers.Wait()

	if err = startStatusAPI(ctx, &servers, cfg.StatusAddress, opts.StatusAddress, alarm); err != nil {
		return err
	}

	return loop(ctx, channel, alarm, screen, localActor(ctx), cfg.TriggerDelay, cfg.PollInterval)
}

// startStatusAPI serves the status API in the background when an address is known.
func startStatusAPI(
	ctx context.Context,
	servers *sync.WaitGroup,
	configAddr, override string,
	alarm *coordinator.Coordinator,
) error {
	if configAddr == "" && override == "" {
		logger.Info(ctx, "Status API disabled")

		return nil
	}

	listenAddress, err := status.ListenAddress(configAddr, override)
	if err != nil {
		return fmt.Errorf("resolve status address: %w", err)
	}

	lis, err := status.Listen(ctx, listenAddress)
	if err != nil {
		return err
	}

	servers.Go(func() {
		if serveErr := status.Serve(ctx, lis, alarm); serveErr != nil {
			logger.ErrorKV(ctx, "Status API failed", "error", serveErr)
		}
	})

	return nil
}

// newBuzzer returns the PWM buzzer when configured, the log buzzer otherwise.
//
//nolint:ireturn // Callers only need the actuator behaviour.
func newBuzzer(cfg *config.Buzzer, dryRun bool) coordinator.Buzzer {
	if dryRun || cfg.PWMPath == "" {
		return actuator.NewLogBuzzer()
	}

	return actuator.NewPWMBuzzer(cfg.PWMPath)
}

// localActor identifies the controller itself as the trigger source.
func localActor(ctx context.Context) *domain.Actor {
	actor, err := common.DetectActor()
	if err != nil {
		logger.WarnKV(ctx, "Cannot detect local actor", "error", err)

		return &domain.Actor{Hostname: "localhost", Username: "alarm-clock"}
	}

	return actor
}
