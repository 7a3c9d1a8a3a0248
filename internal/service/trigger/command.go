package trigger

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/wakeup-alarm/internal/config"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
	"github.com/oshokin/wakeup-alarm/internal/service/common"
	"github.com/oshokin/wakeup-alarm/internal/version"
)

// Options configures the remote trigger.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// StatusAddress overrides the status API address from config when specified.
	StatusAddress string

	// RetryInterval is the delay between attempts, defaults to one second.
	RetryInterval time.Duration
}

// defaultRetryInterval defines retry delay when the controller cannot be reached.
const defaultRetryInterval = 1 * time.Second

// remote is the part of the status client used to arm the alarm.
type remote interface {
	TriggerAlarm(ctx context.Context, actor *domain.Actor) (*domain.State, error)
}

// Run arms the alarm and retries until the controller confirms it is armed
// or ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	// Load configuration first, it decides where logs go.
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
	ctx = logger.WithName(ctx, "alarm-trigger")

	logger.InfoKV(ctx, "Starting", version.Fields()...)

	statusAddress := opts.StatusAddress
	if statusAddress == "" {
		if statusAddress, err = cfg.RequireStatusAddress(); err != nil {
			return err
		}
	}

	// Identify current user and hostname for the audit trail.
	actor, err := common.DetectActor()
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, statusAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return err
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Triggering alarm", "status_address", statusAddress, "actor", actor.String())

	_, err = push(ctx, client, actor, opts.RetryInterval)

	return err
}

// push calls TriggerAlarm immediately and then every interval until the
// returned state is armed.
func push(ctx context.Context, client remote, actor *domain.Actor, interval time.Duration) (*domain.State, error) {
	if interval <= 0 {
		interval = defaultRetryInterval
	}

	// attempt tries once to arm the alarm and reports the armed state on success.
	attempt := func() *domain.State {
		state, err := client.TriggerAlarm(ctx, actor)
		if err != nil {
			// Log error but continue retrying for transient failures.
			logger.ErrorKV(ctx, "TriggerAlarm failed", "error", err)

			return nil
		}

		if !state.IsArmed() {
			logger.WarnKV(ctx, "Controller did not arm the alarm", "phase", state.Phase)

			return nil
		}

		logger.Infof(ctx, "Alarm armed: %s", formatState(state))

		return state
	}

	if state := attempt(); state != nil {
		return state, nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if state := attempt(); state != nil {
				return state, nil
			}
		}
	}
}

// formatState converts an armed state to a readable log message.
func formatState(state *domain.State) string {
	armedAt := "<unknown>"
	if !state.ArmedAt.IsZero() {
		armedAt = humanize.Time(state.ArmedAt)
	}

	return fmt.Sprintf("target=%s cycle=%s armed=%s by %s", state.Target, state.CycleID, armedAt, state.LastActor)
}
