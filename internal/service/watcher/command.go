package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"google.golang.org/protobuf/encoding/protojson"

	api "github.com/oshokin/wakeup-alarm/internal/api/grpc/alarm"
	"github.com/oshokin/wakeup-alarm/internal/config"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
	"github.com/oshokin/wakeup-alarm/internal/service/common"
	"github.com/oshokin/wakeup-alarm/internal/version"
)

// Options controls the watcher polling behavior and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// StatusAddress provides an optional status API address override.
	StatusAddress string
	// PollInterval defines the interval between state checks.
	PollInterval time.Duration
	// UntilDisarmed stops the watcher once an armed alarm has been disarmed.
	UntilDisarmed bool
	// JSON logs every observed state as protobuf JSON.
	JSON bool
}

// DefaultPollInterval defines the polling interval when none is given.
const DefaultPollInterval = 1 * time.Second

// source is the part of the status client the watcher polls.
type source interface {
	GetAlarmState(ctx context.Context) (*domain.State, []domain.Location, error)
}

// Run polls the alarm state and logs transitions until ctx is cancelled,
// or until the alarm is disarmed when UntilDisarmed is set.
func Run(ctx context.Context, opts *Options) error {
	// Load configuration first, it decides where logs go.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logFile, err := logger.Configure(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	defer func() {
		_ = logFile.Close()
	}()

	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-watch")

	logger.InfoKV(ctx, "Starting", version.Fields()...)

	statusAddress := opts.StatusAddress
	if statusAddress == "" {
		if statusAddress, err = cfg.RequireStatusAddress(); err != nil {
			return err
		}
	}

	client, err := common.Dial(ctx, statusAddress, common.WithCallTimeout(cfg.Timeout))
	if err != nil {
		return fmt.Errorf("dial status API: %w", err)
	}

	defer func() {
		_ = client.Close()
	}()

	logger.InfoKV(ctx, "Watching alarm state", "status_address", statusAddress, "interval", opts.PollInterval.String())

	return watch(ctx, client, opts)
}

// watch polls src every interval. Poll failures are logged and retried.
func watch(ctx context.Context, src source, opts *Options) error {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	var (
		last      *domain.State
		seenArmed bool
	)

	// check fetches the state once and reports whether watching is finished.
	check := func() bool {
		state, locations, err := src.GetAlarmState(ctx)
		if err != nil {
			logger.ErrorKV(ctx, "Get alarm state failed", "error", err)

			return false
		}

		if changed(last, state) {
			report(ctx, state, locations, opts.JSON)
		}

		last = state

		if state.IsArmed() {
			seenArmed = true

			return false
		}

		return opts.UntilDisarmed && seenArmed
	}

	if check() {
		return nil
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")

			return nil
		case <-ticker.C:
			if check() {
				logger.Info(ctx, "Alarm disarmed, exiting")

				return nil
			}
		}
	}
}

// changed reports whether next differs from prev in anything worth logging.
func changed(prev, next *domain.State) bool {
	if prev == nil {
		return true
	}

	return prev.Phase != next.Phase ||
		prev.CycleID != next.CycleID ||
		prev.LastReport != next.LastReport
}

// report logs one observed state.
func report(ctx context.Context, state *domain.State, locations []domain.Location, asJSON bool) {
	if asJSON {
		message, err := api.ToProtoState(state, locations)
		if err != nil {
			logger.ErrorKV(ctx, "Encode state failed", "error", err)

			return
		}

		logger.Info(ctx, protojson.Format(message))

		return
	}

	if !state.IsArmed() {
		logger.InfoKV(ctx, "Alarm idle",
			"since", since(state.ChangedAt),
			"last_report", state.LastReport,
			"last_actor", state.LastActor.String(),
		)

		return
	}

	logger.InfoKV(ctx, "Alarm armed",
		"target", state.Target,
		"cycle_id", state.CycleID,
		"since", since(state.ArmedAt),
		"last_report", state.LastReport,
		"actor", state.LastActor.String(),
	)
}

// since renders t relative to now, or "never" for the zero time.
func since(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return humanize.Time(t)
}
