package clock

import (
	"context"
	"time"

	"github.com/oshokin/wakeup-alarm/internal/display"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
	"github.com/oshokin/wakeup-alarm/internal/transport/mqtt"
)

// poller is the receive side of the messaging channel.
type poller interface {
	Poll(ctx context.Context, timeout time.Duration, handle mqtt.Handler) int
}

// dispatcher is the part of the coordinator the loop drives.
type dispatcher interface {
	Trigger(ctx context.Context, actor *domain.Actor) (*domain.State, error)
	Dispatch(ctx context.Context, topic string, payload []byte)
}

// loop arms the alarm once after triggerDelay and polls the channel every
// pollInterval until ctx is cancelled. The armed alarm has no timeout: it
// keeps sounding until the target is reported.
func loop(
	ctx context.Context,
	channel poller,
	coordinator dispatcher,
	screen display.Display,
	actor *domain.Actor,
	triggerDelay, pollInterval time.Duration,
) error {
	screen.Show(ctx, display.Countdown(triggerDelay)...)
	logger.InfoKV(ctx, "Waiting before triggering alarm", "delay", triggerDelay)

	trigger := time.NewTimer(triggerDelay)
	defer trigger.Stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, stopping control loop")

			return nil
		case <-trigger.C:
			if _, err := coordinator.Trigger(ctx, actor); err != nil {
				logger.ErrorKV(ctx, "Failed to trigger alarm", "error", err)
			}
		case <-ticker.C:
			if n := channel.Poll(ctx, 0, coordinator.Dispatch); n > 0 {
				logger.DebugKV(ctx, "Handled inbound messages", "count", n)
			}
		}
	}
}
