// Package display renders short status screens.
//
// The controller has no screen of its own; Log writes each screen to the
// structured log, and the helpers produce the line sets shown by the device.
package display

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/oshokin/wakeup-alarm/internal/logger"
)

// MaxLines is the number of text rows on the 128x64 panel.
const MaxLines = 4

// Display renders a set of status lines. It is write-only.
type Display interface {
	Show(ctx context.Context, lines ...string)
}

// Log is a Display that writes each screen to the log and remembers the last one.
type Log struct {
	// mu protects last.
	mu sync.Mutex
	// last holds the most recently shown lines.
	last []string
}

// NewLog creates an empty log display.
func NewLog() *Log {
	return new(Log)
}

// Show logs at most MaxLines non-empty lines.
func (l *Log) Show(ctx context.Context, lines ...string) {
	screen := make([]string, 0, MaxLines)
	for _, line := range lines {
		if line == "" {
			continue
		}

		if len(screen) == MaxLines {
			break
		}

		screen = append(screen, line)
	}

	l.mu.Lock()
	l.last = screen
	l.mu.Unlock()

	logger.InfoKV(ctx, "Display", "screen", strings.Join(screen, " | "))
}

// Last returns a copy of the most recently shown lines.
func (l *Log) Last() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.last...)
}

// Connecting is shown while the broker session is being established.
func Connecting() []string {
	return []string{"Connecting", "to broker..."}
}

// Connected is shown once subscribed to topic.
func Connected(topic string) []string {
	return []string{"MQTT Connected", "Subscribed:", topic}
}

// Idle is the resting screen.
func Idle() []string {
	return []string{"System Idle"}
}

// Countdown is shown while waiting to arm.
func Countdown(d time.Duration) []string {
	now := time.Now()

	return []string{"System Idle", "Alarm " + humanize.RelTime(now.Add(d), now, "ago", "from now")}
}

// Armed is shown while the alarm sounds.
func Armed(target string) []string {
	return []string{"ALARM TRIGGERED!", "Target:", target, "Scan NFC to stop"}
}

// Detected is shown for every tag reported while armed.
func Detected(location string) []string {
	return []string{"NFC Detected:", location}
}

// Disarmed is shown after the target was reached.
func Disarmed() []string {
	return []string{"Alarm off!", "Location OK!"}
}
