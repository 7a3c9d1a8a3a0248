package actuator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/oshokin/wakeup-alarm/internal/logger"
)

// sysfs attribute files of a PWM channel.
const (
	periodFile    = "period"
	dutyCycleFile = "duty_cycle"
	enableFile    = "enable"
)

// pwmFilePermissions is used when writing sysfs attributes.
const pwmFilePermissions = 0o644

// ErrInvalidTone is returned for a tone that cannot be expressed as a PWM period.
var ErrInvalidTone = errors.New("tone frequency must be positive")

// PWMBuzzer drives a buzzer through a sysfs PWM channel directory
// such as /sys/class/pwm/pwmchip0/pwm0. The channel must already be exported.
type PWMBuzzer struct {
	// dir is the PWM channel directory.
	dir string
	// mu serialises attribute writes.
	mu sync.Mutex
}

// NewPWMBuzzer returns a buzzer bound to the channel directory.
func NewPWMBuzzer(dir string) *PWMBuzzer {
	return &PWMBuzzer{dir: filepath.Clean(dir)}
}

// Sound programs the period and duty cycle for the tone and enables the output.
func (b *PWMBuzzer) Sound(ctx context.Context, tone Tone) error {
	if tone.Frequency == 0 {
		return ErrInvalidTone
	}

	period, duty := pwmTiming(tone)

	b.mu.Lock()
	defer b.mu.Unlock()

	// Duty must never exceed the period, so clear it before changing the period.
	if err := b.write(dutyCycleFile, 0); err != nil {
		return err
	}

	if err := b.write(periodFile, period); err != nil {
		return err
	}

	if err := b.write(dutyCycleFile, duty); err != nil {
		return err
	}

	if err := b.write(enableFile, 1); err != nil {
		return err
	}

	logger.DebugKV(ctx, "PWM buzzer on", "dir", b.dir, "period_ns", period, "duty_ns", duty)

	return nil
}

// Silence zeroes the duty cycle and disables the output.
func (b *PWMBuzzer) Silence(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.write(dutyCycleFile, 0); err != nil {
		return err
	}

	if err := b.write(enableFile, 0); err != nil {
		return err
	}

	logger.DebugKV(ctx, "PWM buzzer off", "dir", b.dir)

	return nil
}

// write stores a decimal value into a channel attribute.
func (b *PWMBuzzer) write(name string, value int64) error {
	path := filepath.Join(b.dir, name)

	if err := os.WriteFile(path, []byte(strconv.FormatInt(value, 10)), pwmFilePermissions); err != nil {
		return fmt.Errorf("write pwm %s: %w", name, err)
	}

	return nil
}

// pwmTiming converts a tone into sysfs period and duty cycle in nanoseconds.
func pwmTiming(tone Tone) (period, duty int64) {
	period = int64(time.Second) / int64(tone.Frequency)
	duty = period * int64(tone.Intensity) / MaxIntensity

	return period, duty
}
