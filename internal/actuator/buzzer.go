package actuator

import (
	"context"
	"sync"

	"github.com/oshokin/wakeup-alarm/internal/logger"
)

// MaxIntensity is the full-scale 16-bit duty value.
const MaxIntensity = 0xFFFF

// Tone is a buzzer frequency and intensity.
type Tone struct {
	// Frequency in Hz.
	Frequency uint32
	// Intensity is a 16-bit duty value, MaxIntensity being always on.
	Intensity uint16
}

// IsSilent reports whether the tone produces no sound.
func (t Tone) IsSilent() bool {
	return t.Frequency == 0 || t.Intensity == 0
}

// LogBuzzer is a buzzer that only logs. It is used when no PWM device is configured.
type LogBuzzer struct {
	// mu protects tone.
	mu sync.Mutex
	// tone is the last tone commanded; the zero Tone means silent.
	tone Tone
}

// NewLogBuzzer creates a silent log buzzer.
func NewLogBuzzer() *LogBuzzer {
	return new(LogBuzzer)
}

// Sound starts the tone.
func (b *LogBuzzer) Sound(ctx context.Context, tone Tone) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tone = tone

	logger.InfoKV(ctx, "Buzzer on", "frequency_hz", tone.Frequency, "intensity", tone.Intensity)

	return nil
}

// Silence stops the tone.
func (b *LogBuzzer) Silence(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tone = Tone{}

	logger.Info(ctx, "Buzzer off")

	return nil
}

// IsSounding reports whether the last command left the buzzer on.
func (b *LogBuzzer) IsSounding() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return !b.tone.IsSilent()
}
