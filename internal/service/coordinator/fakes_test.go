package coordinator

import (
	"context"
	"errors"
	"sync"

	"github.com/oshokin/wakeup-alarm/internal/actuator"
)

var (
	errTestPublish = errors.New("test publish error")
	errTestBuzzer  = errors.New("test buzzer error")
)

// message is a single recorded publish.
type message struct {
	topic   string
	payload string
}

// recordingPublisher remembers every publish and can be told to fail.
type recordingPublisher struct {
	mu       sync.Mutex
	messages []message
	err      error
}

// Publish records the message and returns the configured error.
func (p *recordingPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.messages = append(p.messages, message{topic: topic, payload: string(payload)})

	return p.err
}

// take returns and clears the recorded messages.
func (p *recordingPublisher) take() []message {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := p.messages
	p.messages = nil

	return out
}

// fakeBuzzer tracks whether it is sounding and can be told to fail.
type fakeBuzzer struct {
	mu         sync.Mutex
	sounding   bool
	tone       actuator.Tone
	soundErr   error
	silenceErr error
}

// Sound turns the buzzer on unless soundErr is set.
func (b *fakeBuzzer) Sound(_ context.Context, tone actuator.Tone) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.soundErr != nil {
		return b.soundErr
	}

	b.sounding = true
	b.tone = tone

	return nil
}

// Silence turns the buzzer off unless silenceErr is set.
func (b *fakeBuzzer) Silence(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.silenceErr != nil {
		return b.silenceErr
	}

	b.sounding = false

	return nil
}

// isSounding reports the buzzer output.
func (b *fakeBuzzer) isSounding() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sounding
}

// setErrors replaces the configured failures.
func (b *fakeBuzzer) setErrors(soundErr, silenceErr error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.soundErr = soundErr
	b.silenceErr = silenceErr
}

// recordingDisplay keeps every screen shown.
type recordingDisplay struct {
	mu      sync.Mutex
	screens [][]string
}

// Show records the screen.
func (d *recordingDisplay) Show(_ context.Context, lines ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.screens = append(d.screens, lines)
}

// last returns the most recent screen.
func (d *recordingDisplay) last() []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.screens) == 0 {
		return nil
	}

	return d.screens[len(d.screens)-1]
}

// count returns the number of screens shown.
func (d *recordingDisplay) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.screens)
}
