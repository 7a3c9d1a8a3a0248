package coordinator

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/oshokin/wakeup-alarm/internal/actuator"
	"github.com/oshokin/wakeup-alarm/internal/display"
	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
	"github.com/oshokin/wakeup-alarm/internal/logger"
)

// Publisher sends a payload to a topic on the messaging channel.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Buzzer is the audible actuator.
type Buzzer interface {
	Sound(ctx context.Context, tone actuator.Tone) error
	Silence(ctx context.Context) error
}

var (
	// ErrClosed is returned by Trigger after Close.
	ErrClosed = errors.New("coordinator is closed")

	// errPublisherRequired is returned when New gets a nil publisher.
	errPublisherRequired = errors.New("publisher must be provided")
	// errBuzzerRequired is returned when New gets a nil buzzer.
	errBuzzerRequired = errors.New("buzzer must be provided")
	// errDisplayRequired is returned when New gets a nil display.
	errDisplayRequired = errors.New("display must be provided")
	// errChoiceOutOfRange is returned when the chooser breaks its contract.
	errChoiceOutOfRange = errors.New("chosen location index out of range")
)

// Coordinator owns the alarm state and serialises every transition.
type Coordinator struct {
	// mu guards every field below it and spans whole transitions.
	mu sync.Mutex
	// state is the current alarm state.
	state domain.State
	// generation increments on every phase change.
	generation uint64
	// closed is set by Close.
	closed bool

	publisher Publisher
	buzzer    Buzzer
	display   display.Display

	// locations is the closed enumeration targets are drawn from.
	locations []domain.Location
	// tone is used whenever the alarm is armed.
	tone actuator.Tone
	// chooser picks target indexes.
	chooser Chooser
	// now is the clock.
	now func() time.Time
	// newCycleID names each arm cycle.
	newCycleID func() string
	// displayHold is how long the success screen stays before the idle screen.
	displayHold time.Duration
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithLocations sets the closed location enumeration.
func WithLocations(locations []domain.Location) Option {
	return func(c *Coordinator) {
		c.locations = append([]domain.Location(nil), locations...)
	}
}

// WithTone sets the buzzer tone used while armed.
func WithTone(tone actuator.Tone) Option {
	return func(c *Coordinator) {
		c.tone = tone
	}
}

// WithChooser sets the target selection source.
func WithChooser(chooser Chooser) Option {
	return func(c *Coordinator) {
		if chooser != nil {
			c.chooser = chooser
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCycleIDs sets the arm cycle identifier generator.
func WithCycleIDs(next func() string) Option {
	return func(c *Coordinator) {
		if next != nil {
			c.newCycleID = next
		}
	}
}

// WithDisplayHold sets how long the success screen is kept. Zero shows the
// idle screen immediately.
func WithDisplayHold(d time.Duration) Option {
	return func(c *Coordinator) {
		c.displayHold = d
	}
}

// New creates an idle coordinator.
func New(publisher Publisher, buzzer Buzzer, disp display.Display, opts ...Option) (*Coordinator, error) {
	switch {
	case publisher == nil:
		return nil, errPublisherRequired
	case buzzer == nil:
		return nil, errBuzzerRequired
	case disp == nil:
		return nil, errDisplayRequired
	}

	c := &Coordinator{
		publisher:  publisher,
		buzzer:     buzzer,
		display:    disp,
		locations:  domain.DefaultLocations(),
		tone:       actuator.Tone{Frequency: 500, Intensity: 5000}, //nolint:mnd // Device defaults.
		chooser:    NewRandomChooser(),
		now:        time.Now,
		newCycleID: uuid.NewString,
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := domain.ValidateLocations(c.locations); err != nil {
		return nil, fmt.Errorf("locations: %w", err)
	}

	c.state = domain.State{Phase: domain.Idle, ChangedAt: c.now()}

	return c, nil
}

// Trigger arms the alarm with a freshly chosen target. Calling it while
// already armed replaces the pending target. The buzzer is commanded before
// the state changes; if it fails the state is left as it was.
func (c *Coordinator) Trigger(ctx context.Context, actor *domain.Actor) (*domain.State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}

	index := c.chooser.Choose(len(c.locations))
	if index < 0 || index >= len(c.locations) {
		return nil, fmt.Errorf("%w: %d", errChoiceOutOfRange, index)
	}

	target := c.locations[index]

	if err := c.buzzer.Sound(ctx, c.tone); err != nil {
		return nil, fmt.Errorf("sound buzzer: %w", err)
	}

	previous := c.state.Target
	now := c.now()

	c.state = domain.State{
		Phase:     domain.Armed,
		Target:    target,
		CycleID:   c.newCycleID(),
		ArmedAt:   now,
		ChangedAt: now,
		LastActor: actor.Clone(),
	}
	c.generation++

	ctx = logger.WithKV(ctx, "cycle_id", c.state.CycleID)

	if previous != "" {
		logger.InfoKV(ctx, "Alarm re-armed", "previous_target", previous, "target", target, "actor", actor.String())
	} else {
		logger.InfoKV(ctx, "Alarm triggered", "target", target, "actor", actor.String())
	}

	c.publish(ctx, domain.TopicStart, domain.PayloadOn)
	c.publish(ctx, domain.TopicTargetLocation, string(target))
	c.display.Show(ctx, display.Armed(string(target))...)
	c.publish(ctx, domain.TopicScan, domain.PayloadScanStart)

	return c.state.Clone(), nil
}

// HandleLocationReport disarms the alarm when payload names the pending
// target. Reports while idle or after Close are ignored; mismatched or
// undecodable reports only update the display. It returns the resulting state.
func (c *Coordinator) HandleLocationReport(ctx context.Context, payload []byte) *domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		logger.WarnKV(ctx, "Location report ignored, coordinator is closed",
			"payload", quote(payload),
			"phase", c.state.Phase.String(),
		)

		return c.state.Clone()
	}

	if c.state.Phase != domain.Armed {
		logger.DebugKV(ctx, "Location report ignored, alarm is idle", "payload", quote(payload))

		return c.state.Clone()
	}

	ctx = logger.WithKV(ctx, "cycle_id", c.state.CycleID)

	location, ok := domain.ParseLocation(payload, c.locations)
	if !ok {
		logger.WarnKV(ctx, "Unrecognised location report", "payload", quote(payload))
		c.display.Show(ctx, display.Detected(quote(payload))...)

		return c.state.Clone()
	}

	c.state.LastReport = location
	c.display.Show(ctx, display.Detected(string(location))...)

	if location != c.state.Target {
		logger.InfoKV(ctx, "Wrong location, alarm keeps sounding", "reported", location, "target", c.state.Target)

		return c.state.Clone()
	}

	if err := c.buzzer.Silence(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to silence buzzer, alarm stays armed", "error", err)

		return c.state.Clone()
	}

	armedFor := c.now().Sub(c.state.ArmedAt)

	c.state = domain.State{
		Phase:      domain.Idle,
		ChangedAt:  c.now(),
		LastActor:  c.state.LastActor,
		LastReport: location,
	}
	c.generation++

	logger.InfoKV(ctx, "Alarm disarmed", "location", location, "armed_for", armedFor)

	c.publish(ctx, domain.TopicStart, domain.PayloadOff)
	c.display.Show(ctx, display.Disarmed()...)
	c.scheduleIdleScreen(ctx, c.generation)

	return c.state.Clone()
}

// Dispatch routes an inbound message. Only location reports are handled.
func (c *Coordinator) Dispatch(ctx context.Context, topic string, payload []byte) {
	if topic != domain.TopicLocation {
		logger.DebugKV(ctx, "Ignoring message on unhandled topic", "topic", topic)

		return
	}

	c.HandleLocationReport(ctx, payload)
}

// State returns a snapshot of the current state.
func (c *Coordinator) State() *domain.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state.Clone()
}

// Locations returns the closed location enumeration.
func (c *Coordinator) Locations() []domain.Location {
	return append([]domain.Location(nil), c.locations...)
}

// Close silences the buzzer for process teardown. An armed cycle is
// abandoned: nothing is published, since no matching report arrived.
func (c *Coordinator) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true

	if c.state.Phase != domain.Armed {
		return nil
	}

	logger.WarnKV(ctx, "Abandoning armed alarm on shutdown", "cycle_id", c.state.CycleID, "target", c.state.Target)

	if err := c.buzzer.Silence(ctx); err != nil {
		return fmt.Errorf("silence buzzer: %w", err)
	}

	c.state = domain.State{
		Phase:     domain.Idle,
		ChangedAt: c.now(),
		LastActor: c.state.LastActor,
	}
	c.generation++

	return nil
}

// publish sends a status message; failures are logged and absorbed.
func (c *Coordinator) publish(ctx context.Context, topic, payload string) {
	if err := c.publisher.Publish(ctx, topic, []byte(payload)); err != nil {
		logger.ErrorKV(ctx, "Publish failed", "topic", topic, "payload", payload, "error", err)

		return
	}

	logger.DebugKV(ctx, "Published", "topic", topic, "payload", payload)
}

// scheduleIdleScreen returns the display to the idle screen after the hold,
// unless another transition happened in the meantime. Must be called with mu held.
func (c *Coordinator) scheduleIdleScreen(ctx context.Context, generation uint64) {
	if c.displayHold <= 0 {
		c.display.Show(ctx, display.Idle()...)

		return
	}

	time.AfterFunc(c.displayHold, func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed || c.generation != generation {
			return
		}

		c.display.Show(ctx, display.Idle()...)
	})
}

// quote renders an inbound payload safely for logs and the display.
func quote(payload []byte) string {
	if utf8.Valid(payload) {
		return strconv.Quote(string(payload))
	}

	return fmt.Sprintf("%x", payload)
}
