package alarm

import "time"

// Actor identifies who triggered an alarm cycle.
type Actor struct {
	// Hostname is the machine name where the action was performed.
	Hostname string
	// Username is the system user who triggered the action.
	Username string
}

// Clone returns a deep copy of the actor.
func (a *Actor) Clone() *Actor {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// String renders the actor as username@hostname.
func (a *Actor) String() string {
	if a == nil {
		return "<unknown>"
	}

	return a.Username + "@" + a.Hostname
}

// Phase is the position of the alarm in its arm/disarm cycle.
type Phase int

const (
	// Idle means no alarm is sounding and no target is pending.
	Idle Phase = iota
	// Armed means the buzzer is sounding until the target location is reported.
	Armed
)

// String returns the lower-case phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	default:
		return "unknown"
	}
}

// ParsePhase converts a phase name back into a Phase.
func ParsePhase(s string) (Phase, bool) {
	switch s {
	case "idle":
		return Idle, true
	case "armed":
		return Armed, true
	default:
		return Idle, false
	}
}

// State represents the alarm status at a specific point in time.
type State struct {
	// Phase is either Idle or Armed.
	Phase Phase
	// Target is the location that disarms the current cycle. Empty while Idle.
	Target Location
	// CycleID identifies the current arm cycle. Empty while Idle.
	CycleID string
	// ArmedAt is when the current cycle was armed. Zero while Idle.
	ArmedAt time.Time
	// ChangedAt is when the phase last changed.
	ChangedAt time.Time
	// LastActor is who triggered the most recent cycle.
	LastActor *Actor
	// LastReport is the most recent location reported while armed.
	LastReport Location
}

// IsArmed reports whether the alarm is sounding.
func (s *State) IsArmed() bool {
	return s != nil && s.Phase == Armed
}

// Clone returns a copy of the state to avoid leaking internal references.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}

	cloned := *s
	cloned.LastActor = s.LastActor.Clone()

	return &cloned
}
