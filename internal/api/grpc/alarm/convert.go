package alarm

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/wakeup-alarm/internal/domain/alarm"
)

// Field names of the state and actor structs.
const (
	fieldPhase      = "phase"
	fieldArmed      = "armed"
	fieldTarget     = "target"
	fieldCycleID    = "cycle_id"
	fieldArmedAt    = "armed_at"
	fieldChangedAt  = "changed_at"
	fieldLastReport = "last_report"
	fieldLastActor  = "last_actor"
	fieldLocations  = "locations"
	fieldHostname   = "hostname"
	fieldUsername   = "username"
)

// ToProtoState converts a domain state and the location enumeration into a Struct.
func ToProtoState(state *domain.State, locations []domain.Location) (*structpb.Struct, error) {
	if state == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}, nil
	}

	names := make([]any, 0, len(locations))
	for _, location := range locations {
		names = append(names, string(location))
	}

	fields := map[string]any{
		fieldPhase:      state.Phase.String(),
		fieldArmed:      state.IsArmed(),
		fieldTarget:     string(state.Target),
		fieldCycleID:    state.CycleID,
		fieldArmedAt:    formatTime(state.ArmedAt),
		fieldChangedAt:  formatTime(state.ChangedAt),
		fieldLastReport: string(state.LastReport),
		fieldLocations:  names,
	}

	if state.LastActor != nil {
		fields[fieldLastActor] = map[string]any{
			fieldHostname: state.LastActor.Hostname,
			fieldUsername: state.LastActor.Username,
		}
	}

	result, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}

	return result, nil
}

// FromProtoState converts a Struct back into a domain state and location enumeration.
// Missing or mistyped fields decode to zero values.
func FromProtoState(s *structpb.Struct) (*domain.State, []domain.Location) {
	fields := s.GetFields()

	phase, _ := domain.ParsePhase(fields[fieldPhase].GetStringValue())

	state := &domain.State{
		Phase:      phase,
		Target:     domain.Location(fields[fieldTarget].GetStringValue()),
		CycleID:    fields[fieldCycleID].GetStringValue(),
		ArmedAt:    parseTime(fields[fieldArmedAt].GetStringValue()),
		ChangedAt:  parseTime(fields[fieldChangedAt].GetStringValue()),
		LastReport: domain.Location(fields[fieldLastReport].GetStringValue()),
		LastActor:  FromProtoActor(fields[fieldLastActor].GetStructValue()),
	}

	values := fields[fieldLocations].GetListValue().GetValues()

	locations := make([]domain.Location, 0, len(values))
	for _, v := range values {
		locations = append(locations, domain.Location(v.GetStringValue()))
	}

	return state, locations
}

// ToProtoActor converts an actor into a Struct. A nil actor yields an empty Struct.
func ToProtoActor(actor *domain.Actor) *structpb.Struct {
	if actor == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			fieldHostname: structpb.NewStringValue(actor.Hostname),
			fieldUsername: structpb.NewStringValue(actor.Username),
		},
	}
}

// FromProtoActor converts a Struct into an actor. It returns nil when both fields are empty.
func FromProtoActor(s *structpb.Struct) *domain.Actor {
	fields := s.GetFields()

	actor := &domain.Actor{
		Hostname: fields[fieldHostname].GetStringValue(),
		Username: fields[fieldUsername].GetStringValue(),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

// formatTime renders t as RFC 3339 with nanoseconds, or an empty string for the zero time.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime is the inverse of formatTime; unparsable input yields the zero time.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}

	return t
}
