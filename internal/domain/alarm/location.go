package alarm

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Location is a room identifier known to both the controller and the scanning peer.
type Location string

// Well-known rooms the NFC tags are installed in.
const (
	Bathroom  Location = "bathroom"
	Kitchen   Location = "kitchen"
	OtherRoom Location = "otherroom"
)

var (
	// errNoLocations is returned when the enumeration is empty.
	errNoLocations = errors.New("at least one location is required")
	// errEmptyLocation is returned for a blank location name.
	errEmptyLocation = errors.New("location name must not be empty")
	// errDuplicateLocation is returned when a name appears twice.
	errDuplicateLocation = errors.New("duplicate location")
)

// DefaultLocations returns the rooms used when the configuration lists none.
func DefaultLocations() []Location {
	return []Location{Bathroom, Kitchen, OtherRoom}
}

// ValidateLocations checks that the enumeration is non-empty, has no blank
// names and no duplicates.
func ValidateLocations(locations []Location) error {
	if len(locations) == 0 {
		return errNoLocations
	}

	seen := make(map[Location]struct{}, len(locations))
	for _, location := range locations {
		if location == "" {
			return errEmptyLocation
		}

		if !utf8.ValidString(string(location)) {
			return fmt.Errorf("location %q is not valid UTF-8", string(location))
		}

		if _, ok := seen[location]; ok {
			return fmt.Errorf("%w: %s", errDuplicateLocation, location)
		}

		seen[location] = struct{}{}
	}

	return nil
}

// ParseLocation decodes a report payload into a member of known.
// Payloads that are not valid UTF-8 or do not exactly equal one of the
// known names are rejected.
func ParseLocation(payload []byte, known []Location) (Location, bool) {
	if len(payload) == 0 || !utf8.Valid(payload) {
		return "", false
	}

	candidate := Location(payload)
	for _, location := range known {
		if candidate == location {
			return location, true
		}
	}

	return "", false
}
