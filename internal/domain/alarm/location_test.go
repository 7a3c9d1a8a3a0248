package alarm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestParseLocation checks exact matching and rejection of malformed payloads.
func TestParseLocation(t *testing.T) {
	t.Parallel()

	known := DefaultLocations()

	got, ok := ParseLocation([]byte("kitchen"), known)
	require.True(t, ok)
	require.Equal(t, Kitchen, got)

	rejected := [][]byte{
		nil,
		{},
		[]byte("Kitchen"),
		[]byte("kitchen "),
		[]byte("garage"),
		{0xff, 0xfe, 0xfd},
	}
	for _, payload := range rejected {
		_, ok := ParseLocation(payload, known)
		require.False(t, ok, "payload %q must not match", payload)
	}

	_, ok = ParseLocation([]byte("kitchen"), nil)
	require.False(t, ok)
}

// TestValidateLocations covers empty, blank and duplicate enumerations.
func TestValidateLocations(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateLocations(DefaultLocations()))
	require.ErrorIs(t, ValidateLocations(nil), errNoLocations)
	require.ErrorIs(t, ValidateLocations([]Location{Kitchen, ""}), errEmptyLocation)
	require.ErrorIs(t, ValidateLocations([]Location{Kitchen, Kitchen}), errDuplicateLocation)
	require.Error(t, ValidateLocations([]Location{Location([]byte{0xff})}))
}
