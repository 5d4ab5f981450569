package request

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireID_Valid(t *testing.T) {
	result, err := RequireID("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", result)
}

func TestRequireID_Empty(t *testing.T) {
	_, err := RequireID("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required ID")
}

func TestDecode_ValidJSON(t *testing.T) {
	body := `{"name":"nightly","kind":"daily","time_of_day":"02:30","enabled":true}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateSchedule
	err = Decode(r, &payload)
	require.NoError(t, err)
	assert.Equal(t, "nightly", payload.Name)
	assert.Equal(t, "daily", payload.Kind)
	require.NotNil(t, payload.TimeOfDay)
	assert.Equal(t, "02:30", *payload.TimeOfDay)
	assert.True(t, payload.Enabled)
}

func TestDecode_InvalidJSON(t *testing.T) {
	body := `{not valid json}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateSchedule
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_ValidationFails(t *testing.T) {
	// Kind outside the allowed set.
	body := `{"name":"nightly","kind":"hourly"}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateSchedule
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestTimeOfDayValidation_Valid(t *testing.T) {
	valid := []string{"00:00", "02:30", "09:05", "19:59", "23:59"}
	for _, v := range valid {
		t.Run(v, func(t *testing.T) {
			assert.True(t, timeOfDayRegex.MatchString(v), "expected %q to be valid", v)
		})
	}
}

func TestTimeOfDayValidation_Invalid(t *testing.T) {
	invalid := []string{"", "24:00", "2:30", "02:60", "02:5", "noonish", "02-30"}
	for _, v := range invalid {
		t.Run(v, func(t *testing.T) {
			assert.False(t, timeOfDayRegex.MatchString(v), "expected %q to be invalid", v)
		})
	}
}

func TestDecode_ServerExtraPathsMustBeAbsolute(t *testing.T) {
	body := `{"name":"alpha","host":"alpha.example.com","username":"backup","extra_paths":["relative/path"]}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateServer
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}
