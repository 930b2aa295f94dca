package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"2s"`, want: 2 * time.Second},
		{name: "minutes", in: `"10m"`, want: 10 * time.Minute},
		{name: "nanoseconds", in: `1500000000`, want: 1500 * time.Millisecond},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 90 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))
}

func TestTimestamp_RoundTripAndOrdering(t *testing.T) {
	loc := time.FixedZone("X", 3*3600)
	earlier := time.Date(2024, 5, 1, 12, 0, 0, 100, loc)
	later := earlier.Add(time.Millisecond)

	s1 := FormatTimestamp(earlier)
	s2 := FormatTimestamp(later)
	assert.Less(t, s1, s2)

	got, err := ParseTimestamp(s1)
	require.NoError(t, err)
	assert.True(t, got.Equal(earlier))
	assert.Equal(t, time.UTC, got.Location())

	whole := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	fraction := whole.Add(100 * time.Millisecond)
	assert.Less(t, FormatTimestamp(whole), FormatTimestamp(fraction))
	assert.Equal(t, "2024-05-01T12:00:00.000000000Z", FormatTimestamp(whole))

	_, err = ParseTimestamp("yesterday")
	require.Error(t, err)
}
