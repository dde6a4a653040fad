package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00"},
		{45 * time.Second, "00:00:45"},
		{20 * time.Minute, "00:20:00"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03"},
		{26 * time.Hour, "26:00:00"},
		{-5 * time.Second, "00:00:00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.in))
	}
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("01:02:03")
	require.NoError(t, err)
	assert.Equal(t, time.Hour+2*time.Minute+3*time.Second, d)

	_, err = ParseDuration("not-a-duration")
	assert.Error(t, err)
}

func TestParseDurationRoundTrip(t *testing.T) {
	original := 3*time.Hour + 41*time.Minute + 9*time.Second
	parsed, err := ParseDuration(FormatDuration(original))
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestStartAndEndOfDay(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	moment := time.Date(2026, time.March, 15, 13, 45, 12, 0, loc)

	start := StartOfDay(moment)
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, 15, start.Day())

	end := EndOfDay(moment)
	assert.Equal(t, 23, end.Hour())
	assert.True(t, end.After(moment))
}
