package timeparsing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday, January 15, 2025, 10:00.
var refNow = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

func TestParseCompactDuration(t *testing.T) {
	tests := []struct {
		input   string
		want    time.Time
		wantErr bool
	}{
		{"+6h", time.Date(2025, 1, 15, 16, 0, 0, 0, time.UTC), false},
		{"-1d", time.Date(2025, 1, 14, 10, 0, 0, 0, time.UTC), false},
		{"2w", time.Date(2025, 1, 29, 10, 0, 0, 0, time.UTC), false},
		{"-1m", time.Date(2024, 12, 15, 10, 0, 0, 0, time.UTC), false},
		{"+1y", time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC), false},
		{"0d", refNow, false},
		{"1x", time.Time{}, true},
		{"+d", time.Time{}, true},
		{"1.5d", time.Time{}, true},
		{"", time.Time{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCompactDuration(tt.input, refNow)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, IsCompactDuration(tt.input))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v want %v", got, tt.want)
		})
	}
}

func TestParseCompactDurationMonthEnd(t *testing.T) {
	// AddDate normalises Jan 31 + 1 month to Mar 3 (2025 is not a leap year).
	jan31 := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	got, err := ParseCompactDuration("+1m", jan31)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), got)
}

func TestParseRelativeTime(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantDate string // 2006-01-02
		wantHour int    // -1 skips the hour check
	}{
		{"compact first", "+1d", "2025-01-16", 10},
		{"date only", "2025-02-01", "2025-02-01", 0},
		{"rfc3339", "2025-03-15T14:30:00Z", "2025-03-15", 14},
		{"tomorrow", "tomorrow", "2025-01-16", -1},
		{"next monday", "next monday", "2025-01-20", -1},
		{"tomorrow at 9am", "tomorrow at 9am", "2025-01-16", 9},
		{"days ago", "3 days ago", "2025-01-12", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRelativeTime(tt.input, refNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDate, got.Format("2006-01-02"))
			if tt.wantHour >= 0 {
				assert.Equal(t, tt.wantHour, got.Hour())
			}
		})
	}
}

func TestParseRelativeTimeRejects(t *testing.T) {
	for _, in := range []string{"", "   ", "not-a-date", "soup"} {
		_, err := ParseRelativeTime(in, refNow)
		assert.Error(t, err, "input %q", in)
	}
}

func TestParseSince(t *testing.T) {
	got, err := ParseSince("2w", refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.AddDate(0, 0, -14), got)

	got, err = ParseSince("-6h", refNow)
	require.NoError(t, err)
	assert.Equal(t, refNow.Add(-6*time.Hour), got)

	got, err = ParseSince("2025-01-01", refNow)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Day())

	_, err = ParseSince("+1d", refNow)
	assert.ErrorContains(t, err, "future")
}
