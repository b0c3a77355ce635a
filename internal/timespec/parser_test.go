package timespec

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)

func TestParse(t *testing.T) {
	tests := []struct {
		spec string
		want time.Time
	}{
		{"now", now},
		{"NOW", now},
		{"2025-10-29T13:00:00Z", time.Date(2025, 10, 29, 13, 0, 0, 0, time.UTC)},
		{"2025-10-29T15:00:00+02:00", time.Date(2025, 10, 29, 13, 0, 0, 0, time.UTC)},
		{"2025-10-29T13:00:30", time.Date(2025, 10, 29, 13, 0, 30, 0, time.Local)},
		{"2025-10-29T13:00", time.Date(2025, 10, 29, 13, 0, 0, 0, time.Local)},
		{"2025-10-29 13:00", time.Date(2025, 10, 29, 13, 0, 0, 0, time.Local)},
		{"2025-10-29", time.Date(2025, 10, 29, 0, 0, 0, 0, time.Local)},
		{"3d", now.AddDate(0, 0, 3)},
		{"+3d", now.AddDate(0, 0, 3)},
		{"-1d", now.AddDate(0, 0, -1)},
		{"2w", now.AddDate(0, 0, 14)},
		{"1h30m", now.Add(90 * time.Minute)},
		{"+45m", now.Add(45 * time.Minute)},
		{"-2h", now.Add(-2 * time.Hour)},
		{"  3d  ", now.AddDate(0, 0, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			got, err := Parse(tt.spec, now)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}

	invalid := []string{"", "   ", "tomorrow", "3x", "2025-13-01", "d3"}
	for _, spec := range invalid {
		t.Run("invalid "+spec, func(t *testing.T) {
			_, err := Parse(spec, now)
			assert.Error(t, err)
		})
	}
}

func TestParseDue(t *testing.T) {
	for _, spec := range []string{"", "none", "None", "clear", " clear "} {
		t.Run("clears with "+spec, func(t *testing.T) {
			got, err := ParseDue(spec, now)
			require.NoError(t, err)
			assert.Nil(t, got)
		})
	}

	t.Run("parses offsets", func(t *testing.T) {
		got, err := ParseDue("1d", now)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, now.AddDate(0, 0, 1).Equal(*got))
	})

	t.Run("propagates errors", func(t *testing.T) {
		_, err := ParseDue("someday", now)
		assert.Error(t, err)
	})
}

func TestParseRange(t *testing.T) {
	t.Run("both empty", func(t *testing.T) {
		after, before, err := ParseRange("", "", now)
		require.NoError(t, err)
		assert.Nil(t, after)
		assert.Nil(t, before)
	})

	t.Run("both bounds", func(t *testing.T) {
		after, before, err := ParseRange("-1d", "1w", now)
		require.NoError(t, err)
		require.NotNil(t, after)
		require.NotNil(t, before)
		assert.True(t, after.Before(*before))
	})

	t.Run("inverted range", func(t *testing.T) {
		_, _, err := ParseRange("2d", "1d", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--due-after must be before --due-before")
	})

	t.Run("names the bad flag", func(t *testing.T) {
		_, _, err := ParseRange("", "bogus", now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--due-before")
	})
}
