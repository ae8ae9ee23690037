package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCalendar(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"full", "2029-Apr-13 21:46", time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC)},
		{"date only", "1900-Jan-01", time.Date(1900, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"iso display", "2020-01-01 12:30", time.Date(2020, time.January, 1, 12, 30, 0, 0, time.UTC)},
		{"padded", "  2029-Apr-13 21:46 ", time.Date(2029, time.April, 13, 21, 46, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCalendar(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}

	_, err := ParseCalendar("not a date")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2020-03-02")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.March, 2, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDate("2020-Mar-02")
	assert.Error(t, err)
}

func TestFormatAndDate(t *testing.T) {
	ts := time.Date(2029, time.April, 13, 21, 46, 59, 0, time.UTC)
	assert.Equal(t, "2029-04-13 21:46", Format(ts))
	assert.Equal(t, time.Date(2029, time.April, 13, 0, 0, 0, 0, time.UTC), Date(ts))
}
