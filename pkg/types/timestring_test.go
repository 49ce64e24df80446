package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeString(t *testing.T) {
	ts, err := ParseTimeString("09:30")
	require.NoError(t, err)
	require.Equal(t, "09:30", ts.String())

	_, err = ParseTimeString("24:00")
	require.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = ParseTimeString("9:30")
	require.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = ParseTimeString("")
	require.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestAddMinutes(t *testing.T) {
	ts := TimeString("09:30")

	next, err := ts.AddMinutes(60)
	require.NoError(t, err)
	require.Equal(t, TimeString("10:30"), next)

	next, err = ts.AddMinutes(90)
	require.NoError(t, err)
	require.Equal(t, TimeString("11:00"), next)

	// Переход через полночь запрещен
	_, err = TimeString("23:30").AddMinutes(60)
	require.ErrorIs(t, err, ErrInvalidTimeString)

	_, err = ts.AddMinutes(-600)
	require.ErrorIs(t, err, ErrInvalidTimeString)
}

func TestAt(t *testing.T) {
	date := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	got, err := TimeString("14:45").At(date)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 9, 15, 14, 45, 0, 0, time.UTC), got)
}

func TestScan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("14:45"))
	require.Equal(t, TimeString("14:45"), ts)

	require.NoError(t, ts.Scan([]byte("08:00")))
	require.Equal(t, TimeString("08:00"), ts)

	// TIME-колонка приходит как time.Time
	require.NoError(t, ts.Scan(time.Date(2026, 9, 15, 18, 30, 0, 0, time.UTC)))
	require.Equal(t, TimeString("18:30"), ts)

	require.NoError(t, ts.Scan(nil))
	require.True(t, ts.IsZero())
}

func TestOrdering(t *testing.T) {
	require.True(t, TimeString("09:00").IsBefore("10:00"))
	require.True(t, TimeString("10:00").IsAfter("09:59"))
	require.False(t, TimeString("10:00").IsBefore("10:00"))
}
