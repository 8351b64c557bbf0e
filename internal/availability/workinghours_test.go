package availability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorkingHours(t *testing.T) {
	wh := DefaultWorkingHours()
	assert.Equal(t, "09:00", wh.Start)
	assert.Equal(t, "17:00", wh.End)
	assert.Len(t, wh.Days, 5)
	assert.True(t, wh.isWorkingDay(time.Monday))
	assert.False(t, wh.isWorkingDay(time.Saturday))
	assert.False(t, wh.isWorkingDay(time.Sunday))
}

func TestWorkingHoursWindow(t *testing.T) {
	wh := DefaultWorkingHours()

	t.Run("working day yields the day's window", func(t *testing.T) {
		mon := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
		start, end, ok, err := wh.window(mon)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2025, 6, 2, 17, 0, 0, 0, time.UTC), end)
	})

	t.Run("non-working day yields nothing", func(t *testing.T) {
		sun := time.Date(2025, 6, 1, 13, 30, 0, 0, time.UTC)
		_, _, ok, err := wh.window(sun)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("window keeps the input zone", func(t *testing.T) {
		berlin, err := time.LoadLocation("Europe/Berlin")
		require.NoError(t, err)
		mon := time.Date(2025, 6, 2, 13, 30, 0, 0, berlin)
		start, _, ok, err := wh.window(mon)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, berlin, start.Location())
		assert.Equal(t, 9, start.Hour())
	})

	t.Run("malformed clock is an error", func(t *testing.T) {
		bad := WorkingHours{Start: "nine", End: "17:00", Days: []time.Weekday{time.Monday}}
		mon := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
		_, _, _, err := bad.window(mon)
		assert.Error(t, err)
	})

	t.Run("inverted window reports not ok", func(t *testing.T) {
		inv := WorkingHours{Start: "17:00", End: "09:00", Days: []time.Weekday{time.Monday}}
		mon := time.Date(2025, 6, 2, 13, 30, 0, 0, time.UTC)
		_, _, ok, err := inv.window(mon)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestParseClock(t *testing.T) {
	h, m, err := parseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 30, m)

	for _, bad := range []string{"24:00", "09:60", "-1:00", "oops"} {
		_, _, err := parseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
