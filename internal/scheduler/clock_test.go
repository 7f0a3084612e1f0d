package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestParseClock(t *testing.T) {
	minutes, err := ParseClock("07:30")
	require.NoError(t, err)
	assert.Equal(t, 450, minutes)

	minutes, err = ParseClock("18:00:00")
	require.NoError(t, err)
	assert.Equal(t, 1080, minutes)

	_, err = ParseClock("7h")
	assert.Error(t, err)
	_, err = ParseClock("25:00")
	assert.Error(t, err)

	minutes, err = ParseClock("24:00")
	require.NoError(t, err)
	assert.Equal(t, 1440, minutes)
}

func TestParseClockRejectsOutOfRangeParts(t *testing.T) {
	for _, raw := range []string{"24:59", "24:00:01", "08:00:99", "08:00:-1", "08:00:xx"} {
		_, err := ParseClock(raw)
		assert.Error(t, err, raw)
	}
}

func TestDurationHours(t *testing.T) {
	hours, err := DurationHours("08:00", "09:30")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, hours, 1e-9)

	_, err = DurationHours("10:00", "09:00")
	assert.Error(t, err)
}

func TestEligibleSlotsFiltersWeekdaysAndWindow(t *testing.T) {
	slots := []models.TimeSlot{
		{ID: "ok", DayOfWeek: 1, StartTime: "07:30", EndTime: "09:30"},
		{ID: "late", DayOfWeek: 2, StartTime: "17:00", EndTime: "19:00"},
		{ID: "early", DayOfWeek: 3, StartTime: "07:00", EndTime: "08:00"},
		{ID: "saturday", DayOfWeek: 6, StartTime: "09:00", EndTime: "10:00"},
		{ID: "sunday", DayOfWeek: 0, StartTime: "09:00", EndTime: "10:00"},
		{ID: "closing", DayOfWeek: 5, StartTime: "16:00", EndTime: "18:00"},
	}

	eligible := EligibleSlots(slots, DefaultWindow)

	ids := make([]string, 0, len(eligible))
	for _, s := range eligible {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"ok", "closing"}, ids)
}
