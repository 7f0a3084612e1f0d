package export

import (
	"strings"
	"testing"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestRenderCalendarWeeklyEvents(t *testing.T) {
	// 2025-07-16 is a Wednesday, so the Monday session starts the following week.
	termStart := time.Date(2025, 7, 16, 0, 0, 0, 0, time.UTC)
	stamp := time.Date(2025, 7, 1, 8, 0, 0, 0, time.UTC)

	payload, err := RenderCalendar(sampleDetails(), CalendarOptions{Name: "Term 1", TermStart: termStart, Weeks: 16, Stamp: stamp})
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(payload)))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 3)

	starts := map[string]string{}
	for _, evt := range events {
		starts[evt.Id()] = evt.GetProperty(ics.ComponentPropertyDtStart).Value
		assert.Equal(t, "FREQ=WEEKLY;COUNT=16", evt.GetProperty(ics.ComponentPropertyRrule).Value)
	}
	assert.Equal(t, "20250721T073000Z", starts["x1@sma-timetable-api"])
	assert.Equal(t, "20250722T093000Z", starts["x2@sma-timetable-api"])

	lab := events[2]
	assert.Equal(t, "x2@sma-timetable-api", lab.Id())
	assert.Equal(t, "CHEM1 (c2)", lab.GetProperty(ics.ComponentPropertySummary).Value)
	assert.Equal(t, "Lab A", lab.GetProperty(ics.ComponentPropertyLocation).Value)
}

func TestRenderCalendarHonoursLocation(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	details := []models.SessionDetail{{ID: "x1", ClassID: "c1", CourseCode: "MATH1", RoomID: "r1", DayOfWeek: 1, StartTime: "07:30", EndTime: "09:30"}}

	payload, err := RenderCalendar(details, CalendarOptions{TermStart: time.Date(2025, 7, 14, 0, 0, 0, 0, loc), Weeks: 1, Location: loc})
	require.NoError(t, err)

	cal, err := ics.ParseCalendar(strings.NewReader(string(payload)))
	require.NoError(t, err)
	require.Len(t, cal.Events(), 1)
	evt := cal.Events()[0]
	assert.Equal(t, "20250714T003000Z", evt.GetProperty(ics.ComponentPropertyDtStart).Value)
	assert.Equal(t, "r1", evt.GetProperty(ics.ComponentPropertyLocation).Value)
}

func TestRenderCalendarRequiresTermStart(t *testing.T) {
	_, err := RenderCalendar(sampleDetails(), CalendarOptions{})
	assert.ErrorIs(t, err, ErrInvalidTermStart)
}

func TestRenderCalendarRejectsBadClock(t *testing.T) {
	details := []models.SessionDetail{{ID: "x1", DayOfWeek: 1, StartTime: "7h", EndTime: "09:30"}}
	_, err := RenderCalendar(details, CalendarOptions{TermStart: time.Now()})
	assert.Error(t, err)
}
