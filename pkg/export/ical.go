package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ICalContentType is the MIME type of RenderCalendar payloads.
const ICalContentType = "text/calendar; charset=utf-8"

// ErrInvalidTermStart is returned when a calendar is requested without a usable first day of term.
var ErrInvalidTermStart = errors.New("term start must be a date")

// CalendarOptions anchors weekly sessions to real dates.
type CalendarOptions struct {
	Name string
	// TermStart is any day of the first teaching week.
	TermStart time.Time
	Weeks     int
	Location  *time.Location
	// Stamp is written as DTSTAMP on every event.
	Stamp time.Time
}

// RenderCalendar renders each session as a weekly recurring iCalendar event.
func RenderCalendar(details []models.SessionDetail, opts CalendarOptions) ([]byte, error) {
	if opts.TermStart.IsZero() {
		return nil, ErrInvalidTermStart
	}
	if opts.Weeks <= 0 {
		opts.Weeks = 1
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	if opts.Stamp.IsZero() {
		opts.Stamp = time.Now()
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//sma-timetable-api//timetable export//EN")
	if opts.Name != "" {
		cal.SetName(opts.Name)
		cal.SetXWRCalName(opts.Name)
	}

	for _, d := range sortedDetails(details) {
		start, end, err := occurrence(opts.TermStart, d, loc)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", d.ID, err)
		}
		event := cal.AddEvent(eventUID(d))
		event.SetDtStampTime(opts.Stamp)
		event.SetStartAt(start)
		event.SetEndAt(end)
		event.SetSummary(fmt.Sprintf("%s (%s)", d.CourseCode, d.ClassID))
		location := d.RoomName
		if location == "" {
			location = d.RoomID
		}
		event.SetLocation(location)
		event.SetDescription(fmt.Sprintf("Instructor: %s", d.InstructorID))
		event.AddRrule(fmt.Sprintf("FREQ=WEEKLY;COUNT=%d", opts.Weeks))
	}

	return []byte(cal.Serialize()), nil
}

// occurrence returns the first meeting of a session on or after the week of termStart.
func occurrence(termStart time.Time, d models.SessionDetail, loc *time.Location) (time.Time, time.Time, error) {
	y, m, day := termStart.Date()
	anchor := time.Date(y, m, day, 0, 0, 0, 0, loc)
	// Rewind to the Sunday opening the first week.
	anchor = anchor.AddDate(0, 0, -int(anchor.Weekday()))
	date := anchor.AddDate(0, 0, d.DayOfWeek)
	if date.Before(time.Date(y, m, day, 0, 0, 0, 0, loc)) {
		date = date.AddDate(0, 0, 7)
	}

	start, err := atClock(date, d.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := atClock(date, d.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atClock(date time.Time, clock string, loc *time.Location) (time.Time, error) {
	clock = strings.TrimSpace(clock)
	if len(clock) > 5 {
		clock = clock[:5]
	}
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q", clock)
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

func eventUID(d models.SessionDetail) string {
	id := d.ID
	if id == "" {
		id = d.ClassID + "-" + d.SlotID
	}
	return id + "@sma-timetable-api"
}
