package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Window is the daily operational window slots must fit in.
type Window struct {
	Open  string
	Close string
}

// DefaultWindow covers 07:30 to 18:00.
var DefaultWindow = Window{Open: "07:30", Close: "18:00"}

// ParseClock converts "HH:MM" (or "HH:MM:SS") to minutes after midnight.
func ParseClock(raw string) (int, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 24 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	seconds := 0
	if len(parts) == 3 {
		seconds, err = strconv.Atoi(parts[2])
		if err != nil || seconds < 0 || seconds > 59 {
			return 0, fmt.Errorf("invalid second in %q", raw)
		}
	}
	// 24:00 closes the day; nothing runs past it.
	if hours == 24 && (minutes != 0 || seconds != 0) {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	return hours*60 + minutes, nil
}

// DurationHours returns the length of the interval start-end in hours.
func DurationHours(start, end string) (float64, error) {
	from, err := ParseClock(start)
	if err != nil {
		return 0, err
	}
	to, err := ParseClock(end)
	if err != nil {
		return 0, err
	}
	if to <= from {
		return 0, fmt.Errorf("slot end %s is not after start %s", end, start)
	}
	return float64(to-from) / 60, nil
}

// Contains reports whether the slot lies on a weekday inside the window.
func (w Window) Contains(slot models.TimeSlot) bool {
	if slot.DayOfWeek < 1 || slot.DayOfWeek > 5 {
		return false
	}
	open, err := ParseClock(w.Open)
	if err != nil {
		return false
	}
	closing, err := ParseClock(w.Close)
	if err != nil {
		return false
	}
	start, err := ParseClock(slot.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseClock(slot.EndTime)
	if err != nil {
		return false
	}
	return start >= open && end <= closing && end > start
}

// EligibleSlots keeps Monday-Friday slots inside the window. Input providers
// call it before building a Problem; the allocator never filters slots itself.
func EligibleSlots(slots []models.TimeSlot, window Window) []models.TimeSlot {
	return lo.Filter(slots, func(slot models.TimeSlot, _ int) bool {
		return window.Contains(slot)
	})
}
