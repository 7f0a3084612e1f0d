// Package scheduler assigns classes to rooms and weekly time slots without
// double-booking an instructor, a room or a cohort.
//
// A run is single-threaded: the Ledger that backs it is owned by exactly one
// call and must never be shared between runs.
package scheduler

import (
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// DefaultDurationTolerance is the accepted gap, in hours, between a slot's
// length and the hours a class requires.
const DefaultDurationTolerance = 0.1

// ErrMissingInput is returned when a problem has no classes, rooms or slots.
var ErrMissingInput = errors.New("missing data to generate schedule")

// Problem is the input of a single generation run for one academic year and term.
type Problem struct {
	AcademicYear string
	Term         string
	Classes      []models.Class
	Rooms        []models.Room
	// Slots must already be filtered to eligible weekdays and the operational window.
	Slots []models.TimeSlot
	// Availability is keyed by instructor id. Instructors without an entry are
	// available for every slot.
	Availability map[string][]models.InstructorAvailability
}

// NewProblem groups availability records by instructor and fills in slot
// durations that were not computed by the input provider.
func NewProblem(academicYear, term string, classes []models.Class, rooms []models.Room, slots []models.TimeSlot, availability []models.InstructorAvailability) Problem {
	return Problem{
		AcademicYear: academicYear,
		Term:         term,
		Classes:      classes,
		Rooms:        rooms,
		Slots:        withDurations(slots),
		Availability: lo.GroupBy(availability, func(a models.InstructorAvailability) string {
			return a.InstructorID
		}),
	}
}

// Validate reports a precondition failure when any input list is empty.
func (p Problem) Validate() error {
	switch {
	case len(p.Classes) == 0:
		return fmt.Errorf("%w: no classes for %s %s", ErrMissingInput, p.AcademicYear, p.Term)
	case len(p.Rooms) == 0:
		return fmt.Errorf("%w: no rooms", ErrMissingInput)
	case len(p.Slots) == 0:
		return fmt.Errorf("%w: no eligible time slots", ErrMissingInput)
	}
	return nil
}

// Session builds the output record for a class placed in a room and slot.
func (p Problem) Session(classID, roomID, slotID string) models.Session {
	return models.Session{
		ClassID:      classID,
		RoomID:       roomID,
		SlotID:       slotID,
		AcademicYear: p.AcademicYear,
		Term:         p.Term,
	}
}

func withDurations(slots []models.TimeSlot) []models.TimeSlot {
	out := make([]models.TimeSlot, len(slots))
	for i, slot := range slots {
		if slot.DurationHours <= 0 {
			if hours, err := DurationHours(slot.StartTime, slot.EndTime); err == nil {
				slot.DurationHours = hours
			}
		}
		out[i] = slot
	}
	return out
}
