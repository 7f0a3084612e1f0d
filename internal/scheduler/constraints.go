package scheduler

import (
	"math"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// Violation names the first hard constraint a candidate placement breaks.
type Violation string

const (
	NoViolation          Violation = ""
	ViolationDuration    Violation = "DURATION_MISMATCH"
	ViolationUnavailable Violation = "INSTRUCTOR_UNAVAILABLE"
	ViolationInstructor  Violation = "INSTRUCTOR_DOUBLE_BOOKED"
	ViolationCohort      Violation = "COHORT_DOUBLE_BOOKED"
	ViolationRoomType    Violation = "LAB_REQUIRED"
	ViolationRoom        Violation = "ROOM_DOUBLE_BOOKED"
)

// Checker evaluates hard constraints for a candidate (class, room, slot).
// It never mutates the ledger it is given.
type Checker struct {
	tolerance    float64
	availability map[string][]models.InstructorAvailability
}

// NewChecker builds a checker over the instructor availability of a problem.
func NewChecker(availability map[string][]models.InstructorAvailability, tolerance float64) *Checker {
	if tolerance <= 0 {
		tolerance = DefaultDurationTolerance
	}
	return &Checker{tolerance: tolerance, availability: availability}
}

// IsFeasible reports whether placing class in room at slot breaks no hard constraint.
func (c *Checker) IsFeasible(class models.Class, room models.Room, slot models.TimeSlot, ledger *Ledger) bool {
	return c.Check(class, room, slot, ledger) == NoViolation
}

// Check runs the constraints in order and returns the first one that fails.
func (c *Checker) Check(class models.Class, room models.Room, slot models.TimeSlot, ledger *Ledger) Violation {
	if v := c.checkSlot(class, slot, ledger); v != NoViolation {
		return v
	}
	if class.RequiresLab && room.Type != models.RoomTypeLab {
		return ViolationRoomType
	}
	if ledger.RoomBusy(room.ID, slot.ID) {
		return ViolationRoom
	}
	return NoViolation
}

// DurationMatches compares the slot length with the class hours (1 credit = 1 hour).
func (c *Checker) DurationMatches(class models.Class, slot models.TimeSlot) bool {
	return math.Abs(slot.DurationHours-class.RequiredHours) <= c.tolerance
}

// InstructorAvailable reports whether the instructor declared the slot usable.
// Instructors without any availability records are always available.
func (c *Checker) InstructorAvailable(class models.Class, slot models.TimeSlot) bool {
	windows := c.availability[class.InstructorID]
	if len(windows) == 0 {
		return true
	}
	start, err := ParseClock(slot.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseClock(slot.EndTime)
	if err != nil {
		return false
	}
	for _, window := range windows {
		if window.DayOfWeek != slot.DayOfWeek || window.Preference == models.AvailabilityUnavailable {
			continue
		}
		from, err := ParseClock(window.StartTime)
		if err != nil {
			continue
		}
		to, err := ParseClock(window.EndTime)
		if err != nil {
			continue
		}
		if from <= start && to >= end {
			return true
		}
	}
	return false
}

// SlotOpen runs the room-independent checks: duration, availability,
// instructor and cohort conflicts.
func (c *Checker) SlotOpen(class models.Class, slot models.TimeSlot, ledger *Ledger) bool {
	return c.checkSlot(class, slot, ledger) == NoViolation
}

func (c *Checker) checkSlot(class models.Class, slot models.TimeSlot, ledger *Ledger) Violation {
	if !c.DurationMatches(class, slot) {
		return ViolationDuration
	}
	if !c.InstructorAvailable(class, slot) {
		return ViolationUnavailable
	}
	if ledger.InstructorBusy(class.InstructorID, slot.ID) {
		return ViolationInstructor
	}
	if ledger.CohortBusy(class, slot.ID) {
		return ViolationCohort
	}
	return NoViolation
}

// Commit reserves every resource the placement consumes.
func Commit(ledger *Ledger, class models.Class, roomID, slotID string) {
	ledger.ReserveInstructor(class.InstructorID, slotID)
	ledger.ReserveRoom(roomID, slotID)
	ledger.ReserveCohort(class, slotID)
}
