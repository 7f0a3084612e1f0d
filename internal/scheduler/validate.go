package scheduler

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

const (
	violationUnknownClass Violation = "UNKNOWN_CLASS"
	violationUnknownRoom  Violation = "UNKNOWN_ROOM"
	violationUnknownSlot  Violation = "UNKNOWN_SLOT"
	violationDuplicate    Violation = "CLASS_SCHEDULED_TWICE"
)

// ValidationError describes the first session of a schedule that breaks a constraint.
type ValidationError struct {
	Index   int
	Session models.Session
	Reason  Violation
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("session %d (class %s, room %s, slot %s): %s",
		e.Index, e.Session.ClassID, e.Session.RoomID, e.Session.SlotID, e.Reason)
}

// ValidateSessions replays a schedule through a fresh ledger and rejects it on
// the first session that references unknown data or breaks a hard constraint.
func ValidateSessions(p Problem, sessions []models.Session, tolerance float64) error {
	classes := lo.KeyBy(p.Classes, func(c models.Class) string { return c.ID })
	rooms := lo.KeyBy(p.Rooms, func(r models.Room) string { return r.ID })
	slots := lo.KeyBy(p.Slots, func(s models.TimeSlot) string { return s.ID })

	checker := NewChecker(p.Availability, tolerance)
	ledger := NewLedger()
	seen := make(map[string]struct{}, len(sessions))

	for i, session := range sessions {
		fail := func(reason Violation) error {
			return &ValidationError{Index: i, Session: session, Reason: reason}
		}
		class, ok := classes[session.ClassID]
		if !ok {
			return fail(violationUnknownClass)
		}
		room, ok := rooms[session.RoomID]
		if !ok {
			return fail(violationUnknownRoom)
		}
		slot, ok := slots[session.SlotID]
		if !ok {
			return fail(violationUnknownSlot)
		}
		if _, dup := seen[class.ID]; dup {
			return fail(violationDuplicate)
		}
		if v := checker.Check(class, room, slot, ledger); v != NoViolation {
			return fail(v)
		}
		Commit(ledger, class, room.ID, slot.ID)
		seen[class.ID] = struct{}{}
	}
	return nil
}

// Unscheduled returns the classes that have no session, in input order.
func Unscheduled(classes []models.Class, sessions []models.Session) []models.Class {
	placed := lo.SliceToMap(sessions, func(s models.Session) (string, struct{}) {
		return s.ClassID, struct{}{}
	})
	return lo.Filter(classes, func(c models.Class, _ int) bool {
		_, ok := placed[c.ID]
		return !ok
	})
}
