package scheduler

import "github.com/noah-isme/sma-timetable-api/internal/models"

type resourceKind uint8

const (
	instructorResource resourceKind = iota + 1
	roomResource
	cohortResource
)

type resourceKey struct {
	kind   resourceKind
	id     string
	slotID string
}

// Ledger records which (resource, slot) pairs a run has already committed.
// It is not safe for concurrent use.
type Ledger struct {
	used map[resourceKey]struct{}
}

// NewLedger returns an empty ledger for a new run.
func NewLedger() *Ledger {
	return &Ledger{used: make(map[resourceKey]struct{})}
}

// ReserveInstructor marks the instructor busy during the slot.
func (l *Ledger) ReserveInstructor(instructorID, slotID string) {
	l.reserve(instructorResource, instructorID, slotID)
}

// ReserveRoom marks the room occupied during the slot.
func (l *Ledger) ReserveRoom(roomID, slotID string) {
	l.reserve(roomResource, roomID, slotID)
}

// ReserveCohort marks the class's cohort busy during the slot. Classes
// without a cohort reserve nothing.
func (l *Ledger) ReserveCohort(class models.Class, slotID string) {
	if !class.HasCohort() {
		return
	}
	l.reserve(cohortResource, class.CohortID, slotID)
}

// InstructorBusy reports whether the instructor is already teaching in the slot.
func (l *Ledger) InstructorBusy(instructorID, slotID string) bool {
	return l.has(instructorResource, instructorID, slotID)
}

// RoomBusy reports whether the room is already taken in the slot.
func (l *Ledger) RoomBusy(roomID, slotID string) bool {
	return l.has(roomResource, roomID, slotID)
}

// CohortBusy reports whether the class's cohort already attends a session in the slot.
func (l *Ledger) CohortBusy(class models.Class, slotID string) bool {
	if !class.HasCohort() {
		return false
	}
	return l.has(cohortResource, class.CohortID, slotID)
}

// Len returns the number of reserved pairs.
func (l *Ledger) Len() int {
	return len(l.used)
}

func (l *Ledger) reserve(kind resourceKind, id, slotID string) {
	l.used[resourceKey{kind: kind, id: id, slotID: slotID}] = struct{}{}
}

func (l *Ledger) has(kind resourceKind, id, slotID string) bool {
	_, ok := l.used[resourceKey{kind: kind, id: id, slotID: slotID}]
	return ok
}
