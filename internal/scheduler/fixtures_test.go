package scheduler

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func class(id, instructor, cohort string, hours float64, lab bool) models.Class {
	return models.Class{
		ID:            id,
		CourseID:      "course-" + id,
		CourseCode:    "C" + id,
		InstructorID:  instructor,
		AcademicYear:  "2025/2026",
		Term:          "1",
		CohortID:      cohort,
		RequiredHours: hours,
		RequiresLab:   lab,
	}
}

func room(id string, kind models.RoomType) models.Room {
	return models.Room{ID: id, Name: "Room " + id, Capacity: 40, Type: kind}
}

func slot(id string, day int, start, end string) models.TimeSlot {
	hours, _ := DurationHours(start, end)
	return models.TimeSlot{ID: id, DayOfWeek: day, StartTime: start, EndTime: end, DurationHours: hours}
}

// weekGrid builds 1, 2 and 3 hour slots on every weekday.
func weekGrid() []models.TimeSlot {
	var slots []models.TimeSlot
	for day := 1; day <= 5; day++ {
		slots = append(slots,
			slot(fmt.Sprintf("d%d-0730", day), day, "07:30", "08:30"),
			slot(fmt.Sprintf("d%d-0830", day), day, "08:30", "10:30"),
			slot(fmt.Sprintf("d%d-1030", day), day, "10:30", "13:30"),
			slot(fmt.Sprintf("d%d-1400", day), day, "14:00", "15:00"),
			slot(fmt.Sprintf("d%d-1500", day), day, "15:00", "17:00"),
		)
	}
	return slots
}

func busyProblem() Problem {
	var classes []models.Class
	for i := 0; i < 40; i++ {
		hours := float64(i%3 + 1)
		classes = append(classes, class(
			fmt.Sprintf("k%02d", i),
			fmt.Sprintf("inst-%d", i%6),
			fmt.Sprintf("prog-%d", i%4),
			hours,
			i%5 == 0,
		))
	}
	rooms := []models.Room{
		room("r1", models.RoomTypeOrdinary),
		room("r2", models.RoomTypeOrdinary),
		room("lab1", models.RoomTypeLab),
	}
	availability := []models.InstructorAvailability{
		{InstructorID: "inst-0", DayOfWeek: 1, StartTime: "07:00", EndTime: "12:00", Preference: models.AvailabilityAvailable},
		{InstructorID: "inst-0", DayOfWeek: 3, StartTime: "07:00", EndTime: "18:00", Preference: models.AvailabilityPreferred},
		{InstructorID: "inst-0", DayOfWeek: 4, StartTime: "07:00", EndTime: "18:00", Preference: models.AvailabilityUnavailable},
	}
	return NewProblem("2025/2026", "1", classes, rooms, weekGrid(), availability)
}

// assertScheduleInvariants checks the hard constraints without going through
// the ledger or checker.
func assertScheduleInvariants(t *testing.T, p Problem, sessions []models.Session) {
	t.Helper()
	classes := map[string]models.Class{}
	for _, c := range p.Classes {
		classes[c.ID] = c
	}
	rooms := map[string]models.Room{}
	for _, r := range p.Rooms {
		rooms[r.ID] = r
	}
	slots := map[string]models.TimeSlot{}
	for _, s := range p.Slots {
		slots[s.ID] = s
	}

	roomSlot := map[string]bool{}
	instructorSlot := map[string]bool{}
	cohortSlot := map[string]bool{}
	for _, session := range sessions {
		c, ok := classes[session.ClassID]
		require.True(t, ok, "unknown class %s", session.ClassID)
		r, ok := rooms[session.RoomID]
		require.True(t, ok, "unknown room %s", session.RoomID)
		s, ok := slots[session.SlotID]
		require.True(t, ok, "unknown slot %s", session.SlotID)

		key := r.ID + "|" + s.ID
		assert.False(t, roomSlot[key], "room %s double booked in %s", r.ID, s.ID)
		roomSlot[key] = true

		key = c.InstructorID + "|" + s.ID
		assert.False(t, instructorSlot[key], "instructor %s double booked in %s", c.InstructorID, s.ID)
		instructorSlot[key] = true

		if c.CohortID != "" {
			key = c.CohortID + "|" + s.ID
			assert.False(t, cohortSlot[key], "cohort %s double booked in %s", c.CohortID, s.ID)
			cohortSlot[key] = true
		}

		assert.LessOrEqual(t, math.Abs(s.DurationHours-c.RequiredHours), DefaultDurationTolerance)
		if c.RequiresLab {
			assert.Equal(t, models.RoomTypeLab, r.Type)
		}
		assert.True(t, DefaultWindow.Contains(s))
		assert.Equal(t, p.AcademicYear, session.AcademicYear)
		assert.Equal(t, p.Term, session.Term)
	}
}
