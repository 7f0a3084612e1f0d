package scheduler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type promptClass struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	Instructor string  `json:"instructor"`
	Cohort     string  `json:"cohort,omitempty"`
	Hours      float64 `json:"hours"`
	IsLab      bool    `json:"isLab"`
}

type promptRoom struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Type     string `json:"type"`
}

type promptSlot struct {
	ID    string  `json:"id"`
	Day   int     `json:"day"`
	Start string  `json:"start"`
	End   string  `json:"end"`
	Hours float64 `json:"hours"`
}

type promptWindow struct {
	Day   int    `json:"day"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type promptData struct {
	Classes      []promptClass             `json:"classes"`
	Rooms        []promptRoom              `json:"rooms"`
	Slots        []promptSlot              `json:"slots"`
	Availability map[string][]promptWindow `json:"instructorAvailability,omitempty"`
}

const promptHeader = `You are an expert university scheduler. Generate a valid, conflict-free weekly timetable.

CONSTRAINTS:
1. No instructor can teach two classes in the same slot.
2. No room can host two classes in the same slot.
3. Classes sharing a cohort cannot be placed in the same slot.
4. Lab classes (isLab: true) MUST be placed in LAB rooms.
5. A class's slot length in hours MUST equal its hours (1 credit = 1 hour).
6. An instructor listed under instructorAvailability may only teach inside one of their windows.
7. Use only the slot ids listed below; every class appears at most once.

OUTPUT:
Return ONLY a JSON array of objects with this structure:
[{"classId": "...", "roomId": "...", "slotId": "..."}]
No other text.

DATA:
`

// BuildPrompt serializes the problem identities and hard constraints for the oracle.
func BuildPrompt(p Problem) (string, error) {
	data := promptData{
		Classes: lo.Map(p.Classes, func(c models.Class, _ int) promptClass {
			return promptClass{ID: c.ID, Code: c.CourseCode, Instructor: c.InstructorID, Cohort: c.CohortID, Hours: c.RequiredHours, IsLab: c.RequiresLab}
		}),
		Rooms: lo.Map(p.Rooms, func(r models.Room, _ int) promptRoom {
			return promptRoom{ID: r.ID, Capacity: r.Capacity, Type: string(r.Type)}
		}),
		Slots: lo.Map(p.Slots, func(s models.TimeSlot, _ int) promptSlot {
			return promptSlot{ID: s.ID, Day: s.DayOfWeek, Start: s.StartTime, End: s.EndTime, Hours: s.DurationHours}
		}),
	}
	if len(p.Availability) > 0 {
		data.Availability = make(map[string][]promptWindow, len(p.Availability))
		for instructorID, windows := range p.Availability {
			usable := lo.FilterMap(windows, func(w models.InstructorAvailability, _ int) (promptWindow, bool) {
				return promptWindow{Day: w.DayOfWeek, Start: w.StartTime, End: w.EndTime}, w.Preference != models.AvailabilityUnavailable
			})
			data.Availability[instructorID] = usable
		}
	}

	payload, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode oracle prompt: %w", err)
	}
	var b strings.Builder
	b.WriteString(promptHeader)
	b.Write(payload)
	return b.String(), nil
}
