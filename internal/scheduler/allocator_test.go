package scheduler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestAllocatorPlacesSingleClass(t *testing.T) {
	p := NewProblem("2025/2026", "1",
		[]models.Class{class("c1", "inst-1", "", 2, false)},
		[]models.Room{room("r1", models.RoomTypeOrdinary)},
		[]models.TimeSlot{slot("s1", 1, "08:00", "10:00")},
		nil,
	)

	result, err := NewAllocator(42, DefaultDurationTolerance).Allocate(p)
	require.NoError(t, err)

	require.Len(t, result.Sessions, 1)
	assert.Equal(t, "c1", result.Sessions[0].ClassID)
	assert.Equal(t, "r1", result.Sessions[0].RoomID)
	assert.Equal(t, "s1", result.Sessions[0].SlotID)
	assert.Equal(t, "2025/2026", result.Sessions[0].AcademicYear)
	assert.Equal(t, models.GenerationStrategyGreedy, result.Strategy)
	assert.Empty(t, result.Unscheduled)
}

func TestAllocatorLeavesLabClassWithoutMatchingSlotUnscheduled(t *testing.T) {
	p := NewProblem("2025/2026", "1",
		[]models.Class{class("c1", "inst-1", "", 3, true)},
		[]models.Room{room("r1", models.RoomTypeOrdinary), room("lab", models.RoomTypeLab)},
		[]models.TimeSlot{slot("s1", 2, "09:00", "11:00")},
		nil,
	)

	result, err := NewAllocator(7, DefaultDurationTolerance).Allocate(p)
	require.NoError(t, err)

	assert.Empty(t, result.Sessions)
	require.Len(t, result.Unscheduled, 1)
	assert.Equal(t, "c1", result.Unscheduled[0].ID)
}

func TestAllocatorRespectsInstructorAndCohortConflicts(t *testing.T) {
	for _, seed := range []int64{1, 99} {
		p := NewProblem("2025/2026", "1",
			[]models.Class{
				class("c1", "inst-1", "prog-1", 1, false),
				class("c2", "inst-1", "prog-1", 1, false),
			},
			[]models.Room{room("r1", models.RoomTypeOrdinary), room("r2", models.RoomTypeOrdinary)},
			[]models.TimeSlot{slot("s1", 3, "10:00", "11:00")},
			nil,
		)

		result, err := NewAllocator(seed, DefaultDurationTolerance).Allocate(p)
		require.NoError(t, err)

		require.Len(t, result.Sessions, 1)
		assert.Equal(t, "c1", result.Sessions[0].ClassID, "classes are placed in input order")
		require.Len(t, result.Unscheduled, 1)
		assert.Equal(t, "c2", result.Unscheduled[0].ID)
	}
}

func TestAllocatorKeepsInvariantsAcrossSeeds(t *testing.T) {
	p := busyProblem()
	for _, seed := range []int64{3, 2024} {
		result, err := NewAllocator(seed, DefaultDurationTolerance).Allocate(p)
		require.NoError(t, err)

		assertScheduleInvariants(t, p, result.Sessions)
		assert.NoError(t, ValidateSessions(p, result.Sessions, DefaultDurationTolerance))
		assert.Equal(t, len(p.Classes), len(result.Sessions)+len(result.Unscheduled))

		seen := map[string]bool{}
		for _, s := range result.Sessions {
			assert.False(t, seen[s.ClassID], "class %s scheduled twice", s.ClassID)
			seen[s.ClassID] = true
		}
		for _, c := range result.Unscheduled {
			assert.False(t, seen[c.ID], "class %s both scheduled and unscheduled", c.ID)
		}
	}
}

func TestAllocatorNeverUsesUnavailableDay(t *testing.T) {
	p := busyProblem()
	slots := map[string]models.TimeSlot{}
	for _, s := range p.Slots {
		slots[s.ID] = s
	}
	classes := map[string]models.Class{}
	for _, c := range p.Classes {
		classes[c.ID] = c
	}

	result, err := NewAllocator(11, DefaultDurationTolerance).Allocate(p)
	require.NoError(t, err)

	for _, s := range result.Sessions {
		if classes[s.ClassID].InstructorID != "inst-0" {
			continue
		}
		day := slots[s.SlotID].DayOfWeek
		assert.Contains(t, []int{1, 3}, day)
		if day == 1 {
			assert.LessOrEqual(t, slots[s.SlotID].EndTime, "12:00")
		}
	}
}

func TestAllocatorSameSeedSameSchedule(t *testing.T) {
	p := busyProblem()
	first, err := NewAllocator(5, DefaultDurationTolerance).Allocate(p)
	require.NoError(t, err)
	second, err := NewAllocator(5, DefaultDurationTolerance).Allocate(p)
	require.NoError(t, err)

	assert.Equal(t, first.Sessions, second.Sessions)
}

func TestAllocatorRejectsMissingInput(t *testing.T) {
	full := busyProblem()
	tests := []struct {
		name string
		p    Problem
	}{
		{name: "no classes", p: Problem{Rooms: full.Rooms, Slots: full.Slots}},
		{name: "no rooms", p: Problem{Classes: full.Classes, Slots: full.Slots}},
		{name: "no slots", p: Problem{Classes: full.Classes, Rooms: full.Rooms}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewAllocator(1, DefaultDurationTolerance).Allocate(tc.p)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingInput))
		})
	}
}

func TestShufflePermutesCopy(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8}
	allocator := NewAllocator(9, DefaultDurationTolerance)

	out := Shuffle(allocator.rng, items)

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, items, "input must not be reordered")
	assert.ElementsMatch(t, items, out)
}

func TestShuffleReachesEveryPosition(t *testing.T) {
	allocator := NewAllocator(13, DefaultDurationTolerance)
	counts := map[int]int{}
	for i := 0; i < 3000; i++ {
		out := Shuffle(allocator.rng, []int{0, 1, 2})
		counts[out[0]]++
	}
	for v := 0; v < 3; v++ {
		assert.InDelta(t, 1000, counts[v], 150, "value %d led %d times", v, counts[v])
	}
}
