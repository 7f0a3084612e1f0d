package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func sampleDetails() []models.SessionDetail {
	return []models.SessionDetail{
		{ID: "x2", ClassID: "c2", CourseCode: "CHEM1", InstructorID: "i2", RoomID: "r2", RoomName: "Lab A", RoomType: models.RoomTypeLab, SlotID: "s2", DayOfWeek: 2, StartTime: "09:30", EndTime: "11:30"},
		{ID: "x1", ClassID: "c1", CourseCode: "MATH1", InstructorID: "i1", RoomID: "r1", RoomName: "Room 101", RoomType: models.RoomTypeOrdinary, SlotID: "s1", DayOfWeek: 1, StartTime: "07:30", EndTime: "09:30"},
		{ID: "x3", ClassID: "c3", CourseCode: "BIO1", InstructorID: "i3", RoomID: "r1", RoomName: "Room 101", RoomType: models.RoomTypeOrdinary, SlotID: "s2", DayOfWeek: 2, StartTime: "09:30", EndTime: "11:30"},
	}
}

func TestRenderWorkbookGrid(t *testing.T) {
	payload, err := RenderWorkbook("2025/2026 term 1", sampleDetails())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{gridSheet, sessionsSheet}, f.GetSheetList())

	title, err := f.GetCellValue(gridSheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "2025/2026 term 1", title)

	want := map[string]string{
		"A2": "Day", "B2": "Time", "C2": "Room 101", "D2": "Lab A",
		"A3": "Monday", "B3": "07:30-09:30", "C3": "MATH1 (c1)", "D3": "",
		"A4": "Tuesday", "B4": "09:30-11:30", "C4": "BIO1 (c3)", "D4": "CHEM1 (c2)",
	}
	for cell, expected := range want {
		got, err := f.GetCellValue(gridSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, expected, got, cell)
	}
}

func TestRenderWorkbookSessionsSheetSorted(t *testing.T) {
	payload, err := RenderWorkbook("t", sampleDetails())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	for cell, expected := range map[string]string{"A1": "Day", "E2": "c1", "E3": "c3", "E4": "c2", "I4": "LAB", "H4": "Lab A"} {
		got, err := f.GetCellValue(sessionsSheet, cell)
		require.NoError(t, err)
		assert.Equal(t, expected, got, cell)
	}
}

func TestRenderWorkbookEmpty(t *testing.T) {
	payload, err := RenderWorkbook("empty", nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()

	first, err := f.GetCellValue(sessionsSheet, "A2")
	require.NoError(t, err)
	assert.Empty(t, first)
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Monday", DayName(1))
	assert.Equal(t, "Sunday", DayName(0))
	assert.Equal(t, "Day 9", DayName(9))
}
