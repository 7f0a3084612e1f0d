package export

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// XLSXContentType is the MIME type of RenderWorkbook payloads.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	gridSheet     = "Timetable"
	sessionsSheet = "Sessions"
)

var sessionColumns = []string{"Day", "Start", "End", "Course", "Class", "Instructor", "Cohort", "Room", "Room type"}

type gridRow struct {
	day        int
	start, end string
}

// RenderWorkbook renders a term as an xlsx workbook. The first sheet is a
// grid with one row per weekly slot and one column per room; the second
// lists every session.
func RenderWorkbook(title string, details []models.SessionDetail) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	if err := f.SetSheetName("Sheet1", gridSheet); err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	if _, err := f.NewSheet(sessionsSheet); err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	cellStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}

	if err := writeGrid(f, title, details, headerStyle, cellStyle); err != nil {
		return nil, fmt.Errorf("render workbook grid: %w", err)
	}
	if err := writeSessionRows(f, details, headerStyle); err != nil {
		return nil, fmt.Errorf("render workbook sessions: %w", err)
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeGrid(f *excelize.File, title string, details []models.SessionDetail, headerStyle, cellStyle int) error {
	rooms := make([]string, 0)
	roomCol := map[string]int{}
	rowsSeen := map[gridRow]bool{}
	rows := make([]gridRow, 0)
	for _, d := range details {
		if _, ok := roomCol[d.RoomID]; !ok {
			roomCol[d.RoomID] = 0
			rooms = append(rooms, d.RoomID)
		}
		key := gridRow{day: d.DayOfWeek, start: d.StartTime, end: d.EndTime}
		if !rowsSeen[key] {
			rowsSeen[key] = true
			rows = append(rows, key)
		}
	}
	sort.Strings(rooms)
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].day != rows[j].day {
			return rows[i].day < rows[j].day
		}
		return rows[i].start < rows[j].start
	})

	roomNames := map[string]string{}
	for _, d := range details {
		roomNames[d.RoomID] = d.RoomName
	}

	lastCol, err := excelize.ColumnNumberToName(2 + len(rooms))
	if err != nil {
		return err
	}
	if err := f.SetCellValue(gridSheet, "A1", title); err != nil {
		return err
	}
	if err := f.MergeCell(gridSheet, "A1", lastCol+"1"); err != nil {
		return err
	}
	if err := f.SetCellStyle(gridSheet, "A1", lastCol+"1", headerStyle); err != nil {
		return err
	}

	header := []interface{}{"Day", "Time"}
	for i, id := range rooms {
		roomCol[id] = 3 + i
		label := id
		if name := roomNames[id]; name != "" {
			label = name
		}
		header = append(header, label)
	}
	if err := f.SetSheetRow(gridSheet, "A2", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(gridSheet, "A2", lastCol+"2", headerStyle); err != nil {
		return err
	}

	rowIndex := map[gridRow]int{}
	for i, r := range rows {
		rowIndex[r] = 3 + i
		values := []interface{}{DayName(r.day), r.start + "-" + r.end}
		if err := f.SetSheetRow(gridSheet, cellName(1, 3+i), &values); err != nil {
			return err
		}
	}

	contents := map[string][]string{}
	for _, d := range details {
		cell := cellName(roomCol[d.RoomID], rowIndex[gridRow{day: d.DayOfWeek, start: d.StartTime, end: d.EndTime}])
		contents[cell] = append(contents[cell], fmt.Sprintf("%s (%s)", d.CourseCode, d.ClassID))
	}
	for cell, lines := range contents {
		if err := f.SetCellValue(gridSheet, cell, strings.Join(lines, "\n")); err != nil {
			return err
		}
	}
	if len(rows) > 0 {
		if err := f.SetCellStyle(gridSheet, "C3", cellName(2+len(rooms), 2+len(rows)), cellStyle); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(gridSheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(gridSheet, "B", "B", 14); err != nil {
		return err
	}
	if len(rooms) > 0 {
		return f.SetColWidth(gridSheet, "C", lastCol, 22)
	}
	return nil
}

func writeSessionRows(f *excelize.File, details []models.SessionDetail, headerStyle int) error {
	header := make([]interface{}, 0, len(sessionColumns))
	for _, col := range sessionColumns {
		header = append(header, col)
	}
	if err := f.SetSheetRow(sessionsSheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetCellStyle(sessionsSheet, "A1", cellName(len(sessionColumns), 1), headerStyle); err != nil {
		return err
	}

	sorted := sortedDetails(details)
	for i, d := range sorted {
		values := []interface{}{
			DayName(d.DayOfWeek), d.StartTime, d.EndTime, d.CourseCode, d.ClassID,
			d.InstructorID, d.CohortID, d.RoomName, string(d.RoomType),
		}
		if err := f.SetSheetRow(sessionsSheet, cellName(1, 2+i), &values); err != nil {
			return err
		}
	}
	return f.SetColWidth(sessionsSheet, "A", cellColumn(len(sessionColumns)), 14)
}

// DayName maps a stored day of week (0 = Sunday) to its English name.
func DayName(day int) string {
	if day < 0 || day > 6 {
		return fmt.Sprintf("Day %d", day)
	}
	return time.Weekday(day).String()
}

func sortedDetails(details []models.SessionDetail) []models.SessionDetail {
	sorted := append([]models.SessionDetail(nil), details...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.RoomID < b.RoomID
	})
	return sorted
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func cellColumn(col int) string {
	name, _ := excelize.ColumnNumberToName(col)
	return name
}
