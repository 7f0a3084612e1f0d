// Package export renders generated timetables as CSV, xlsx and iCalendar.
package export

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// UnscheduledRow is one class the generator could not place.
type UnscheduledRow struct {
	ClassID       string  `csv:"class_id"`
	CourseCode    string  `csv:"course_code"`
	InstructorID  string  `csv:"instructor_id"`
	CohortID      string  `csv:"cohort_id"`
	RequiredHours float64 `csv:"required_hours"`
	RequiresLab   bool    `csv:"requires_lab"`
}

// ContentType is the MIME type of every payload this package renders.
const ContentType = "text/csv; charset=utf-8"

// WriteSessions writes raw session rows with a header line.
func WriteSessions(w io.Writer, sessions []models.Session) error {
	if sessions == nil {
		sessions = []models.Session{}
	}
	if err := gocsv.Marshal(&sessions, w); err != nil {
		return fmt.Errorf("write sessions csv: %w", err)
	}
	return nil
}

// RenderSessionDetails renders the joined read view of a term's sessions.
func RenderSessionDetails(details []models.SessionDetail) ([]byte, error) {
	if details == nil {
		details = []models.SessionDetail{}
	}
	buf := &bytes.Buffer{}
	if err := gocsv.Marshal(&details, buf); err != nil {
		return nil, fmt.Errorf("render session csv: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteUnscheduled writes the classes left without a session.
func WriteUnscheduled(w io.Writer, classes []models.Class) error {
	rows := make([]UnscheduledRow, 0, len(classes))
	for _, c := range classes {
		rows = append(rows, UnscheduledRow{
			ClassID:       c.ID,
			CourseCode:    c.CourseCode,
			InstructorID:  c.InstructorID,
			CohortID:      c.CohortID,
			RequiredHours: c.RequiredHours,
			RequiresLab:   c.RequiresLab,
		})
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write unscheduled csv: %w", err)
	}
	return nil
}
