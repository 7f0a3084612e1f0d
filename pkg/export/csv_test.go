package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestWriteSessions(t *testing.T) {
	var buf bytes.Buffer
	err := WriteSessions(&buf, []models.Session{{ClassID: "c1", RoomID: "r1", SlotID: "s1", AcademicYear: "2025/2026", Term: "1"}})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "class_id,room_id,slot_id,academic_year,term", lines[0])
	assert.Equal(t, "c1,r1,s1,2025/2026,1", lines[1])
}

func TestRenderSessionDetailsHeaderOnlyWhenEmpty(t *testing.T) {
	payload, err := RenderSessionDetails(nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(payload), "id,academic_year,term,class_id,course_code"))
}

func TestWriteUnscheduled(t *testing.T) {
	var buf bytes.Buffer
	err := WriteUnscheduled(&buf, []models.Class{{ID: "c9", CourseCode: "CHEM1", InstructorID: "i1", RequiredHours: 3, RequiresLab: true}})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "c9,CHEM1,i1,,3,true")
}
