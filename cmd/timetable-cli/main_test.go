package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/pkg/config"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestRunWritesSessionsAndUnscheduled(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "classes.csv", "id,course_id,course_code,instructor_id,academic_year,term,cohort_id,required_hours,requires_lab\n"+
		"c1,m,MATH101,i1,2024,1,sci-1,2,false\n"+
		"c2,p,PHYS101,i2,2024,1,sci-1,2,true\n"+
		"c3,x,OTHER,i3,2023,2,,2,false\n")
	writeFixture(t, dir, "rooms.csv", "id,name,capacity,type,building_id\nr1,Room 1,30,ORDINARY,b1\n")
	writeFixture(t, dir, "time_slots.csv", "id,day_of_week,start_time,end_time\n"+
		"s1,1,08:00,10:00\n"+
		"s2,6,08:00,10:00\n")

	out := filepath.Join(dir, "sessions.csv")
	unscheduled := filepath.Join(dir, "unscheduled.csv")
	cfg := &config.Config{Scheduler: config.SchedulerConfig{DurationTolerance: 0.1}}
	err := run(cfg, options{inputDir: dir, academicYear: "2024", term: "1", seed: 1, out: out, unscheduledPath: unscheduled}, zap.NewNop())
	require.NoError(t, err)

	sessions, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(sessions)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "c1,r1,s1,2024,1")

	missing, err := os.ReadFile(unscheduled)
	require.NoError(t, err)
	assert.Contains(t, string(missing), "c2,PHYS101,i2")
}

func TestRunRequiresScope(t *testing.T) {
	err := run(&config.Config{}, options{inputDir: t.TempDir()}, zap.NewNop())
	assert.Error(t, err)
}

func TestRunFailsWithoutClassesForTerm(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "classes.csv", "id,course_id,course_code,instructor_id,academic_year,term,cohort_id,required_hours,requires_lab\nc1,m,MATH101,i1,2024,1,,2,false\n")
	writeFixture(t, dir, "rooms.csv", "id,name,capacity,type,building_id\nr1,Room 1,30,ORDINARY,b1\n")
	writeFixture(t, dir, "time_slots.csv", "id,day_of_week,start_time,end_time\ns1,1,08:00,10:00\n")

	err := run(&config.Config{}, options{inputDir: dir, academicYear: "2030", term: "1", out: filepath.Join(dir, "x.csv")}, zap.NewNop())
	assert.Error(t, err)
}
