package models

import (
	"time"

	"github.com/lib/pq"
)

// GenerationStrategy names the algorithm that produced a run's sessions.
type GenerationStrategy string

const (
	GenerationStrategyOracle GenerationStrategy = "ORACLE"
	GenerationStrategyGreedy GenerationStrategy = "GREEDY"
)

// GenerationRunStatus tracks the lifecycle of a generation run.
type GenerationRunStatus string

const (
	GenerationRunQueued    GenerationRunStatus = "QUEUED"
	GenerationRunRunning   GenerationRunStatus = "RUNNING"
	GenerationRunCompleted GenerationRunStatus = "COMPLETED"
	GenerationRunFailed    GenerationRunStatus = "FAILED"
)

// GenerationRun records one timetable regeneration for an academic year and term.
type GenerationRun struct {
	ID                  string              `db:"id" json:"id"`
	AcademicYear        string              `db:"academic_year" json:"academic_year"`
	Term                string              `db:"term" json:"term"`
	Status              GenerationRunStatus `db:"status" json:"status"`
	Strategy            *GenerationStrategy `db:"strategy" json:"strategy,omitempty"`
	OracleFailure       *string             `db:"oracle_failure" json:"oracle_failure,omitempty"`
	Scheduled           int                 `db:"scheduled" json:"scheduled"`
	Unscheduled         int                 `db:"unscheduled" json:"unscheduled"`
	UnscheduledClassIDs pq.StringArray      `db:"unscheduled_class_ids" json:"unscheduled_class_ids"`
	ErrorMessage        *string             `db:"error_message" json:"error_message,omitempty"`
	CreatedBy           *string             `db:"created_by" json:"created_by,omitempty"`
	CreatedAt           time.Time           `db:"created_at" json:"created_at"`
	StartedAt           *time.Time          `db:"started_at" json:"started_at,omitempty"`
	FinishedAt          *time.Time          `db:"finished_at" json:"finished_at,omitempty"`
}
