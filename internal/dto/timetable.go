package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// GenerateTimetableRequest asks for the sessions of a term to be regenerated.
type GenerateTimetableRequest struct {
	AcademicYear string `json:"academicYear" validate:"required,max=20,excludesall=*?[]"`
	Term         string `json:"term" validate:"required,max=20,excludesall=*?[]"`
	// Async queues the run and returns immediately with its id.
	Async bool `json:"async"`
}

// TimetableScopeQuery selects an academic year and term on read endpoints.
type TimetableScopeQuery struct {
	AcademicYear string `form:"academicYear" validate:"required,max=20"`
	Term         string `form:"term" validate:"required,max=20"`
	Format       string `form:"format" validate:"omitempty,oneof=json csv xlsx ics"`
	// TermStart and Weeks anchor the ics export to calendar dates.
	TermStart string `form:"termStart" validate:"omitempty,datetime=2006-01-02"`
	Weeks     int    `form:"weeks" validate:"omitempty,min=1,max=52"`
}

// UnscheduledClass is a class the run could not place.
type UnscheduledClass struct {
	ClassID      string `json:"classId"`
	CourseCode   string `json:"courseCode"`
	InstructorID string `json:"instructorId"`
}

// GenerateTimetableResponse reports a finished or queued run.
type GenerateTimetableResponse struct {
	RunID         string                     `json:"runId"`
	Status        models.GenerationRunStatus `json:"status"`
	Strategy      models.GenerationStrategy  `json:"strategy,omitempty"`
	OracleFailure string                     `json:"oracleFailure,omitempty"`
	Count         int                        `json:"count"`
	Sessions      []models.Session           `json:"sessions,omitempty"`
	Unscheduled   []UnscheduledClass         `json:"unscheduled,omitempty"`
}

// GenerationRunResponse is the public view of a generation run.
type GenerationRunResponse struct {
	ID                  string                     `json:"id"`
	AcademicYear        string                     `json:"academicYear"`
	Term                string                     `json:"term"`
	Status              models.GenerationRunStatus `json:"status"`
	Strategy            *models.GenerationStrategy `json:"strategy,omitempty"`
	OracleFailure       *string                    `json:"oracleFailure,omitempty"`
	Scheduled           int                        `json:"scheduled"`
	Unscheduled         int                        `json:"unscheduled"`
	UnscheduledClassIDs []string                   `json:"unscheduledClassIds"`
	Error               *string                    `json:"error,omitempty"`
	CreatedBy           *string                    `json:"createdBy,omitempty"`
	CreatedAt           time.Time                  `json:"createdAt"`
	StartedAt           *time.Time                 `json:"startedAt,omitempty"`
	FinishedAt          *time.Time                 `json:"finishedAt,omitempty"`
}

// NewGenerationRunResponse maps a stored run.
func NewGenerationRunResponse(run models.GenerationRun) GenerationRunResponse {
	ids := []string(run.UnscheduledClassIDs)
	if ids == nil {
		ids = []string{}
	}
	return GenerationRunResponse{
		ID:                  run.ID,
		AcademicYear:        run.AcademicYear,
		Term:                run.Term,
		Status:              run.Status,
		Strategy:            run.Strategy,
		OracleFailure:       run.OracleFailure,
		Scheduled:           run.Scheduled,
		Unscheduled:         run.Unscheduled,
		UnscheduledClassIDs: ids,
		Error:               run.ErrorMessage,
		CreatedBy:           run.CreatedBy,
		CreatedAt:           run.CreatedAt,
		StartedAt:           run.StartedAt,
		FinishedAt:          run.FinishedAt,
	}
}
