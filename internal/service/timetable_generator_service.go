package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

// GenerationJobType tags queued timetable runs.
const GenerationJobType = "timetable.generate"

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type generationExecutor interface {
	Execute(ctx context.Context, run *models.GenerationRun) (*GenerationOutcome, error)
}

// GenerationJobPayload travels with a queued run.
type GenerationJobPayload struct {
	RequestID string
}

// TimetableGeneratorService accepts generation requests and runs them inline
// or through the background queue.
type TimetableGeneratorService struct {
	executor  generationExecutor
	runs      generationRunStore
	queue     jobDispatcher
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableGeneratorService constructs the service. queue may be nil, in
// which case async requests are rejected.
func NewTimetableGeneratorService(executor generationExecutor, runs generationRunStore, queue jobDispatcher, validate *validator.Validate, logger *zap.Logger) *TimetableGeneratorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableGeneratorService{
		executor:  executor,
		runs:      runs,
		queue:     queue,
		validator: validate,
		logger:    logger,
	}
}

// Generate regenerates the sessions of one academic year and term.
func (s *TimetableGeneratorService) Generate(ctx context.Context, req dto.GenerateTimetableRequest, actorID string) (*dto.GenerateTimetableResponse, error) {
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	req.Term = strings.TrimSpace(req.Term)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}

	run := &models.GenerationRun{
		AcademicYear: req.AcademicYear,
		Term:         req.Term,
		Status:       models.GenerationRunQueued,
	}
	if actorID != "" {
		run.CreatedBy = &actorID
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create generation run")
	}

	if req.Async {
		return s.enqueue(ctx, run)
	}

	outcome, err := s.executor.Execute(ctx, run)
	if err != nil {
		return nil, err
	}
	return &dto.GenerateTimetableResponse{
		RunID:         run.ID,
		Status:        run.Status,
		Strategy:      outcome.Result.Strategy,
		OracleFailure: string(outcome.Result.Oracle.Failure),
		Count:         outcome.Written,
		Sessions:      outcome.Result.Sessions,
		Unscheduled:   toUnscheduled(outcome.Result.Unscheduled),
	}, nil
}

func (s *TimetableGeneratorService) enqueue(ctx context.Context, run *models.GenerationRun) (*dto.GenerateTimetableResponse, error) {
	if s.queue == nil {
		s.markFailed(ctx, run, appErrors.ErrQueueUnavailable.Message)
		return nil, appErrors.ErrQueueUnavailable
	}
	job := jobs.Job{
		ID:      run.ID,
		Type:    GenerationJobType,
		Payload: GenerationJobPayload{RequestID: requestid.FromContext(ctx)},
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.markFailed(ctx, run, "failed to enqueue generation run")
		return nil, appErrors.Wrap(err, appErrors.ErrQueueUnavailable.Code, appErrors.ErrQueueUnavailable.Status, "failed to enqueue generation run")
	}
	return &dto.GenerateTimetableResponse{RunID: run.ID, Status: run.Status}, nil
}

func (s *TimetableGeneratorService) markFailed(ctx context.Context, run *models.GenerationRun, msg string) {
	run.Status = models.GenerationRunFailed
	run.ErrorMessage = &msg
	if err := s.runs.Finish(ctx, run); err != nil {
		s.logger.Sugar().Warnw("failed to mark generation run failed", "run_id", run.ID, "error", err)
	}
}

// GetRun returns one generation run.
func (s *TimetableGeneratorService) GetRun(ctx context.Context, id string) (*dto.GenerationRunResponse, error) {
	run, err := s.runs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "generation run not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation run")
	}
	resp := dto.NewGenerationRunResponse(*run)
	return &resp, nil
}

// ListRuns returns the most recent runs of a scope, newest first.
func (s *TimetableGeneratorService) ListRuns(ctx context.Context, query dto.TimetableScopeQuery) ([]dto.GenerationRunResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query")
	}
	runs, err := s.runs.ListByScope(ctx, query.AcademicYear, query.Term, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list generation runs")
	}
	out := make([]dto.GenerationRunResponse, 0, len(runs))
	for _, run := range runs {
		out = append(out, dto.NewGenerationRunResponse(run))
	}
	return out, nil
}

// RecoverInterrupted fails runs left QUEUED or RUNNING for longer than
// maxAge, which happens when the process stops with jobs in flight.
func (s *TimetableGeneratorService) RecoverInterrupted(ctx context.Context, maxAge time.Duration) (int64, error) {
	n, err := s.runs.FailStale(ctx, time.Now().UTC().Add(-maxAge), "generation interrupted before completion")
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to recover generation runs")
	}
	if n > 0 {
		s.logger.Sugar().Warnw("marked interrupted generation runs as failed", "count", n)
	}
	return n, nil
}

func toUnscheduled(classes []models.Class) []dto.UnscheduledClass {
	if len(classes) == 0 {
		return nil
	}
	out := make([]dto.UnscheduledClass, 0, len(classes))
	for _, c := range classes {
		out = append(out, dto.UnscheduledClass{ClassID: c.ID, CourseCode: c.CourseCode, InstructorID: c.InstructorID})
	}
	return out
}

// GenerationWorker runs queued generation jobs.
type GenerationWorker struct {
	runs     generationRunStore
	executor generationExecutor
	logger   *zap.Logger
}

// NewGenerationWorker constructs a worker.
func NewGenerationWorker(runs generationRunStore, executor generationExecutor, logger *zap.Logger) *GenerationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationWorker{runs: runs, executor: executor, logger: logger}
}

// abandon fails a queued run the worker could not load. Jobs are not
// retried, so leaving it QUEUED would strand it until the next restart.
func (w *GenerationWorker) abandon(ctx context.Context, runID string, cause error) {
	w.logger.Sugar().Errorw("failed to load queued generation run", "run_id", runID, "error", cause)
	msg := "failed to load generation run"
	finishedAt := time.Now().UTC()
	run := &models.GenerationRun{ID: runID, Status: models.GenerationRunFailed, ErrorMessage: &msg, FinishedAt: &finishedAt}
	if err := w.runs.Finish(context.WithoutCancel(ctx), run); err != nil {
		w.logger.Sugar().Warnw("failed to mark generation run failed", "run_id", runID, "error", err)
	}
}

// Handle processes a queue job. The executor records failures on the run
// itself, so errors are returned only for logging by the queue.
func (w *GenerationWorker) Handle(ctx context.Context, job jobs.Job) error {
	if payload, ok := job.Payload.(GenerationJobPayload); ok && payload.RequestID != "" {
		ctx = requestid.WithValue(ctx, payload.RequestID)
	}
	run, err := w.runs.FindByID(ctx, job.ID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			w.abandon(ctx, job.ID, err)
		}
		return err
	}
	if run.Status != models.GenerationRunQueued {
		w.logger.Sugar().Infow("skipping generation run that is no longer queued", "run_id", run.ID, "status", run.Status)
		return nil
	}
	_, err = w.executor.Execute(ctx, run)
	return err
}
