package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
)

type timetableInputProvider interface {
	ListClasses(ctx context.Context, academicYear, term string) ([]models.Class, error)
	ListRooms(ctx context.Context) ([]models.Room, error)
	ListEligibleTimeSlots(ctx context.Context, window scheduler.Window) ([]models.TimeSlot, error)
	ListAvailability(ctx context.Context, academicYear, term string) ([]models.InstructorAvailability, error)
}

type scheduleWriter interface {
	ReplaceSessions(ctx context.Context, academicYear, term string, sessions []models.Session, createdBy *string) (int, error)
}

type generationRunStore interface {
	Create(ctx context.Context, run *models.GenerationRun) error
	MarkRunning(ctx context.Context, id string, startedAt time.Time) error
	Finish(ctx context.Context, run *models.GenerationRun) error
	FindByID(ctx context.Context, id string) (*models.GenerationRun, error)
	ListByScope(ctx context.Context, academicYear, term string, limit int) ([]models.GenerationRun, error)
	FailStale(ctx context.Context, cutoff time.Time, message string) (int64, error)
}

type timetableEngine interface {
	Run(ctx context.Context, p scheduler.Problem) (scheduler.Result, error)
}

// GenerationOutcome is what a completed run produced.
type GenerationOutcome struct {
	Result  scheduler.Result
	Written int
}

// TimetableGeneratorConfig tunes input loading.
type TimetableGeneratorConfig struct {
	Window scheduler.Window
}

// TimetableGenerator executes one generation run end to end: scope lock,
// input loading, engine, session replacement and run bookkeeping.
type TimetableGenerator struct {
	inputs  timetableInputProvider
	writer  scheduleWriter
	runs    generationRunStore
	engine  timetableEngine
	locker  ScopeLocker
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	window  scheduler.Window
}

// NewTimetableGenerator wires the generator.
func NewTimetableGenerator(
	inputs timetableInputProvider,
	writer scheduleWriter,
	runs generationRunStore,
	engine timetableEngine,
	locker ScopeLocker,
	cache *CacheService,
	metrics *MetricsService,
	logger *zap.Logger,
	cfg TimetableGeneratorConfig,
) *TimetableGenerator {
	if locker == nil {
		locker = NewMemoryScopeLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Window.Open == "" || cfg.Window.Close == "" {
		cfg.Window = scheduler.DefaultWindow
	}
	return &TimetableGenerator{
		inputs:  inputs,
		writer:  writer,
		runs:    runs,
		engine:  engine,
		locker:  locker,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
		window:  cfg.Window,
	}
}

// Execute runs generation for run's scope. The run record is always left in a
// terminal state; the returned error is an *appErrors.Error.
func (g *TimetableGenerator) Execute(ctx context.Context, run *models.GenerationRun) (*GenerationOutcome, error) {
	started := time.Now()
	log := logger.WithRequest(ctx, g.logger).With(
		zap.String("run_id", run.ID),
		zap.String("academic_year", run.AcademicYear),
		zap.String("term", run.Term),
	)
	bookkeeping := context.WithoutCancel(ctx)

	release, ok, err := g.locker.TryAcquire(ctx, ScopeKey(run.AcademicYear, run.Term))
	if err != nil {
		return nil, g.fail(bookkeeping, log, run, started, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire generation lock"))
	}
	if !ok {
		return nil, g.fail(bookkeeping, log, run, started, "", appErrors.ErrGenerationBusy)
	}
	defer release()

	if err := g.runs.MarkRunning(bookkeeping, run.ID, time.Now().UTC()); err != nil {
		log.Warn("failed to mark generation run running", zap.Error(err))
	}
	run.Status = models.GenerationRunRunning

	problem, err := g.loadProblem(ctx, run.AcademicYear, run.Term)
	if err != nil {
		return nil, g.fail(bookkeeping, log, run, started, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load generation inputs"))
	}

	result, err := g.engine.Run(ctx, problem)
	if err != nil {
		if errors.Is(err, scheduler.ErrMissingInput) {
			return nil, g.fail(bookkeeping, log, run, started, "", appErrors.Clone(appErrors.ErrPreconditionFailed, err.Error()))
		}
		return nil, g.fail(bookkeeping, log, run, started, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "timetable generation failed"))
	}

	strategy := result.Strategy
	run.Strategy = &strategy
	if reason := result.Oracle.Failure; reason != "" {
		failure := string(reason)
		run.OracleFailure = &failure
		if reason != scheduler.OracleDisabled {
			g.metrics.RecordOracleFailure(failure)
			log.Warn("oracle schedule discarded, using greedy allocator", zap.String("reason", failure), zap.Error(result.Oracle.Err))
		}
	}
	for _, class := range result.Unscheduled {
		log.Warn("class left unscheduled",
			zap.String("class_id", class.ID),
			zap.String("course_id", class.CourseID),
			zap.String("instructor_id", class.InstructorID),
		)
	}

	written, err := g.writer.ReplaceSessions(ctx, run.AcademicYear, run.Term, result.Sessions, run.CreatedBy)
	if err != nil {
		return nil, g.fail(bookkeeping, log, run, started, string(strategy), appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist sessions"))
	}
	_ = g.cache.Invalidate(bookkeeping, SessionsCacheKey(run.AcademicYear, run.Term))

	finished := time.Now().UTC()
	run.Status = models.GenerationRunCompleted
	run.Scheduled = written
	run.Unscheduled = len(result.Unscheduled)
	run.UnscheduledClassIDs = classIDs(result.Unscheduled)
	run.FinishedAt = &finished
	if err := g.runs.Finish(bookkeeping, run); err != nil {
		log.Warn("failed to record generation run", zap.Error(err))
	}

	duration := time.Since(started)
	g.metrics.RecordGeneration(string(strategy), string(models.GenerationRunCompleted), written, run.Unscheduled, duration)
	log.Info("timetable generated",
		zap.String("strategy", string(strategy)),
		zap.Int("sessions", written),
		zap.Int("unscheduled", run.Unscheduled),
		zap.Duration("duration", duration),
	)
	return &GenerationOutcome{Result: result, Written: written}, nil
}

func (g *TimetableGenerator) loadProblem(ctx context.Context, academicYear, term string) (scheduler.Problem, error) {
	classes, err := g.inputs.ListClasses(ctx, academicYear, term)
	if err != nil {
		return scheduler.Problem{}, err
	}
	rooms, err := g.inputs.ListRooms(ctx)
	if err != nil {
		return scheduler.Problem{}, err
	}
	slots, err := g.inputs.ListEligibleTimeSlots(ctx, g.window)
	if err != nil {
		return scheduler.Problem{}, err
	}
	availability, err := g.inputs.ListAvailability(ctx, academicYear, term)
	if err != nil {
		return scheduler.Problem{}, err
	}
	return scheduler.NewProblem(academicYear, term, classes, rooms, slots, availability), nil
}

func (g *TimetableGenerator) fail(ctx context.Context, log *zap.Logger, run *models.GenerationRun, started time.Time, strategy string, appErr *appErrors.Error) error {
	finished := time.Now().UTC()
	msg := appErr.Error()
	run.Status = models.GenerationRunFailed
	run.ErrorMessage = &msg
	run.FinishedAt = &finished
	if err := g.runs.Finish(ctx, run); err != nil {
		log.Warn("failed to record generation run failure", zap.Error(err))
	}
	g.metrics.RecordGeneration(strategy, string(models.GenerationRunFailed), 0, 0, time.Since(started))
	log.Error("timetable generation failed", zap.String("code", appErr.Code), zap.Error(appErr))
	return appErr
}

func classIDs(classes []models.Class) []string {
	ids := make([]string, 0, len(classes))
	for _, c := range classes {
		ids = append(ids, c.ID)
	}
	return ids
}
