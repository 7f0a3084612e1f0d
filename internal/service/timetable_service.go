package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type sessionReader interface {
	ListSessions(ctx context.Context, academicYear, term string) ([]models.SessionDetail, error)
}

// TimetableService serves the generated timetable of a scope.
type TimetableService struct {
	repo      sessionReader
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	ttl       time.Duration
}

// NewTimetableService constructs the read service.
func NewTimetableService(repo sessionReader, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, ttl time.Duration) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimetableService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, ttl: ttl}
}

// ListSessions returns the sessions of an academic year and term ordered by
// day, start time and room.
func (s *TimetableService) ListSessions(ctx context.Context, query dto.TimetableScopeQuery) ([]models.SessionDetail, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query")
	}
	key := SessionsCacheKey(query.AcademicYear, query.Term)
	var cached []models.SessionDetail
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return cached, nil
	}

	start := time.Now()
	sessions, err := s.repo.ListSessions(ctx, query.AcademicYear, query.Term)
	s.metrics.ObserveDBQuery("timetable_sessions", time.Since(start))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load sessions")
	}
	if sessions == nil {
		sessions = []models.SessionDetail{}
	}
	_ = s.cache.Set(ctx, key, sessions, s.ttl)
	return sessions, nil
}
