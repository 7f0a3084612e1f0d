package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type timetableGenerator interface {
	Generate(ctx context.Context, req dto.GenerateTimetableRequest, actorID string) (*dto.GenerateTimetableResponse, error)
	GetRun(ctx context.Context, id string) (*dto.GenerationRunResponse, error)
	ListRuns(ctx context.Context, query dto.TimetableScopeQuery) ([]dto.GenerationRunResponse, error)
}

type timetableReader interface {
	ListSessions(ctx context.Context, query dto.TimetableScopeQuery) ([]models.SessionDetail, error)
}

const defaultTermWeeks = 18

// TimetableHandler exposes timetable generation and read endpoints.
type TimetableHandler struct {
	generator timetableGenerator
	reader    timetableReader
	location  *time.Location
}

// NewTimetableHandler constructs the handler. Calendar exports place slot
// times in loc; nil means UTC.
func NewTimetableHandler(generator timetableGenerator, reader timetableReader, loc *time.Location) *TimetableHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &TimetableHandler{generator: generator, reader: reader, location: loc}
}

// Generate godoc
// @Summary Regenerate the timetable of an academic year and term
// @Description Replaces every session of the term. Async requests return 202 with the run id.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.GenerateTimetableRequest true "Generation scope"
// @Success 201 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /timetable/generate [post]
func (h *TimetableHandler) Generate(c *gin.Context) {
	var req dto.GenerateTimetableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	result, err := h.generator.Generate(c.Request.Context(), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Status == models.GenerationRunQueued {
		response.Accepted(c, result)
		return
	}
	var meta map[string]interface{}
	if n := len(result.Unscheduled); n > 0 {
		meta = map[string]interface{}{"warning": fmt.Sprintf("%d classes unscheduled", n)}
	}
	response.Created(c, result, meta)
}

// Sessions godoc
// @Summary List the sessions of an academic year and term
// @Tags Timetable
// @Produce json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Produce text/calendar
// @Param academicYear query string true "Academic year"
// @Param term query string true "Term"
// @Param format query string false "json (default), csv, xlsx or ics"
// @Param termStart query string false "First day of term (YYYY-MM-DD), required for ics"
// @Param weeks query int false "Teaching weeks for ics recurrence, default 18"
// @Success 200 {object} response.Envelope
// @Router /timetable/sessions [get]
func (h *TimetableHandler) Sessions(c *gin.Context) {
	query, ok := bindScope(c)
	if !ok {
		return
	}
	sessions, err := h.reader.ListSessions(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	switch query.Format {
	case "csv":
		payload, err := export.RenderSessionDetails(sessions)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv"))
			return
		}
		attachment(c, query, "csv", export.ContentType, payload)
		return
	case "xlsx":
		title := fmt.Sprintf("Timetable %s term %s", query.AcademicYear, query.Term)
		payload, err := export.RenderWorkbook(title, sessions)
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render workbook"))
			return
		}
		attachment(c, query, "xlsx", export.XLSXContentType, payload)
		return
	case "ics":
		termStart, err := time.Parse("2006-01-02", query.TermStart)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "termStart (YYYY-MM-DD) is required for ics"))
			return
		}
		weeks := query.Weeks
		if weeks == 0 {
			weeks = defaultTermWeeks
		}
		payload, err := export.RenderCalendar(sessions, export.CalendarOptions{
			Name:      fmt.Sprintf("Timetable %s term %s", query.AcademicYear, query.Term),
			TermStart: termStart,
			Weeks:     weeks,
			Location:  h.location,
		})
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render calendar"))
			return
		}
		attachment(c, query, "ics", export.ICalContentType, payload)
		return
	}
	response.JSON(c, http.StatusOK, sessions, map[string]interface{}{"count": len(sessions)})
}

// Runs godoc
// @Summary List recent generation runs of an academic year and term
// @Tags Timetable
// @Produce json
// @Param academicYear query string true "Academic year"
// @Param term query string true "Term"
// @Success 200 {object} response.Envelope
// @Router /timetable/runs [get]
func (h *TimetableHandler) Runs(c *gin.Context) {
	query, ok := bindScope(c)
	if !ok {
		return
	}
	runs, err := h.generator.ListRuns(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs)
}

// Run godoc
// @Summary Get one generation run
// @Tags Timetable
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /timetable/runs/{id} [get]
func (h *TimetableHandler) Run(c *gin.Context) {
	run, err := h.generator.GetRun(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, run)
}

func bindScope(c *gin.Context) (dto.TimetableScopeQuery, bool) {
	var query dto.TimetableScopeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return query, false
	}
	return query, true
}

func attachment(c *gin.Context, query dto.TimetableScopeQuery, ext, contentType string, payload []byte) {
	filename := fmt.Sprintf("timetable-%s-%s.%s", sanitizeFilename(query.AcademicYear), sanitizeFilename(query.Term), ext)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

func sanitizeFilename(raw string) string {
	out := []rune(raw)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
