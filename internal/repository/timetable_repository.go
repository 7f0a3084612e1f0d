package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/scheduler"
)

// TimetableRepository reads generation inputs and writes generated sessions.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const classColumns = `c.id, c.course_id, co.code AS course_code, c.instructor_id, c.academic_year, c.term,
COALESCE(c.program_id || '-' || c.year_level::text, '') AS cohort_id,
co.credits::float8 AS required_hours, co.requires_lab`

// ListClasses returns the classes of an academic year and term in a stable order.
func (r *TimetableRepository) ListClasses(ctx context.Context, academicYear, term string) ([]models.Class, error) {
	query := `SELECT ` + classColumns + `
FROM classes c
JOIN courses co ON co.id = c.course_id
WHERE c.academic_year = $1 AND c.term = $2
ORDER BY c.created_at, c.id`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, academicYear, term); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListRooms returns every room.
func (r *TimetableRepository) ListRooms(ctx context.Context) ([]models.Room, error) {
	const query = `SELECT id, name, capacity, type, COALESCE(building_id, '') AS building_id FROM rooms ORDER BY name`
	var rooms []models.Room
	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// ListTimeSlots returns every time slot with HH:MM clock values.
func (r *TimetableRepository) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, day_of_week, to_char(start_time, 'HH24:MI') AS start_time, to_char(end_time, 'HH24:MI') AS end_time,
EXTRACT(EPOCH FROM (end_time - start_time)) / 3600.0 AS duration_hours
FROM time_slots ORDER BY day_of_week, start_time`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}

// ListEligibleTimeSlots returns the Monday-Friday slots that fit inside window.
func (r *TimetableRepository) ListEligibleTimeSlots(ctx context.Context, window scheduler.Window) ([]models.TimeSlot, error) {
	slots, err := r.ListTimeSlots(ctx)
	if err != nil {
		return nil, err
	}
	return scheduler.EligibleSlots(slots, window), nil
}

// ListAvailability returns the availability records of instructors teaching in the scope.
func (r *TimetableRepository) ListAvailability(ctx context.Context, academicYear, term string) ([]models.InstructorAvailability, error) {
	const query = `SELECT a.id, a.instructor_id, a.day_of_week, to_char(a.start_time, 'HH24:MI') AS start_time,
to_char(a.end_time, 'HH24:MI') AS end_time, a.preference
FROM instructor_availability a
WHERE a.instructor_id IN (SELECT DISTINCT instructor_id FROM classes WHERE academic_year = $1 AND term = $2)
ORDER BY a.instructor_id, a.day_of_week, a.start_time`
	var records []models.InstructorAvailability
	if err := r.db.SelectContext(ctx, &records, query, academicYear, term); err != nil {
		return nil, fmt.Errorf("list instructor availability: %w", err)
	}
	return records, nil
}

// ReplaceSessions swaps the stored sessions of a scope for the provided ones in
// a single transaction. On error the previous sessions are left untouched.
func (r *TimetableRepository) ReplaceSessions(ctx context.Context, academicYear, term string, sessions []models.Session, createdBy *string) (written int, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin session transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const deleteQuery = `DELETE FROM sessions WHERE academic_year = $1 AND term = $2`
	if _, err = tx.ExecContext(ctx, deleteQuery, academicYear, term); err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}

	if len(sessions) > 0 {
		now := time.Now().UTC()
		rows := make([]models.Session, len(sessions))
		for i, session := range sessions {
			if session.ID == "" {
				session.ID = uuid.NewString()
			}
			session.AcademicYear = academicYear
			session.Term = term
			session.CreatedBy = createdBy
			session.CreatedAt = now
			rows[i] = session
		}

		const insertQuery = `INSERT INTO sessions (id, class_id, room_id, slot_id, academic_year, term, created_by, created_at)
VALUES (:id, :class_id, :room_id, :slot_id, :academic_year, :term, :created_by, :created_at)`
		if _, err = sqlx.NamedExecContext(ctx, tx, insertQuery, rows); err != nil {
			return 0, fmt.Errorf("insert sessions: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit sessions: %w", err)
	}
	return len(sessions), nil
}

// ListSessions returns the sessions of a scope joined with class, room and slot detail.
func (r *TimetableRepository) ListSessions(ctx context.Context, academicYear, term string) ([]models.SessionDetail, error) {
	const query = `SELECT s.id, s.academic_year, s.term, s.class_id, co.code AS course_code, c.instructor_id,
COALESCE(c.program_id || '-' || c.year_level::text, '') AS cohort_id,
s.room_id, r.name AS room_name, r.type AS room_type,
s.slot_id, t.day_of_week, to_char(t.start_time, 'HH24:MI') AS start_time, to_char(t.end_time, 'HH24:MI') AS end_time
FROM sessions s
JOIN classes c ON c.id = s.class_id
JOIN courses co ON co.id = c.course_id
JOIN rooms r ON r.id = s.room_id
JOIN time_slots t ON t.id = s.slot_id
WHERE s.academic_year = $1 AND s.term = $2
ORDER BY t.day_of_week, t.start_time, r.name`
	var sessions []models.SessionDetail
	if err := r.db.SelectContext(ctx, &sessions, query, academicYear, term); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
