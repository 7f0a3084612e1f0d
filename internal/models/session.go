package models

import "time"

// Session assigns one class to a room and a time slot for an academic year and term.
type Session struct {
	ID           string    `db:"id" json:"id" csv:"-"`
	ClassID      string    `db:"class_id" json:"class_id" csv:"class_id"`
	RoomID       string    `db:"room_id" json:"room_id" csv:"room_id"`
	SlotID       string    `db:"slot_id" json:"slot_id" csv:"slot_id"`
	AcademicYear string    `db:"academic_year" json:"academic_year" csv:"academic_year"`
	Term         string    `db:"term" json:"term" csv:"term"`
	CreatedBy    *string   `db:"created_by" json:"created_by,omitempty" csv:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at" csv:"-"`
}

// SessionDetail is a session joined with its class, room and slot for read views.
type SessionDetail struct {
	ID           string   `db:"id" json:"id" csv:"id"`
	AcademicYear string   `db:"academic_year" json:"academic_year" csv:"academic_year"`
	Term         string   `db:"term" json:"term" csv:"term"`
	ClassID      string   `db:"class_id" json:"class_id" csv:"class_id"`
	CourseCode   string   `db:"course_code" json:"course_code" csv:"course_code"`
	InstructorID string   `db:"instructor_id" json:"instructor_id" csv:"instructor_id"`
	CohortID     string   `db:"cohort_id" json:"cohort_id,omitempty" csv:"cohort_id"`
	RoomID       string   `db:"room_id" json:"room_id" csv:"room_id"`
	RoomName     string   `db:"room_name" json:"room_name" csv:"room_name"`
	RoomType     RoomType `db:"room_type" json:"room_type" csv:"room_type"`
	SlotID       string   `db:"slot_id" json:"slot_id" csv:"slot_id"`
	DayOfWeek    int      `db:"day_of_week" json:"day_of_week" csv:"day_of_week"`
	StartTime    string   `db:"start_time" json:"start_time" csv:"start_time"`
	EndTime      string   `db:"end_time" json:"end_time" csv:"end_time"`
}
