package models

// Class is one offering of a course taught by one instructor to one cohort in a term.
type Class struct {
	ID           string `db:"id" json:"id" csv:"id"`
	CourseID     string `db:"course_id" json:"course_id" csv:"course_id"`
	CourseCode   string `db:"course_code" json:"course_code" csv:"course_code"`
	InstructorID string `db:"instructor_id" json:"instructor_id" csv:"instructor_id"`
	AcademicYear string `db:"academic_year" json:"academic_year" csv:"academic_year"`
	Term         string `db:"term" json:"term" csv:"term"`
	// CohortID is "<program>-<yearLevel>", empty when the class has no cohort.
	CohortID      string  `db:"cohort_id" json:"cohort_id,omitempty" csv:"cohort_id"`
	RequiredHours float64 `db:"required_hours" json:"required_hours" csv:"required_hours"`
	RequiresLab   bool    `db:"requires_lab" json:"requires_lab" csv:"requires_lab"`
}

// HasCohort reports whether the class belongs to a cohort.
func (c Class) HasCohort() bool {
	return c.CohortID != ""
}
