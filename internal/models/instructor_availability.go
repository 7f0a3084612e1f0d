package models

// AvailabilityPreference marks an availability window as usable or blocked.
type AvailabilityPreference string

const (
	AvailabilityAvailable   AvailabilityPreference = "AVAILABLE"
	AvailabilityPreferred   AvailabilityPreference = "PREFERRED"
	AvailabilityUnavailable AvailabilityPreference = "UNAVAILABLE"
)

// InstructorAvailability is one declared teaching window for an instructor.
type InstructorAvailability struct {
	ID           string                 `db:"id" json:"id" csv:"id"`
	InstructorID string                 `db:"instructor_id" json:"instructor_id" csv:"instructor_id"`
	DayOfWeek    int                    `db:"day_of_week" json:"day_of_week" csv:"day_of_week"`
	StartTime    string                 `db:"start_time" json:"start_time" csv:"start_time"`
	EndTime      string                 `db:"end_time" json:"end_time" csv:"end_time"`
	Preference   AvailabilityPreference `db:"preference" json:"preference" csv:"preference"`
}
