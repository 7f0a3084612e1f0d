package models

// TimeSlot is a fixed weekly interval. Times are "HH:MM" wall-clock strings.
type TimeSlot struct {
	ID            string  `db:"id" json:"id" csv:"id"`
	DayOfWeek     int     `db:"day_of_week" json:"day_of_week" csv:"day_of_week"`
	StartTime     string  `db:"start_time" json:"start_time" csv:"start_time"`
	EndTime       string  `db:"end_time" json:"end_time" csv:"end_time"`
	DurationHours float64 `db:"duration_hours" json:"duration_hours" csv:"-"`
}
