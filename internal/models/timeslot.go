package models

import "time"

// TimeSlot is a (day, period) pair with wall-clock bounds.
type TimeSlot struct {
	ID        string    `db:"id" json:"id"`
	Day       int       `db:"day" json:"day"`       // 1..5, Mon-Fri
	Period    int       `db:"period" json:"period"` // 1..8
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	IsBreak   bool      `db:"is_break" json:"is_break"`
}

// Weekday translates the 1-indexed TimeSlot day into the 0-indexed weekday
// used by TeacherAvailability (spec.md §3 note: weekday = day - 1).
func (t TimeSlot) Weekday() int {
	return t.Day - 1
}
