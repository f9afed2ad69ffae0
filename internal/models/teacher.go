package models

import "time"

// Teacher represents an instructor record.
type Teacher struct {
	ID              string    `db:"id" json:"id"`
	DisplayName     string    `db:"display_name" json:"display_name"`
	ShortCode       string    `db:"short_code" json:"short_code"`
	MaxHoursPerWeek int       `db:"max_hours_per_week" json:"max_hours_per_week"`
	PartTime        bool      `db:"part_time" json:"part_time"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// DailyCap returns the per-day teaching cap enforced by the constraint
// compiler's daily-bound family (spec.md §4.4 item 8): 6 for full-time
// teachers, 3 for part-time.
func (t Teacher) DailyCap() int {
	if t.PartTime {
		return 3
	}
	return 6
}

// WorkingDaysCap returns the maximum distinct teaching days per week; only
// part-time teachers are bounded (spec.md §4.4 item 9).
func (t Teacher) WorkingDaysCap() (days int, bounded bool) {
	if t.PartTime {
		return 3, true
	}
	return 0, false
}
