package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// TimeSlotRepository loads the full time slot grid, including breaks, so
// the Domain Snapshot can derive `teaching_slots` by filtering them out
// (spec.md §4.1).
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository constructs a new time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// ListTimeSlots returns every time slot ordered by (day, period), the same
// order the Domain Snapshot's teaching_slots index requires.
func (r *TimeSlotRepository) ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error) {
	const query = `SELECT id, day, period, start_time, end_time, is_break FROM time_slots ORDER BY day ASC, period ASC`
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, query); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}
