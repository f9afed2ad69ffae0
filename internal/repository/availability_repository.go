package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// AvailabilityRepository loads teacher availability windows. Adapted from
// the teacher's teacher_preference_repository.go upsert-by-teacher shape,
// generalized from one row per teacher to many rows per (teacher, weekday,
// period, effective_from).
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs a new availability repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

// ListAvailability returns every availability row across all teachers. The
// Domain Snapshot resolves validity per reference date itself (spec.md
// §4.1), so this read is unfiltered by date.
func (r *AvailabilityRepository) ListAvailability(ctx context.Context) ([]models.TeacherAvailability, error) {
	const query = `SELECT id, teacher_id, weekday, period, kind, effective_from, effective_until, reason FROM teacher_availabilities ORDER BY teacher_id ASC, weekday ASC, period ASC, effective_from ASC`
	var rows []models.TeacherAvailability
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list teacher availability: %w", err)
	}
	return rows, nil
}

// Upsert creates or replaces one availability row for a (teacher, weekday,
// period, effective_from) tuple, mirroring the ON CONFLICT shape the
// teacher's preference repository used for a single-row-per-teacher upsert.
func (r *AvailabilityRepository) Upsert(ctx context.Context, row *models.TeacherAvailability) error {
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.EffectiveFrom.IsZero() {
		row.EffectiveFrom = time.Now().UTC()
	}

	const query = `INSERT INTO teacher_availabilities (id, teacher_id, weekday, period, kind, effective_from, effective_until, reason)
		VALUES (:id, :teacher_id, :weekday, :period, :kind, :effective_from, :effective_until, :reason)
		ON CONFLICT (teacher_id, weekday, period, effective_from) DO UPDATE
		SET kind = EXCLUDED.kind,
		    effective_until = EXCLUDED.effective_until,
		    reason = EXCLUDED.reason`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("upsert teacher availability: %w", err)
	}
	return nil
}
