package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/grundschule/timetabler-core/internal/models"
)

// ScheduleRepository is both the PinnedEntryReader and the ScheduleWriter
// (spec.md §3, §5). Adapted from the teacher's schedule_repository.go: the
// paginated List/FindByID/FindConflicts CRUD surface is dropped (that is
// the REST layer's job), but the BulkCreate-inside-a-transaction shape
// survives as ReplaceSchedule/BulkInsert.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// ListPinned returns every current schedule entry, for use as the
// `preserve_existing` seed set (spec.md §4.3).
func (r *ScheduleRepository) ListPinned(ctx context.Context) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, class_id, teacher_id, subject_id, time_slot_id, room, week_type, created_at, updated_at FROM schedule_entries ORDER BY id ASC`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list pinned schedule entries: %w", err)
	}
	return entries, nil
}

// ReplaceSchedule deletes every existing schedule entry and inserts the
// given set inside one serializable transaction, matching the
// `clear_existing` semantics of spec.md §6 and the isolation requirement of
// §5. A failure rolls the whole transaction back; no partial state is ever
// visible to a concurrent reader.
func (r *ScheduleRepository) ReplaceSchedule(ctx context.Context, entries []models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin replace schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_entries`); err != nil {
		return fmt.Errorf("clear schedule entries: %w", err)
	}
	if err = r.bulkInsert(ctx, tx, entries); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace schedule: %w", err)
	}
	return nil
}

// BulkInsert appends entries inside one serializable transaction without
// clearing the existing set, used by Optimize (preserve_existing=true).
func (r *ScheduleRepository) BulkInsert(ctx context.Context, entries []models.ScheduleEntry) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin bulk insert schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = r.bulkInsert(ctx, tx, entries); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit bulk insert schedule: %w", err)
	}
	return nil
}

func (r *ScheduleRepository) bulkInsert(ctx context.Context, tx *sqlx.Tx, entries []models.ScheduleEntry) error {
	now := time.Now().UTC()
	const query = `INSERT INTO schedule_entries (id, class_id, teacher_id, subject_id, time_slot_id, room, week_type, created_at, updated_at)
		VALUES (:id, :class_id, :teacher_id, :subject_id, :time_slot_id, :room, :week_type, :created_at, :updated_at)`
	for i := range entries {
		entry := entries[i]
		if entry.ID == "" {
			entry.ID = uuid.NewString()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		entry.UpdatedAt = now

		if _, err := tx.NamedExecContext(ctx, query, &entry); err != nil {
			return fmt.Errorf("insert schedule entry: %w", err)
		}
		entries[i] = entry
	}
	return nil
}
