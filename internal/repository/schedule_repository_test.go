package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/timetabler-core/internal/models"
)

func TestScheduleRepositoryListPinned(t *testing.T) {
	db, mock, cleanup := newSqlmockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "class_id", "teacher_id", "subject_id", "time_slot_id", "room", "week_type", "created_at", "updated_at"})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, class_id, teacher_id, subject_id, time_slot_id, room, week_type, created_at, updated_at FROM schedule_entries ORDER BY id ASC")).
		WillReturnRows(rows)

	entries, err := repo.ListPinned(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryReplaceSchedule(t *testing.T) {
	db, mock, cleanup := newSqlmockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM schedule_entries")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("INSERT INTO schedule_entries").
		WithArgs(sqlmock.AnyArg(), "c1", "t1", "s1", "slot1", sqlmock.AnyArg(), "ALL", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.ScheduleEntry{{ClassID: "c1", TeacherID: "t1", SubjectID: "s1", TimeSlotID: "slot1", WeekType: models.WeekAll}}
	require.NoError(t, repo.ReplaceSchedule(context.Background(), entries))
	assert.NotEmpty(t, entries[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryBulkInsert(t *testing.T) {
	db, mock, cleanup := newSqlmockDB(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO schedule_entries").
		WithArgs(sqlmock.AnyArg(), "c1", "t1", "s1", "slot1", sqlmock.AnyArg(), "ALL", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.ScheduleEntry{{ClassID: "c1", TeacherID: "t1", SubjectID: "s1", TimeSlotID: "slot1", WeekType: models.WeekAll}}
	require.NoError(t, repo.BulkInsert(context.Background(), entries))
	assert.NoError(t, mock.ExpectationsWereMet())
}
