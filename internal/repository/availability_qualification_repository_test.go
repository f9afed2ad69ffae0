package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/timetabler-core/internal/models"
)

func TestAvailabilityRepositoryListAvailability(t *testing.T) {
	db, mock, cleanup := newSqlmockDB(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "weekday", "period", "kind", "effective_from", "effective_until", "reason"}).
		AddRow("a1", "t1", 0, 1, "AVAILABLE", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, weekday, period, kind, effective_from, effective_until, reason FROM teacher_availabilities ORDER BY teacher_id ASC, weekday ASC, period ASC")).
		WillReturnRows(rows)

	avail, err := repo.ListAvailability(context.Background())
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, models.AvailabilityAvailable, avail[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newSqlmockDB(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec("INSERT INTO teacher_availabilities").
		WithArgs(sqlmock.AnyArg(), "t1", 0, 1, "BLOCKED", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	row := &models.TeacherAvailability{TeacherID: "t1", Weekday: 0, Period: 1, Kind: models.AvailabilityBlocked}
	require.NoError(t, repo.Upsert(context.Background(), row))
	assert.NotEmpty(t, row.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQualificationRepositoryListQualifications(t *testing.T) {
	db, mock, cleanup := newSqlmockDB(t)
	defer cleanup()
	repo := NewQualificationRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "subject_id", "level", "allowed_grades", "max_hours_per_week", "certified_from", "certified_until"}).
		AddRow("q1", "t1", "s1", "PRIMARY", models.NewGradeMask(1, 2), nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, subject_id, level, allowed_grades, max_hours_per_week, certified_from, certified_until FROM teacher_subjects ORDER BY teacher_id ASC, subject_id ASC")).
		WillReturnRows(rows)

	quals, err := repo.ListQualifications(context.Background())
	require.NoError(t, err)
	require.Len(t, quals, 1)
	assert.True(t, quals[0].AllowedGrades.Allows(1))
	assert.NoError(t, mock.ExpectationsWereMet())
}
