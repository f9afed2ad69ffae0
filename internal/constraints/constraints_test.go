package constraints_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/timetabler-core/internal/constraints"
	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/solver"
	"github.com/grundschule/timetabler-core/internal/variables"
)

type fakeReaders struct {
	teachers []models.Teacher
	classes  []models.Class
	subjects []models.Subject
	slots    []models.TimeSlot
	avail    []models.TeacherAvailability
	quals    []models.TeacherSubject
	pinned   []models.ScheduleEntry
}

func (f fakeReaders) ListTeachers(context.Context) ([]models.Teacher, error) { return f.teachers, nil }
func (f fakeReaders) ListClasses(context.Context) ([]models.Class, error)    { return f.classes, nil }
func (f fakeReaders) ListSubjects(context.Context) ([]models.Subject, error) { return f.subjects, nil }
func (f fakeReaders) ListTimeSlots(context.Context) ([]models.TimeSlot, error) {
	return f.slots, nil
}
func (f fakeReaders) ListAvailability(context.Context) ([]models.TeacherAvailability, error) {
	return f.avail, nil
}
func (f fakeReaders) ListQualifications(context.Context) ([]models.TeacherSubject, error) {
	return f.quals, nil
}
func (f fakeReaders) ListPinned(context.Context) ([]models.ScheduleEntry, error) {
	return f.pinned, nil
}

func buildSnapshot(t *testing.T, f fakeReaders) *domain.Snapshot {
	t.Helper()
	readers := domain.Readers{
		Teachers: f, Classes: f, Subjects: f, TimeSlots: f,
		Availability: f, Qualifications: f, Pinned: f,
	}
	snap, err := domain.BuildSnapshot(context.Background(), readers, time.Now().UTC())
	require.NoError(t, err)
	return snap
}

// One teacher qualified for two subjects, one class, one time slot: the
// teacher-uniqueness constraint must prevent both subjects from being
// scheduled into the same slot simultaneously, so demand for both cannot be
// satisfied in a single-slot instance.
func TestCompileTeacherUniquenessPreventsDoubleBooking(t *testing.T) {
	f := fakeReaders{
		teachers: []models.Teacher{{ID: "MUE", MaxHoursPerWeek: 28}},
		classes:  []models.Class{{ID: "1a", Grade: 1}},
		subjects: []models.Subject{{ID: "MA", Code: "MA"}, {ID: "DE", Code: "DE"}},
		slots:    []models.TimeSlot{{ID: "mon-p1", Day: 1, Period: 1}},
		quals: []models.TeacherSubject{
			{TeacherID: "MUE", SubjectID: "MA", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
			{TeacherID: "MUE", SubjectID: "DE", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
		},
	}
	snap := buildSnapshot(t, f)
	backend := solver.NewBruteForceBackend()
	vars := variables.Build(snap, backend)

	demand := constraints.Demand{
		{ClassID: "1a", SubjectID: "MA"}: 1,
		{ClassID: "1a", SubjectID: "DE"}: 1,
	}
	constraints.Compile(snap, vars, demand, backend)

	outcome, err := backend.Solve(context.Background(), time.Second, 0)
	require.NoError(t, err)
	assert.True(t, outcome.Infeasible)
}

// Demand equality forces exactly the requested count of entries, even when
// more slots are available.
func TestCompileDemandForcesExactCount(t *testing.T) {
	f := fakeReaders{
		teachers: []models.Teacher{{ID: "MUE", MaxHoursPerWeek: 28}},
		classes:  []models.Class{{ID: "1a", Grade: 1}},
		subjects: []models.Subject{{ID: "MA", Code: "MA"}},
		slots: []models.TimeSlot{
			{ID: "mon-p1", Day: 1, Period: 1},
			{ID: "mon-p2", Day: 1, Period: 2},
		},
		quals: []models.TeacherSubject{
			{TeacherID: "MUE", SubjectID: "MA", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
		},
	}
	snap := buildSnapshot(t, f)
	backend := solver.NewBruteForceBackend()
	vars := variables.Build(snap, backend)

	demand := constraints.Demand{{ClassID: "1a", SubjectID: "MA"}: 1}
	constraints.Compile(snap, vars, demand, backend)

	outcome, err := backend.Solve(context.Background(), time.Second, 0)
	require.NoError(t, err)
	require.True(t, outcome.Feasible)

	count := 0
	for _, v := range vars {
		if backend.Value(v) {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
