package variables_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func fixture() fakeReaders {
	return fakeReaders{
		teachers: []models.Teacher{{ID: "MUE", MaxHoursPerWeek: 28}},
		classes:  []models.Class{{ID: "1a", Grade: 1}},
		subjects: []models.Subject{{ID: "MA", Code: "MA"}},
		slots: []models.TimeSlot{
			{ID: "mon-p1", Day: 1, Period: 1, IsBreak: false},
			{ID: "mon-p2", Day: 1, Period: 2, IsBreak: false},
			{ID: "mon-p3", Day: 1, Period: 3, IsBreak: true},
		},
		quals: []models.TeacherSubject{
			{TeacherID: "MUE", SubjectID: "MA", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
		},
	}
}

func TestBuildCreatesVariableForQualifiedAvailableTuple(t *testing.T) {
	snap := buildSnapshot(t, fixture())
	backend := solver.NewBruteForceBackend()

	vars := variables.Build(snap, backend)

	_, ok := vars[variables.Key{TeacherID: "MUE", ClassID: "1a", SubjectID: "MA", TimeSlotID: "mon-p1"}]
	assert.True(t, ok)
}

func TestBuildExcludesBlockedTuple(t *testing.T) {
	f := fixture()
	f.avail = []models.TeacherAvailability{
		{TeacherID: "MUE", Weekday: 0, Period: 1, Kind: models.AvailabilityBlocked, EffectiveFrom: time.Now().Add(-24 * time.Hour)},
	}
	snap := buildSnapshot(t, f)
	backend := solver.NewBruteForceBackend()

	vars := variables.Build(snap, backend)

	_, blockedExists := vars[variables.Key{TeacherID: "MUE", ClassID: "1a", SubjectID: "MA", TimeSlotID: "mon-p1"}]
	assert.False(t, blockedExists)
	_, otherExists := vars[variables.Key{TeacherID: "MUE", ClassID: "1a", SubjectID: "MA", TimeSlotID: "mon-p2"}]
	assert.True(t, otherExists)
}

func TestBuildExcludesBreakSlot(t *testing.T) {
	snap := buildSnapshot(t, fixture())
	backend := solver.NewBruteForceBackend()

	vars := variables.Build(snap, backend)

	_, ok := vars[variables.Key{TeacherID: "MUE", ClassID: "1a", SubjectID: "MA", TimeSlotID: "mon-p3"}]
	assert.False(t, ok)
}

func TestBuildFixesPinnedEntryEvenIfOtherwiseInadmissible(t *testing.T) {
	f := fixture()
	// Pin an entry on the break slot: normally excluded, but a pinned
	// assignment is already valid by construction and must still appear.
	f.pinned = []models.ScheduleEntry{
		{ID: "e1", ClassID: "1a", TeacherID: "MUE", SubjectID: "MA", TimeSlotID: "mon-p3", WeekType: models.WeekAll},
	}
	snap := buildSnapshot(t, f)
	backend := solver.NewBruteForceBackend()

	vars := variables.Build(snap, backend)

	v, ok := vars[variables.Key{TeacherID: "MUE", ClassID: "1a", SubjectID: "MA", TimeSlotID: "mon-p3"}]
	require.True(t, ok)

	outcome, err := backend.Solve(context.Background(), time.Second, 0)
	require.NoError(t, err)
	require.True(t, outcome.Feasible)
	assert.True(t, backend.Value(v))
}
