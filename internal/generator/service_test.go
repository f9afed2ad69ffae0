package generator_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/dto"
	"github.com/grundschule/timetabler-core/internal/generator"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/solver"
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

type fakeWriter struct {
	replaced []models.ScheduleEntry
	inserted []models.ScheduleEntry
}

func (w *fakeWriter) ReplaceSchedule(ctx context.Context, entries []models.ScheduleEntry) error {
	w.replaced = entries
	return nil
}

func (w *fakeWriter) BulkInsert(ctx context.Context, entries []models.ScheduleEntry) error {
	w.inserted = append(w.inserted, entries...)
	return nil
}

// s4Fixture builds spec.md S4's tiny instance: 2 classes, 2 teachers each
// primary-qualified for one subject, 2 non-break slots, both teachers
// available everywhere.
func s4Fixture() fakeReaders {
	return fakeReaders{
		teachers: []models.Teacher{
			{ID: "MUE", MaxHoursPerWeek: 28},
			{ID: "SCH", MaxHoursPerWeek: 28},
		},
		classes: []models.Class{{ID: "1a", Grade: 1}, {ID: "1b", Grade: 1}},
		subjects: []models.Subject{
			{ID: "MA", Code: "MA"},
			{ID: "DE", Code: "DE"},
		},
		slots: []models.TimeSlot{
			{ID: "mon-p1", Day: 1, Period: 1},
			{ID: "mon-p2", Day: 1, Period: 2},
		},
		quals: []models.TeacherSubject{
			{TeacherID: "MUE", SubjectID: "MA", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
			{TeacherID: "SCH", SubjectID: "DE", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
		},
	}
}

func s4Demand() map[dto.DemandEntry]int {
	return map[dto.DemandEntry]int{
		{ClassID: "1a", SubjectID: "MA"}: 1,
		{ClassID: "1a", SubjectID: "DE"}: 1,
		{ClassID: "1b", SubjectID: "MA"}: 1,
		{ClassID: "1b", SubjectID: "DE"}: 1,
	}
}

func newService(readers fakeReaders, writer *fakeWriter) *generator.Service {
	domainReaders := domain.Readers{
		Teachers: readers, Classes: readers, Subjects: readers, TimeSlots: readers,
		Availability: readers, Qualifications: readers, Pinned: readers,
	}
	return generator.NewService(domainReaders, writer, func() solver.Backend {
		return solver.NewBruteForceBackend()
	}, nil, nil, nil)
}

// S4 — generate tiny instance. Each of the two independent week-type
// sub-instances (A∪ALL, B∪ALL) must satisfy the same demand on its own, so
// a fresh (unpinned) generate yields 4 entries per sub-instance, tagged A
// and B respectively — the two alternating weeks of the same recurring
// demand.
func TestGenerateTinyInstance(t *testing.T) {
	writer := &fakeWriter{}
	svc := newService(s4Fixture(), writer)

	seed := int64(42)
	cfg := dto.GenerateConfig{
		ClearExisting:    true,
		TimeLimitSeconds: 5,
		Demand:           s4Demand(),
		RandomSeed:       &seed,
	}

	result, err := svc.Generate(context.Background(), cfg)
	require.NoError(t, err)
	require.True(t, result.Feasible)

	var aEntries, bEntries []models.ScheduleEntry
	for _, e := range result.Entries {
		switch e.WeekType {
		case models.WeekA:
			aEntries = append(aEntries, e)
		case models.WeekB:
			bEntries = append(bEntries, e)
		}
	}
	assert.Len(t, aEntries, 4)
	assert.Len(t, bEntries, 4)
	assert.GreaterOrEqual(t, result.Quality.Score, 90.0)
}

// S5 — infeasibility. Both teachers BLOCKED on Mon-p1 leaves only Mon-p2 for
// either teacher, but each teacher must cover both classes at the demanded
// count — an impossible simultaneous assignment, so the solve proves
// infeasible.
func TestGenerateInfeasibleWhenBothTeachersBlocked(t *testing.T) {
	f := s4Fixture()
	f.avail = []models.TeacherAvailability{
		{TeacherID: "MUE", Weekday: 0, Period: 1, Kind: models.AvailabilityBlocked, EffectiveFrom: time.Now().Add(-24 * time.Hour)},
		{TeacherID: "SCH", Weekday: 0, Period: 1, Kind: models.AvailabilityBlocked, EffectiveFrom: time.Now().Add(-24 * time.Hour)},
	}
	writer := &fakeWriter{}
	svc := newService(f, writer)

	cfg := dto.GenerateConfig{
		ClearExisting:    true,
		TimeLimitSeconds: 5,
		Demand:           s4Demand(),
	}

	_, err := svc.Generate(context.Background(), cfg)
	require.Error(t, err)
}

// S6 — determinism. Running S4 twice with identical inputs and
// random_seed=42 yields structurally identical schedules after canonical
// sorting (IDs for freshly created entries are random UUIDs and excluded
// from the comparison; every other field must match exactly).
func TestGenerateDeterministic(t *testing.T) {
	seed := int64(42)
	cfg := dto.GenerateConfig{
		ClearExisting:    true,
		TimeLimitSeconds: 5,
		Demand:           s4Demand(),
		RandomSeed:       &seed,
	}

	run := func() []models.ScheduleEntry {
		svc := newService(s4Fixture(), &fakeWriter{})
		result, err := svc.Generate(context.Background(), cfg)
		require.NoError(t, err)
		return result.Entries
	}

	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ClassID, second[i].ClassID)
		assert.Equal(t, first[i].TeacherID, second[i].TeacherID)
		assert.Equal(t, first[i].SubjectID, second[i].SubjectID)
		assert.Equal(t, first[i].TimeSlotID, second[i].TimeSlotID)
		assert.Equal(t, first[i].WeekType, second[i].WeekType)
	}
}
