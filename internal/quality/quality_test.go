package quality_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grundschule/timetabler-core/internal/conflict"
	"github.com/grundschule/timetabler-core/internal/domain"
	"github.com/grundschule/timetabler-core/internal/models"
	"github.com/grundschule/timetabler-core/internal/quality"
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

func TestScoreEmptySchedule(t *testing.T) {
	snap := buildSnapshot(t, fakeReaders{})
	result := quality.Score(snap, nil, nil)
	assert.Equal(t, 100.0, result.Score)
}

// Eight PRIMARY core-subject lessons in periods 1-2 on PREFERRED slots,
// spread over four days: one teacher with 8 lessons and one class on 4 days
// make every rubric, including workload and efficiency, score 100.
func TestScorePerfectScheduleIsOneHundred(t *testing.T) {
	f := fakeReaders{
		teachers: []models.Teacher{{ID: "MUE", MaxHoursPerWeek: 28}},
		classes:  []models.Class{{ID: "1a", Grade: 1}},
		subjects: []models.Subject{{ID: "MA", Code: "MA"}},
		quals: []models.TeacherSubject{
			{TeacherID: "MUE", SubjectID: "MA", Level: models.QualificationPrimary, AllowedGrades: models.NewGradeMask(1)},
		},
	}
	var entries []models.ScheduleEntry
	for day := 1; day <= 4; day++ {
		for period := 1; period <= 2; period++ {
			slotID := fmt.Sprintf("d%d-p%d", day, period)
			f.slots = append(f.slots, models.TimeSlot{ID: slotID, Day: day, Period: period})
			f.avail = append(f.avail, models.TeacherAvailability{TeacherID: "MUE", Weekday: day - 1, Period: period, Kind: models.AvailabilityPreferred, EffectiveFrom: time.Now().Add(-24 * time.Hour)})
			entries = append(entries, models.ScheduleEntry{ID: "e-" + slotID, ClassID: "1a", TeacherID: "MUE", SubjectID: "MA", TimeSlotID: slotID, WeekType: models.WeekAll})
		}
	}
	snap := buildSnapshot(t, f)

	detector := conflict.NewDetector(snap)
	conflicts := detector.Scan(entries)
	require.Empty(t, conflicts)

	result := quality.Score(snap, entries, conflicts)
	assert.Equal(t, 100.0, result.Score)
}

func TestScoreComplianceRubricPenalizesViolations(t *testing.T) {
	violations := map[string][]conflict.Conflict{
		"e1": {{Kind: conflict.TeacherConflict}, {Kind: conflict.ClassConflict}},
	}
	snap := buildSnapshot(t, fakeReaders{
		teachers: []models.Teacher{{ID: "MUE", MaxHoursPerWeek: 28}},
		classes:  []models.Class{{ID: "1a", Grade: 1}},
		subjects: []models.Subject{{ID: "MA", Code: "MA"}},
		slots:    []models.TimeSlot{{ID: "mon-p1", Day: 1, Period: 1}},
	})
	entries := []models.ScheduleEntry{
		{ID: "e1", ClassID: "1a", TeacherID: "MUE", SubjectID: "MA", TimeSlotID: "mon-p1", WeekType: models.WeekAll},
	}

	result := quality.Score(snap, entries, violations)
	assert.Equal(t, 80.0, result.ComplianceScore)
	assert.Less(t, result.Score, 100.0)
}
