package domain

import (
	"context"

	"github.com/grundschule/timetabler-core/internal/models"
)

// TeacherReader loads the full teacher roster for snapshot construction.
type TeacherReader interface {
	ListTeachers(ctx context.Context) ([]models.Teacher, error)
}

// ClassReader loads the full class roster.
type ClassReader interface {
	ListClasses(ctx context.Context) ([]models.Class, error)
}

// SubjectReader loads the subject catalog.
type SubjectReader interface {
	ListSubjects(ctx context.Context) ([]models.Subject, error)
}

// TimeSlotReader loads every defined time slot, including breaks.
type TimeSlotReader interface {
	ListTimeSlots(ctx context.Context) ([]models.TimeSlot, error)
}

// AvailabilityReader loads every teacher availability row.
type AvailabilityReader interface {
	ListAvailability(ctx context.Context) ([]models.TeacherAvailability, error)
}

// QualificationReader loads every teacher-subject qualification.
type QualificationReader interface {
	ListQualifications(ctx context.Context) ([]models.TeacherSubject, error)
}

// PinnedEntryReader loads the schedule entries a solve must preserve
// (the `preserve_existing` input of spec.md §6).
type PinnedEntryReader interface {
	ListPinned(ctx context.Context) ([]models.ScheduleEntry, error)
}

// Readers bundles the read interfaces BuildSnapshot depends on, so a caller
// constructs one value instead of threading seven arguments through.
type Readers struct {
	Teachers       TeacherReader
	Classes        ClassReader
	Subjects       SubjectReader
	TimeSlots      TimeSlotReader
	Availability   AvailabilityReader
	Qualifications QualificationReader
	Pinned         PinnedEntryReader
}

// ScheduleWriter performs the final, transactional persist step (spec.md
// §5): either a full replace (clear_existing) or an additive bulk insert,
// never a partial commit.
type ScheduleWriter interface {
	ReplaceSchedule(ctx context.Context, entries []models.ScheduleEntry) error
	BulkInsert(ctx context.Context, entries []models.ScheduleEntry) error
}
